package ai

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"velox-backend/internal/cvarchive"
	"velox-backend/internal/generation"
	"velox-backend/internal/generationlog"
	"velox-backend/internal/llm"
	"velox-backend/internal/pdftext"
	"velox-backend/internal/shared/metrics"
	"velox-backend/internal/shared/server/middleware"
	"velox-backend/internal/shared/server/respond"
	"velox-backend/internal/shared/telemetry"
	"velox-backend/internal/usage"
)

const maxUploadSize = 10 << 20 // 10MB

const (
	msgGenerationFailed = "AI generation failed after multiple attempts"
	msgBadFormat        = "AI response was not in the expected format"
	msgQuotaExceeded    = "AI credit limit reached for this week"
	msgProviderBusy     = "AI provider is rate limiting requests, please retry shortly"
	msgNotPDF           = "File must be a PDF"
)

// Handler serves the /api/ai routes.
type Handler struct {
	Svc    *generation.Service
	Parser pdftext.Parser
	// Archive is optional; when nil uploads are not kept.
	Archive *cvarchive.Archive
	Quota   *usage.Service
	Logs    *generationlog.Logger
	// Production hides raw model output from error bodies.
	Production bool
}

func NewHandler(svc *generation.Service, parser pdftext.Parser, quota *usage.Service, logs *generationlog.Logger) *Handler {
	if parser == nil {
		parser = pdftext.LedongthucParser{}
	}
	return &Handler{Svc: svc, Parser: parser, Quota: quota, Logs: logs}
}

// RegisterRoutes mounts the AI endpoints on rg, which should already be
// scoped to /api/ai.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate-bio", h.generateBio)
	rg.POST("/generate-headline", h.generateHeadline)
	rg.POST("/generate-project-description", h.generateProjectDescription)
	rg.POST("/generate-from-cv", h.generateFromCV)
	rg.POST("/generate-portfolio-config", h.generatePortfolioConfig)
	rg.POST("/parse-pdf", h.parsePDF)
	rg.GET("/usage", h.usage)
}

// RegisterDevRoutes mounts helpers that must never be exposed in production.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.POST("/usage/reset", h.resetUsage)
}

func (h *Handler) generateBio(c *gin.Context) {
	c.Set(middleware.TaskKey, string(generation.TaskBio))
	var req generation.BioInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	bio, err := h.Svc.GenerateBio(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "bio": bio})
}

func (h *Handler) generateHeadline(c *gin.Context) {
	c.Set(middleware.TaskKey, string(generation.TaskHeadline))
	var req generation.HeadlineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	headline, err := h.Svc.GenerateHeadline(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "headline": headline})
}

func (h *Handler) generateProjectDescription(c *gin.Context) {
	c.Set(middleware.TaskKey, string(generation.TaskProjectDescription))
	var req generation.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	desc, err := h.Svc.GenerateProjectDescription(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "description": desc})
}

type fromCVRequest struct {
	CVText string `json:"cvText"`
}

func (h *Handler) generateFromCV(c *gin.Context) {
	c.Set(middleware.TaskKey, string(generation.TaskResumeParse))
	var req fromCVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	data, err := h.Svc.ParseResume(c.Request.Context(), middleware.UserIDFromContext(c), req.CVText)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "data": data})
}

func (h *Handler) generatePortfolioConfig(c *gin.Context) {
	c.Set(middleware.TaskKey, string(generation.TaskPortfolioConfig))
	var req generation.PortfolioInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	cfg, err := h.Svc.GeneratePortfolioConfig(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "config": cfg})
}

func (h *Handler) parsePDF(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusBadRequest, "File must be 10MB or smaller")
			return
		}
		respond.Error(c, http.StatusBadRequest, "No file provided")
		return
	}
	if !isPDF(fileHeader.Header.Get("Content-Type")) {
		respond.Error(c, http.StatusBadRequest, msgNotPDF)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "unable to read file")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "unable to read file")
		return
	}

	doc, err := h.Parser.Parse(c.Request.Context(), data)
	if err != nil {
		switch {
		case errors.Is(err, pdftext.ErrNoText):
			metrics.IncPDFParse("no_text")
			respond.Error(c, http.StatusBadRequest, "Could not extract text from PDF. The file may be image-based or encrypted.")
		case errors.Is(err, pdftext.ErrInvalidPDF):
			metrics.IncPDFParse("invalid")
			respond.Error(c, http.StatusBadRequest, "Invalid or corrupted PDF file")
		default:
			metrics.IncPDFParse("error")
			respond.Error(c, http.StatusInternalServerError, "Failed to parse PDF")
		}
		return
	}
	metrics.IncPDFParse("success")

	if h.Archive != nil {
		saved, err := h.Archive.Save(c.Request.Context(), userID, fileHeader.Filename, data, doc.Text)
		if err != nil {
			telemetry.Warn("cvarchive.save_failed", map[string]any{
				"user_id":    userID,
				"request_id": middleware.RequestIDFromContext(c),
				"err":        err,
			})
		} else {
			telemetry.Info("cvarchive.saved", map[string]any{
				"user_id": userID,
				"key":     saved.Key,
				"bytes":   saved.SizeBytes,
			})
		}
	}

	respond.OK(c, gin.H{"text": doc.Text, "pages": doc.Pages})
}

type usageResponse struct {
	usage.Usage
	Remaining int                    `json:"remaining"`
	History   *generationlog.Summary `json:"history,omitempty"`
}

func (h *Handler) usage(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if h.Quota == nil {
		respond.Error(c, http.StatusNotFound, "usage tracking is disabled")
		return
	}
	u, err := h.Quota.Get(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "failed to load usage")
		return
	}
	resp := usageResponse{Usage: u, Remaining: u.Remaining()}
	if h.Logs != nil {
		summary, err := h.Logs.Summarize(c.Request.Context(), userID)
		if err != nil {
			telemetry.Warn("generationlog.summarize_failed", map[string]any{"user_id": userID, "err": err})
		} else {
			resp.History = &summary
		}
	}
	respond.OK(c, resp)
}

func (h *Handler) resetUsage(c *gin.Context) {
	if h.Quota == nil {
		respond.Error(c, http.StatusNotFound, "usage tracking is disabled")
		return
	}
	u, err := h.Quota.Reset(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "failed to reset usage")
		return
	}
	respond.OK(c, usageResponse{Usage: u, Remaining: u.Remaining()})
}

// fail maps generation errors onto the {"error": ...} contract.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, generation.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, generation.ErrQuotaExceeded):
		respond.Error(c, http.StatusTooManyRequests, msgQuotaExceeded)
	case llm.IsRateLimited(err):
		respond.Error(c, http.StatusTooManyRequests, msgProviderBusy)
	case errors.Is(err, generation.ErrGenerationFailed):
		respond.Error(c, http.StatusInternalServerError, msgGenerationFailed)
	case errors.Is(err, generation.ErrNoJSONObjectFound), errors.Is(err, generation.ErrMalformedJSON):
		var extra gin.H
		if raw, ok := generation.RawResponse(err); ok && !h.Production {
			extra = gin.H{"rawResponse": raw}
		}
		respond.ErrorWith(c, http.StatusInternalServerError, msgBadFormat, extra)
	default:
		respond.Error(c, http.StatusInternalServerError, "Internal server error")
	}
}

func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), generation.ErrInvalidInput.Error()+": ")
	if msg == "" {
		return "invalid input"
	}
	return msg
}

func isPDF(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.EqualFold(mediaType, "application/pdf")
}
