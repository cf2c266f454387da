package cvarchive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"velox-backend/internal/shared/storage/object"
	"velox-backend/internal/shared/util"
)

const (
	keyPrefix        = "cv"
	extractedSuffix  = ".extracted.txt"
	contentTypePDF   = "application/pdf"
	contentTypePlain = "text/plain; charset=utf-8"
)

// Archive keeps uploaded CVs and their extracted text in an object store.
type Archive struct {
	Store object.Store
	NewID func() string
	Now   func() time.Time
}

func New(store object.Store) *Archive {
	return &Archive{Store: store, NewID: uuid.NewString, Now: time.Now}
}

// Saved describes the stored objects of one upload.
type Saved struct {
	Key          string
	ExtractedKey string
	SizeBytes    int64
}

// Save stores the original PDF under cv/<user>/<date>/<id>_<name> and the
// text next to it with a .extracted.txt suffix.
func (a *Archive) Save(ctx context.Context, userID, fileName string, pdf []byte, text string) (Saved, error) {
	if a == nil || a.Store == nil {
		return Saved{}, fmt.Errorf("cv archive not configured")
	}
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		name = "resume.pdf"
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}

	key := path.Join(keyPrefix, util.HashUserKey(userID), a.now().UTC().Format("2006-01-02"), a.newID()+"_"+name)
	size, err := a.Store.Put(ctx, key, contentTypePDF, bytes.NewReader(pdf))
	if err != nil {
		return Saved{}, fmt.Errorf("archive pdf key=%s: %w", key, err)
	}

	extractedKey := key + extractedSuffix
	if _, err := a.Store.Put(ctx, extractedKey, contentTypePlain, strings.NewReader(text)); err != nil {
		return Saved{}, fmt.Errorf("archive text key=%s: %w", extractedKey, err)
	}
	return Saved{Key: key, ExtractedKey: extractedKey, SizeBytes: size}, nil
}

func (a *Archive) newID() string {
	if a.NewID == nil {
		return uuid.NewString()
	}
	return a.NewID()
}

func (a *Archive) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}
