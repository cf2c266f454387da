package generation

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

const (
	systemText = "You are a professional portfolio copywriter. Reply with plain text only."
	systemJSON = "You are a precise data extraction engine. Respond with a single valid JSON object only. No markdown, no commentary."
)

//go:embed prompts/*.tmpl
var promptFiles embed.FS

var promptTemplates = template.Must(
	template.New("prompts").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(promptFiles, "prompts/*.tmpl"),
)

var promptNames = map[TaskType]string{
	TaskBio:                "bio.tmpl",
	TaskHeadline:           "headline.tmpl",
	TaskProjectDescription: "project.tmpl",
	TaskResumeParse:        "resume_parse.tmpl",
	TaskPortfolioConfig:    "portfolio_config.tmpl",
}

// renderPrompt executes the task's template with data.
func renderPrompt(task TaskType, data any) (string, error) {
	name, ok := promptNames[task]
	if !ok {
		return "", fmt.Errorf("no prompt for task %q", task)
	}
	var buf bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", task, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func systemPromptFor(params TaskParams) string {
	if params.JSONMode {
		return systemJSON
	}
	return systemText
}
