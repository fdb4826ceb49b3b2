package server

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

const (
	// SuccessMessage is shown after a run that completed.
	SuccessMessage = "All information was loaded successfully from Spotify."
	// FailureMessage is shown after a run that aborted; the cause is only logged.
	FailureMessage = "Sorry, there was an error. Please, check your logs."
)

//go:embed templates/load.html
var templatesFS embed.FS

// Loader runs one ingestion and reports whether it completed.
type Loader interface {
	Load(ctx context.Context) bool
}

type loadPage struct {
	Title   string
	Message string
	Status  string // "success" or "error"
}

// LoadHandler serves the trigger page and runs ingestions on POST.
type LoadHandler struct {
	loader Loader
	tmpl   *template.Template
}

// NewLoadHandler parses the embedded page template.
func NewLoadHandler(loader Loader) (*LoadHandler, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/load.html")
	if err != nil {
		return nil, fmt.Errorf("parsing load template: %w", err)
	}
	return &LoadHandler{loader: loader, tmpl: tmpl}, nil
}

// Routes returns the HTTP routes this handler serves.
func (h *LoadHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Pattern: "/"},
		{Method: http.MethodPost, Pattern: "/load"},
	}
}

// ServeHTTP renders the page, running an ingestion first for POST requests.
//
// The run is detached from the request context so a closed browser tab does not abort it.
func (h *LoadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page := loadPage{Title: "Spotify ingestion"}
	status := http.StatusOK

	if r.Method == http.MethodPost {
		if h.loader.Load(context.WithoutCancel(r.Context())) {
			page.Message, page.Status = SuccessMessage, "success"
		} else {
			page.Message, page.Status = FailureMessage, "error"
			status = http.StatusInternalServerError
		}
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, page); err != nil {
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
