package handler

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/angeloszaimis/source-dashboard/internal/dashboard"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	dashboardPage = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))
	failurePage   = template.Must(template.ParseFS(templateFS, "templates/failure.html"))
)

type pageData struct {
	View dashboard.ViewModel
	// Syncing makes the page reload itself until every panel settled.
	Syncing bool
}

func newPageData(vm dashboard.ViewModel) pageData {
	data := pageData{View: vm}
	for _, p := range vm.Panels {
		if p.Loading {
			data.Syncing = true
			break
		}
	}
	return data
}

// render executes tmpl into a buffer so a template error never leaves a
// half-written page behind.
func render(w http.ResponseWriter, log *slog.Logger, status int, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.Error("Failed to render page", slog.Any("err", err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
