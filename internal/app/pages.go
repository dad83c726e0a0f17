package app

import (
	"log/slog"
	"math/rand/v2"
	"net/http"

	"github.com/odyssey-erp/gatehouse/internal/view"
)

// memberImages are the pictures shown on the members page, one picked per
// request.
var memberImages = []string{"001.svg", "002.svg", "003.svg"}

type pages struct {
	logger    *slog.Logger
	templates *view.Engine
	pick      func(n int) int
}

func newPages(logger *slog.Logger, templates *view.Engine) *pages {
	return &pages{logger: logger, templates: templates, pick: rand.IntN}
}

func (p *pages) home(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, "pages/home.html", "Home", nil)
}

func (p *pages) members(w http.ResponseWriter, r *http.Request) {
	image := memberImages[p.pick(len(memberImages))]
	p.render(w, r, http.StatusOK, "pages/members.html", "Members", map[string]any{"Image": image})
}

func (p *pages) notFound(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusNotFound, "pages/not_found.html", "Not Found", nil)
}

func (p *pages) render(w http.ResponseWriter, r *http.Request, status int, template, title string, data map[string]any) {
	if err := p.templates.RenderStatus(w, status, template, view.NewTemplateData(r, title, data)); err != nil {
		p.logger.Error("render page", slog.String("template", template), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
