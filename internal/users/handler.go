package users

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/gatehouse/internal/rbac"
	"github.com/odyssey-erp/gatehouse/internal/shared"
	"github.com/odyssey-erp/gatehouse/internal/view"
)

// AdminPath is the role management panel.
const AdminPath = "/admin"

// Handler manages the admin panel and role mutation endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, gate rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates, rbac: gate}
}

// MountRoutes registers admin routes. Every route requires an admin session.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole(shared.RoleAdmin))
		r.Get(AdminPath, h.listUsers)
		r.Post("/promoteUser", h.promote)
		r.Post("/demoteUser", h.demote)
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		h.render(w, r, http.StatusInternalServerError, "pages/message.html", "Error", map[string]any{
			"Message": "Something went wrong. Please try again.",
		})
		return
	}
	h.render(w, r, http.StatusOK, "pages/admin.html", "Admin", map[string]any{"Users": list})
}

func (h *Handler) promote(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "promote", h.service.Promote)
}

func (h *Handler) demote(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "demote", h.service.Demote)
}

// mutate applies a role change on a best-effort basis: failures are logged
// and the caller is sent back to the panel either way.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, action string, apply func(context.Context, string) error) {
	if err := r.ParseForm(); err != nil {
		h.logger.Warn(action+" user: parse form", slog.Any("error", err))
		http.Redirect(w, r, AdminPath, http.StatusFound)
		return
	}
	username := r.PostFormValue("username")
	actor, _ := shared.PrincipalFromContext(r.Context())
	if err := apply(r.Context(), username); err != nil {
		h.logger.Warn(action+" user failed",
			slog.String("username", username),
			slog.String("actor", actor.Username),
			slog.Any("error", err),
		)
		http.Redirect(w, r, AdminPath, http.StatusFound)
		return
	}
	h.logger.Info(action+" user",
		slog.String("username", username),
		slog.String("actor", actor.Username),
	)
	http.Redirect(w, r, AdminPath, http.StatusFound)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, template, title string, data map[string]any) {
	viewData := view.NewTemplateData(r, title, data)
	if err := h.templates.RenderStatus(w, status, template, viewData); err != nil {
		h.logger.Error("render template", slog.String("template", template), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
