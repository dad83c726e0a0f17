package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/gatehouse/internal/platform/httpx"
	"github.com/odyssey-erp/gatehouse/internal/rbac"
	"github.com/odyssey-erp/gatehouse/internal/shared"
	"github.com/odyssey-erp/gatehouse/internal/view"
)

// AttemptRecorder receives the outcome of every sign-up and sign-in.
type AttemptRecorder interface {
	RecordAuthAttempt(action, outcome string)
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	rbac           rbac.Middleware
	attempts       AttemptRecorder
}

// NewHandler constructs a Handler instance. attempts may be nil.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, gate rbac.Middleware, attempts AttemptRecorder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		rbac:           gate,
		attempts:       attempts,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RedirectAuthenticated("/members"))
		r.Get("/signup", h.showSignUp)
		r.Get("/signin", h.showSignIn)
	})
	r.Post("/signup", h.handleSignUp)
	r.Post("/signin", h.handleSignIn)
	r.Post("/signout", h.handleSignOut)
}

func (h *Handler) showSignUp(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "pages/signup.html", "Sign Up", nil)
}

func (h *Handler) showSignIn(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "pages/signin.html", "Sign In", nil)
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.parseCredentials(w, r)
	if !ok {
		return
	}
	user, err := h.service.SignUp(r.Context(), creds)
	if err != nil {
		h.fail(w, r, "signup", err)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during signup")
		h.fail(w, r, "signup", errors.New("session missing"))
		return
	}
	h.sessionManager.Establish(sess, user.Principal(time.Now().UTC()))
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Account created"})
	h.record("signup", OutcomeSuccess)
	h.logger.Info("user signed up", slog.String("username", user.Username))
	http.Redirect(w, r, "/members", http.StatusFound)
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.parseCredentials(w, r)
	if !ok {
		return
	}
	user, err := h.service.SignIn(r.Context(), creds)
	if err != nil {
		h.fail(w, r, "signin", err)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during signin")
		h.fail(w, r, "signin", errors.New("session missing"))
		return
	}
	h.sessionManager.Establish(sess, user.Principal(time.Now().UTC()))
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back"})
	h.record("signin", OutcomeSuccess)

	target := "/members"
	if user.IsAdmin() {
		target = "/admin"
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// handleSignOut never fails from the caller's point of view: a store error is
// logged and the user still lands on the home page with the cookie cleared.
func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.sessionManager.Revoke(r.Context(), sess); err != nil {
			h.logger.Warn("revoke session", slog.String("session_id", sess.ID), slog.Any("error", err))
		}
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) parseCredentials(w http.ResponseWriter, r *http.Request) (Credentials, bool) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "pages/message.html", "Bad Request", map[string]any{
			"Message": httpx.UserMessage(shared.ErrValidation),
		})
		return Credentials{}, false
	}
	return Credentials{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	status := httpx.StatusCode(err)
	h.record(action, outcomeFor(err))
	if status >= http.StatusInternalServerError {
		h.logger.Error(action+" failed", slog.Any("error", err))
	} else {
		h.logger.Debug(action+" rejected", slog.Int("status", status), slog.Any("error", err))
	}
	h.render(w, r, status, "pages/message.html", http.StatusText(status), map[string]any{
		"Message": httpx.UserMessage(err),
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, template, title string, data map[string]any) {
	viewData := view.NewTemplateData(r, title, data)
	if err := h.templates.RenderStatus(w, status, template, viewData); err != nil {
		h.logger.Error("render template", slog.String("template", template), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) record(action, outcome string) {
	if h.attempts != nil {
		h.attempts.RecordAuthAttempt(action, outcome)
	}
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, shared.ErrValidation):
		return OutcomeValidation
	case errors.Is(err, shared.ErrDuplicateUser):
		return OutcomeDuplicate
	case errors.Is(err, shared.ErrInvalidCredentials):
		return OutcomeInvalidCredentials
	default:
		return OutcomeError
	}
}
