package rbac

import (
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/gatehouse/internal/shared"
	"github.com/odyssey-erp/gatehouse/internal/view"
)

// SignInPath is where requests without a session are sent.
const SignInPath = "/signin"

// HasSession reports whether the request carries a live session with a
// principal.
func HasSession(r *http.Request) bool {
	_, ok := shared.PrincipalFromContext(r.Context())
	return ok
}

// HasRole reports whether the request session holds the given role. The role
// is read from the session snapshot, not from the user store.
func HasRole(r *http.Request, role shared.Role) bool {
	p, ok := shared.PrincipalFromContext(r.Context())
	return ok && p.Role == role
}

// Middleware wires the session and role gates for HTTP handlers.
type Middleware struct {
	Templates *view.Engine
	Logger    *slog.Logger
}

// RequireSession redirects to the sign-in page when no session is present.
func (m Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !HasSession(r) {
			http.Redirect(w, r, SignInPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures the session exists and holds role. A missing session
// redirects to sign-in; a wrong role gets 403 and the not-authorized page.
func (m Middleware) RequireRole(role shared.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HasSession(r) {
				http.Redirect(w, r, SignInPath, http.StatusFound)
				return
			}
			if !HasRole(r, role) {
				m.forbidden(w, r, role)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RedirectAuthenticated sends requests that already carry a session to target.
func (m Middleware) RedirectAuthenticated(target string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if HasSession(r) {
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) forbidden(w http.ResponseWriter, r *http.Request, role shared.Role) {
	if m.Logger != nil {
		p, _ := shared.PrincipalFromContext(r.Context())
		m.Logger.Info("rbac denied",
			slog.String("path", r.URL.Path),
			slog.String("username", p.Username),
			slog.String("required", string(role)),
		)
	}
	if m.Templates == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	data := view.NewTemplateData(r, "Not Authorized", nil)
	if err := m.Templates.RenderStatus(w, http.StatusForbidden, "pages/not_authorized.html", data); err != nil {
		if m.Logger != nil {
			m.Logger.Error("render not authorized", slog.Any("error", err))
		}
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	}
}
