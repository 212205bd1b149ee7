package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/NGC6543/blogicum/auth"
	authcontext "github.com/NGC6543/blogicum/auth/context"
	"github.com/NGC6543/blogicum/blog"
)

// authMiddleware resolves the session cookie into the current user and
// stores it on the request context. Stale sessions are cleaned up and the
// request continues as anonymous.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionValueNotFoundErr *SessionValueNotFoundError

		sessionID, err := h.getSessionValue(r, sessionIDKey)
		if err != nil && !errors.As(err, &sessionValueNotFoundErr) {
			slog.ErrorContext(r.Context(), "error on getting session value", "key", sessionIDKey, "error", err)
			http.Error(w, "error on getting session value", http.StatusInternalServerError)

			return
		}

		sessionIDStr, _ := sessionID.(string)
		if sessionIDStr == "" {
			next.ServeHTTP(w, r)

			return
		}

		session, err := h.authSvc.GetSession(r.Context(), sessionIDStr)
		if err != nil {
			var sessionNotFoundErr *auth.SessionNotFoundError

			var sessionExpiredErr *auth.SessionExpiredError

			if errors.As(err, &sessionNotFoundErr) || errors.As(err, &sessionExpiredErr) {
				err = h.deleteSessionValue(w, r, sessionIDKey)
				if err != nil {
					slog.ErrorContext(r.Context(), "error on deleting session value", "key", sessionIDKey, "error", err)
					http.Error(w, "error on deleting session value", http.StatusInternalServerError)

					return
				}

				next.ServeHTTP(w, r)

				return
			}

			slog.ErrorContext(r.Context(), "error on getting session", "sessionId", sessionIDStr, "error", err)
			http.Error(w, "error on getting session", http.StatusInternalServerError)

			return
		}

		r = r.WithContext(authcontext.WithSessionID(r.Context(), session.ID))

		user, err := h.authSvc.GetUser(r.Context(), session.UserID)
		if err != nil {
			var userNotFoundErr *auth.UserNotFoundError
			if errors.As(err, &userNotFoundErr) {
				err = h.authSvc.Logout(r.Context(), session.ID)
				if err != nil {
					slog.ErrorContext(r.Context(), "error on logging out session", "sessionId", session.ID, "error", err)
					http.Error(w, "error on logging out session", http.StatusInternalServerError)

					return
				}

				err = h.deleteSessionValue(w, r, sessionIDKey)
				if err != nil {
					slog.ErrorContext(r.Context(), "error on deleting session value", "key", sessionIDKey, "error", err)
					http.Error(w, "error on deleting session value", http.StatusInternalServerError)

					return
				}

				next.ServeHTTP(w, r)

				return
			}

			slog.ErrorContext(r.Context(), "error retrieving user", "error", err)
			http.Error(w, "error on retrieving user", http.StatusInternalServerError)

			return
		}

		r = r.WithContext(authcontext.WithCurrentUser(r.Context(), user))

		next.ServeHTTP(w, r)
	})
}

func isAuthenticated(r *http.Request) bool {
	return authcontext.CurrentUser(r.Context()) != nil
}

func authSessionID(r *http.Request) (string, bool) {
	return authcontext.SessionIDFromContext(r.Context())
}

// viewerFromRequest maps the request's current user to the identity the
// content services filter by.
func viewerFromRequest(r *http.Request) blog.Viewer {
	return auth.ViewerFor(authcontext.CurrentUser(r.Context()))
}

func (h *Handler) AuthenticatedOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAuthenticated(r) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) StaffOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := authcontext.CurrentUser(r.Context())
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)

			return
		}

		if !user.IsStaff {
			http.Error(w, "Forbidden", http.StatusForbidden)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) GuestOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAuthenticated(r) {
			http.Redirect(w, r, "/", http.StatusSeeOther)

			return
		}

		next.ServeHTTP(w, r)
	})
}
