package handler

import (
	"context"
	"net/http"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/efreitasn/papertrade/internal/service"
	"github.com/efreitasn/papertrade/internal/session"
)

// SessionHeader carries the token returned by sign up and log in.
const SessionHeader = "X-Session-Token"

type sessionKey struct{}

// requireSession resolves the session token and stores the session in the
// request context. Requests without a live session get 401.
func requireSession(accountSvc *service.AccountService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(SessionHeader)
			if token == "" {
				mapError(w, domain.ErrSessionNotFound)
				return
			}
			sess, err := accountSvc.Authenticate(token)
			if err != nil {
				mapError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey{}).(*session.Session)
	return sess
}
