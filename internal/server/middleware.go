package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/sebastiaanschool/schoolhub/internal/server/endpoints"
	"github.com/sebastiaanschool/schoolhub/pkg/accesspolicy"
	"github.com/sebastiaanschool/schoolhub/pkg/security/auth"
	"github.com/sebastiaanschool/schoolhub/pkg/util"
	"go.uber.org/zap"
)

// HeaderRequestID carries the request identifier in both directions
const HeaderRequestID = "X-Request-ID"

// MiddlewareRequestID assigns an identifier to every request, reusing
// a sane identifier supplied by the client
func MiddlewareRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(HeaderRequestID))
		if id == "" || len(id) > 64 {
			id = util.NewULID().String()
		}

		w.Header().Set(HeaderRequestID, id)

		ctx := context.WithValue(r.Context(), endpoints.CKRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MiddlewareLogger injects a request scoped logger and logs
// every completed request
func MiddlewareLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := logger.With(
				zap.String("request_id", endpoints.RequestID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			ctx := context.WithValue(r.Context(), endpoints.CKLogger, l)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			l.Info(
				"request",
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// MiddlewareAuthentication resolves the caller and stores its identity
// in the request context, a request without credentials passes as anonymous
func MiddlewareAuthentication(a *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok, err := a.AuthenticateRequest(r)
			if err != nil {
				if auth.IsCredentialsError(err) {
					util.WriteResponseErrorTo(w, "invalid credentials", http.StatusUnauthorized)
					return
				}

				endpoints.Logger(r.Context(), a.Logger()).Error("authentication failed", zap.Error(err))
				util.WriteResponseErrorTo(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

				return
			}

			if ok {
				r = r.WithContext(auth.WithIdentity(r.Context(), ident))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Gate refuses every request the policy does not allow
func Gate(p accesspolicy.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := p.Evaluate(r.Method, endpoints.Caller(r.Context()))
			if !d.Allowed() {
				util.WriteResponseErrorTo(w, d.Reason, d.Status())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	util.WriteResponseErrorTo(w, "not found", http.StatusNotFound)
}
