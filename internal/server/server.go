package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/pkg/errors"
	"github.com/sebastiaanschool/schoolhub/internal/core"
	"github.com/sebastiaanschool/schoolhub/internal/server/endpoints"
	epcontent "github.com/sebastiaanschool/schoolhub/internal/server/endpoints/content"
	epdevice "github.com/sebastiaanschool/schoolhub/internal/server/endpoints/device"
	epenrollment "github.com/sebastiaanschool/schoolhub/internal/server/endpoints/enrollment"
	eppush "github.com/sebastiaanschool/schoolhub/internal/server/endpoints/pushsettings"
	epsession "github.com/sebastiaanschool/schoolhub/internal/server/endpoints/session"
	"github.com/sebastiaanschool/schoolhub/pkg/accesspolicy"
	"github.com/sebastiaanschool/schoolhub/pkg/content"
	"github.com/sebastiaanschool/schoolhub/pkg/util"
	"go.uber.org/zap"
)

// shutdownTimeout bounds the graceful shutdown
const shutdownTimeout = 10 * time.Second

// resource is a content collection mounted under /api
type resource struct {
	path    string
	kind    content.Kind
	listing accesspolicy.Listing
}

var resources = []resource{
	{"/agendaItems", content.KAgendaItem, accesspolicy.LAgenda},
	{"/bulletins", content.KBulletin, accesspolicy.LBulletins},
	{"/newsLetters", content.KNewsletter, accesspolicy.LNewsletters},
	{"/newsletters", content.KNewsletter, accesspolicy.LNewsletters},
	{"/contactItems", content.KContact, accesspolicy.LContacts},
}

// NewRouter builds the http routing of the whole API
func NewRouter(c *core.Core) chi.Router {
	if c == nil {
		panic(core.ErrNilCore)
	}

	ep := func(h endpoints.Handler, name string) http.Handler {
		return endpoints.NewEndpoint(c, h, name)
	}

	r := chi.NewRouter()

	r.Use(MiddlewareRequestID)
	r.Use(MiddlewareLogger(c.Logger().Named("[http]")))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.NotFound(notFound)

	//---------------------------------------------------------------------------
	// API ROUTING
	//---------------------------------------------------------------------------
	r.Route("/api", func(r chi.Router) {
		r.Use(MiddlewareAuthentication(c.Authenticator()))

		// every method reaches the gate, which answers the unsupported ones
		r.With(Gate(accesspolicy.Enrollment)).HandleFunc("/enrollment", dispatch(map[string]http.Handler{
			http.MethodPost:   ep(epenrollment.Post, "post_enrollment"),
			http.MethodDelete: ep(epenrollment.Delete, "delete_enrollment"),
		}))

		r.With(Gate(accesspolicy.PushSettings)).HandleFunc("/push-settings", dispatch(map[string]http.Handler{
			http.MethodGet:  ep(eppush.Get, "get_push_settings"),
			http.MethodPost: ep(eppush.Post, "post_push_settings"),
		}))

		r.With(Gate(accesspolicy.DeviceByID)).Handle("/devices/{id}", ep(epdevice.Any, "device_by_id"))

		r.With(Gate(accesspolicy.Session)).HandleFunc("/session", dispatch(map[string]http.Handler{
			http.MethodPost:   ep(epsession.Post, "post_session"),
			http.MethodDelete: ep(epsession.Delete, "delete_session"),
		}))

		r.With(Gate(accesspolicy.Timeline)).HandleFunc("/timeline", dispatch(map[string]http.Handler{
			http.MethodGet: ep(epcontent.Timeline, "get_timeline"),
		}))

		for _, res := range resources {
			res := res
			name := res.kind.String()

			r.Route(res.path, func(r chi.Router) {
				r.With(Gate(accesspolicy.ContentCollection)).HandleFunc("/", dispatch(map[string]http.Handler{
					http.MethodGet:  ep(epcontent.List(res.kind, res.listing), "list_"+name),
					http.MethodPost: ep(epcontent.Post(res.kind), "post_"+name),
				}))

				r.With(Gate(accesspolicy.ContentItem)).HandleFunc("/{id}", dispatch(map[string]http.Handler{
					http.MethodGet:    ep(epcontent.Get(res.kind), "get_"+name),
					http.MethodPut:    ep(epcontent.Put(res.kind), "put_"+name),
					http.MethodPatch:  ep(epcontent.Patch(res.kind), "patch_"+name),
					http.MethodDelete: ep(epcontent.Delete(res.kind), "delete_"+name),
				}))
			})
		}
	})

	return r
}

// dispatch routes by method, HEAD is served as GET; methods the gate lets
// through without a handler are answered with 405
func dispatch(handlers map[string]http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		method := r.Method
		if method == http.MethodHead {
			method = http.MethodGet
		}

		h, ok := handlers[method]
		if !ok {
			util.WriteResponseErrorTo(w, fmt.Sprintf("method %q not allowed", r.Method), http.StatusMethodNotAllowed)
			return
		}

		h.ServeHTTP(w, r)
	}
}

// Run serves the API until the context is cancelled
func Run(ctx context.Context, c *core.Core, addr string) (err error) {
	srv := &http.Server{
		Addr:         addr,
		Handler:      NewRouter(c),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	l := c.Logger()
	errs := make(chan error, 1)

	go func() {
		l.Info("listening", zap.String("addr", addr))
		errs <- srv.ListenAndServe()
	}()

	select {
	case err = <-errs:
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	l.Info("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(sctx); err != nil {
		return errors.Wrap(err, "failed to shut down gracefully")
	}

	return nil
}
