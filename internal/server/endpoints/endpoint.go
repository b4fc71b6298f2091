package endpoints

import (
	"context"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sebastiaanschool/schoolhub/internal/core"
	"github.com/sebastiaanschool/schoolhub/pkg/util"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MaxBodySize limits the size of a request body
const MaxBodySize = 1 << 20

// ContextKey is used to store request scoped values
type ContextKey uint8

// context keys
const (
	CKRequestID ContextKey = iota
	CKLogger
)

// RequestID returns the identifier assigned to the current request
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(CKRequestID).(string)
	return id
}

// Logger returns the request scoped logger, or the given fallback
func Logger(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(CKLogger).(*zap.Logger); ok && l != nil {
		return l
	}

	return fallback
}

// Handler represents a custom handler, a non-nil error is rendered
// as the response detail unless the code is a server error
type Handler func(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, code int, err error)

// Endpoint adapts a Handler to http.Handler
type Endpoint struct {
	core    *core.Core
	name    string
	handler Handler
}

// NewEndpoint initializes a new endpoint
func NewEndpoint(c *core.Core, h Handler, name string) (e Endpoint) {
	if c == nil {
		panic(core.ErrNilCore)
	}

	// basic validation
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		panic(errors.New("empty endpoint name"))
	}

	e = Endpoint{
		core:    c,
		name:    name,
		handler: h,
	}

	return e
}

func (e Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := Logger(ctx, e.core.Logger()).With(zap.String("endpoint", e.name))

	// executing handler
	result, code, err := e.handler(ctx, e.core, w, r)

	if err != nil {
		detail := errors.Cause(err).Error()

		if code >= http.StatusInternalServerError || code == 0 {
			l.Error("request failed", zap.Error(err))

			code = http.StatusInternalServerError
			detail = http.StatusText(code)
		}

		util.WriteResponseErrorTo(w, detail, code)

		return
	}

	if result == nil {
		w.WriteHeader(code)
		return
	}

	// marshaling handler's result
	payload, err := json.Marshal(result)
	if err != nil {
		l.Error("failed to marshal response", zap.Error(err))
		util.WriteResponseErrorTo(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	if _, ok := r.URL.Query()["pretty"]; ok {
		payload = pretty.Pretty(payload)
	}

	// cacheable responses carry an entity tag
	if r.Method == http.MethodGet && code == http.StatusOK {
		etag := util.ETag(payload)
		w.Header().Set("ETag", etag)

		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(code)
	w.Write(payload)
}

// ReadBody reads a request body up to MaxBodySize
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		return nil, errors.New("request body could not be read")
	}

	return body, nil
}

// HasFlag tells whether a query parameter is present, regardless of its value
func HasFlag(r *http.Request, name string) bool {
	_, ok := r.URL.Query()[name]
	return ok
}
