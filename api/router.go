package api

import (
	"io"
	"net/http"
	"time"

	"notesapi/api/router/handlers"
	"notesapi/core"
	"notesapi/docs"
	"notesapi/logger"
	"notesapi/ratelimit"
	"notesapi/version"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options tune the router. A nil Limiter disables rate limiting.
type Options struct {
	DefaultLimit int
	Limiter      *ratelimit.Limiter
}

// NewRouter builds the HTTP handler serving the notes and tags API.
func NewRouter(notes *core.NoteService, tags *core.TagService, opts Options) http.Handler {
	docs.SwaggerInfo.Version = version.AppVersion

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if opts.Limiter != nil {
		r.Use(ratelimit.Middleware(opts.Limiter, ratelimit.ClientKey))
	}
	r.Use(newCompressor().Handler)

	deps := handlers.Deps{Notes: notes, Tags: tags, DefaultLimit: opts.DefaultLimit}

	handlers.RegisterHealthRoutes(r)
	handlers.RegisterVersionRoutes(r)
	handlers.RegisterDocsRoutes(r)
	handlers.RegisterNoteRoutes(r, deps)
	handlers.RegisterTagRoutes(r, deps)

	r.NotFound(handlers.NotFoundHandler)
	r.MethodNotAllowed(handlers.MethodNotAllowedHandler)

	return r
}

// newCompressor compresses JSON responses with gzip, deflate or brotli,
// preferring brotli when the client accepts it.
func newCompressor() *middleware.Compressor {
	c := middleware.NewCompressor(5, "application/json")
	c.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	return c
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("%s %s -> %d (%d bytes, %s) [%s]",
				r.Method, r.URL.RequestURI(), status, ww.BytesWritten(), time.Since(start), middleware.GetReqID(r.Context()))
		}()
		next.ServeHTTP(ww, r)
	})
}
