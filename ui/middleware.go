package ui

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			log.Infof("%s %s %d %dB %s [%s]",
				r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(),
				time.Since(start), chimw.GetReqID(r.Context()))
		}()

		next.ServeHTTP(ww, r)
	})
}
