package main

import (
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/auth"
)

func setupServer(port string, services *Services) *http.Server {
	mux := http.NewServeMux()

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Grpc-Status", "Grpc-Message", "Connect-Protocol-Version"},
	})

	registerServices(mux, services)
	setupHealthCheck(mux)

	handler := c.Handler(gzhttp.GzipHandler(accessLog(mux)))

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func registerServices(mux *http.ServeMux, services *Services) {
	// Login is the only procedure callable without a session token
	interceptors := connect.WithInterceptors(auth.NewInterceptor(services.AuthApp, auth.LoginProcedure))

	mux.Handle(services.Auth.Handler(interceptors))
	mux.Handle(services.Settings.Handler(interceptors))
	mux.Handle(services.Clients.Handler(interceptors))
	mux.Handle(services.Inventory.Handler(interceptors))
	mux.Handle(services.Auctions.Handler(interceptors))
	mux.Handle(services.Payments.Handler(interceptors))
	mux.Handle(services.Financial.Handler(interceptors))
	mux.Handle(services.LiveFloor.Handler(interceptors))
}

func setupHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		ev := log.Debug()
		if rec.status >= http.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
