package rpc

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// Package prefix for every procedure, e.g. /cavallin.inventory.v1.InventoryService/GetCard.
const Package = "cavallin"

// ServiceName builds the fully-qualified name of a service.
func ServiceName(area, service string) string {
	return Package + "." + area + ".v1." + service
}

// Procedure builds the path of a method on a service.
func Procedure(serviceName, method string) string {
	return "/" + serviceName + "/" + method
}

// Service collects the unary handlers of one Connect service.
type Service struct {
	name     string
	opts     []connect.HandlerOption
	handlers map[string]http.Handler
}

// NewService starts a service. The JSON codec is always installed.
func NewService(name string, opts ...connect.HandlerOption) *Service {
	return &Service{
		name:     name,
		opts:     append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...),
		handlers: make(map[string]http.Handler),
	}
}

// Name returns the fully-qualified service name.
func (s *Service) Name() string {
	return s.name
}

// Unary registers a unary method on s.
func Unary[Req, Res any](s *Service, method string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error)) {
	procedure := Procedure(s.name, method)
	s.handlers[procedure] = connect.NewUnaryHandler(procedure, fn, s.opts...)
}

// Handler returns the mount path and the handler routing to each method.
func (s *Service) Handler() (string, http.Handler) {
	path := "/" + s.name + "/"
	return path, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := s.handlers[r.URL.Path]
		if !ok || !strings.HasPrefix(r.URL.Path, path) {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// NewClient builds a typed unary client for one procedure on baseURL.
func NewClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts ...connect.ClientOption) *connect.Client[Req, Res] {
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return connect.NewClient[Req, Res](httpClient, strings.TrimRight(baseURL, "/")+procedure, opts...)
}
