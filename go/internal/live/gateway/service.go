package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/auth"
)

// Service wires the connection manager, the JetStream consumer and the HTTP
// handlers of the floor gateway
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	eventConsumer     *EventConsumer
	stateHandler      *StateHandler
	verifier          auth.Verifier
}

type Config struct {
	ConnectionConfig ConnectionConfig
	JetStreamConfig  JetStreamConsumerConfig
}

func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		JetStreamConfig:  DefaultJetStreamConsumerConfig(),
	}
}

// NewService connects to JetStream. A nil verifier leaves the websocket and
// state routes open, which is only meant for local development.
func NewService(ctx context.Context, config Config, stateProvider StateProvider, verifier auth.Verifier) (*Service, error) {
	cm := NewConnectionManager(config.ConnectionConfig)

	eventConsumer, err := NewEventConsumer(ctx, cm, config.JetStreamConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create event consumer: %w", err)
	}

	return &Service{
		connectionManager: cm,
		wsHandler:         NewWebSocketHandler(cm, stateProvider),
		eventConsumer:     eventConsumer,
		stateHandler:      NewStateHandler(stateProvider),
		verifier:          verifier,
	}, nil
}

// Start runs the connection manager and the consumer until ctx is cancelled
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting floor gateway service")

	go s.connectionManager.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.eventConsumer.Start(ctx)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			s.Stop()
			return fmt.Errorf("event consumer failed: %w", err)
		}
	}

	log.Info().Msg("floor gateway service shutting down")
	return s.Stop()
}

func (s *Service) Stop() error {
	if err := s.eventConsumer.Stop(); err != nil {
		log.Error().Err(err).Msg("failed to stop event consumer")
	}
	log.Info().Msg("floor gateway service stopped")
	return nil
}

func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	wrap := func(h http.Handler) http.Handler { return h }
	if s.verifier != nil {
		wrap = func(h http.Handler) http.Handler { return auth.RequireToken(s.verifier, h) }
	}
	s.wsHandler.RegisterRoutes(mux, wrap)
	s.stateHandler.RegisterStateRoutes(mux, wrap)
	log.Info().Msg("floor gateway routes registered")
}

func (s *Service) Stats() ConnectionStats {
	return s.connectionManager.Stats()
}

// Connected reports whether the NATS connection is up
func (s *Service) Connected() bool {
	nc := s.eventConsumer.Conn()
	return nc != nil && nc.IsConnected()
}
