package ws

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/config"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/ports/inbound"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/ports/outbound"
)

type Server struct {
	handler    *WsHandler
	httpServer *http.Server
	config     *config.Config
	logger     zerolog.Logger
}

type ServerParams struct {
	Config      *config.Config
	Engine      inbound.BiddingEngine
	Moderation  inbound.ModerationService
	Deposits    inbound.DepositService
	Broadcaster outbound.Broadcaster
	Logger      zerolog.Logger
}

func NewServer(params ServerParams) *Server {
	handler := NewHandler(WsHandlerParams{
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  params.Config.WebSocket.ReadBufferSize,
			WriteBufferSize: params.Config.WebSocket.WriteBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		Engine:      params.Engine,
		Moderation:  params.Moderation,
		Deposits:    params.Deposits,
		Broadcaster: params.Broadcaster,
		Logger:      params.Logger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.HandleWebSocket)
	mux.HandleFunc("/health", handleHealth)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", params.Config.Server.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Minute,
	}

	return &Server{
		handler:    handler,
		httpServer: httpServer,
		config:     params.Config,
		logger:     params.Logger,
	}
}

// Start starts the WebSocket server
func (s *Server) Start() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting WebSocket server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start WebSocket server: %w", err)
	}

	return nil
}

// Stop gracefully stops the WebSocket server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping WebSocket server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown WebSocket server: %w", err)
	}

	s.logger.Info().Msg("WebSocket server stopped")
	return nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok", "service": "bidding-engine"}`))
}
