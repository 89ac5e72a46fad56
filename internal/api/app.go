package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/drawnet/drawboard/internal/config"
	"github.com/drawnet/drawboard/internal/database"
	"github.com/drawnet/drawboard/internal/relay"
	"github.com/gorilla/handlers"
	"github.com/teris-io/shortid"
)

type DrawboardApp struct {
	log            *log.Logger
	db             database.Repository
	mux            *http.Server
	relay          *relay.RelayServer
	signingKey     []byte
	allowedOrigins []string
}

func NewDrawboardApp(mux *http.ServeMux, logger *log.Logger, rs *relay.RelayServer, db database.Repository, cfg *config.Config) *DrawboardApp {
	s := &DrawboardApp{
		log:            logger,
		db:             db,
		relay:          rs,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.Handle("GET /api/auth/session", s.authMiddleware(s.session))
	mux.Handle("GET /api/auth/logout", s.authMiddleware(s.logout))
	mux.Handle("POST /api/rooms", s.authMiddleware(s.createRoom))
	mux.Handle("DELETE /api/rooms", s.authMiddleware(s.deleteRoom))
	mux.Handle("GET /api/rooms", s.authMiddleware(s.getRoom))
	mux.Handle("GET /api/chats", s.authMiddleware(s.getChats))
	mux.Handle("GET /ws", s.wsAuthMiddleware(s.serveWs))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *DrawboardApp) generateShortId() (string, error) {
	return shortid.Generate()
}

func (s *DrawboardApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *DrawboardApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
