package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/dse-2025.net/internal/core/ports/primary"
	resultsvc "gitlab.com/dse-2025.net/internal/core/services/results"
	"gitlab.com/dse-2025.net/internal/handlers"
	resultsapi "gitlab.com/dse-2025.net/internal/handlers/results"
)

type Server struct {
	router      *mux.Router
	srv         *http.Server
	Port        int
	ServiceName string
	store       resultsvc.IResultStore
	middleware  *handlers.MiddlewareProvider
	info        resultsapi.StoreInfo
	logger      primary.Logger
}

func NewServer(port int, serviceName string, store resultsvc.IResultStore, middleware *handlers.MiddlewareProvider, info resultsapi.StoreInfo, logger primary.Logger) *Server {
	return &Server{
		Port:        port,
		ServiceName: serviceName,
		store:       store,
		middleware:  middleware,
		info:        info,
		logger:      logger,
	}
}

func (s *Server) Init() error {
	r := mux.NewRouter()
	resultsapi.NewHandler(s.store, s.info, s.logger).Register(r)
	if s.middleware != nil && s.middleware.Enabled() {
		r.Use(s.middleware.JWTMiddleware)
	}
	s.router = r
	return nil
}

func (s *Server) Start(ctx context.Context) {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		s.logger.Info("Server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("Shutting down http server...")
	if s.srv == nil {
		return
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", "error", err)
	}
}
