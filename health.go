package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type botStatus struct {
	mu    sync.RWMutex
	value string
}

func newBotStatus() *botStatus {
	return &botStatus{value: "starting"}
}

func (b *botStatus) set(v string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.value = v
}

func (b *botStatus) get() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.value
}

type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	BotStatus string `json:"bot_status"`
	Database  string `json:"database,omitempty"`
}

type healthServer struct {
	port   string
	status *botStatus
	ping   func(ctx context.Context) error

	mu     sync.Mutex
	server *http.Server
}

func (h *healthServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Discord Bot Status: %s", h.status.get())
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "healthy", Service: "travis-bott", BotStatus: h.status.get()}
		code := http.StatusOK

		h.mu.Lock()
		ping := h.ping
		h.mu.Unlock()

		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			err := ping(ctx)
			cancel()
			if err != nil {
				resp.Status = "degraded"
				resp.Database = "unreachable"
				code = http.StatusServiceUnavailable
			} else {
				resp.Database = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	})

	return mux
}

func (h *healthServer) setPing(ping func(ctx context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ping = ping
}

func (h *healthServer) start() {
	port := h.port
	if port == "" {
		port = "8080"
	}

	h.mu.Lock()
	h.server = &http.Server{
		Addr:              ":" + port,
		Handler:           h.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := h.server
	h.mu.Unlock()

	log.Info().Str("port", port).Msg("Health server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Health server error")
	}
}

func (h *healthServer) shutdown() {
	h.mu.Lock()
	srv := h.server
	h.mu.Unlock()
	if srv == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Health server shutdown failed")
	}
}
