// Package handler exposes the API as a single function for managed
// serverless hosts that import an http.HandlerFunc instead of running main.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/hugh/hoteldesk/internal/app"
	"github.com/hugh/hoteldesk/pkg/config"
	"github.com/hugh/hoteldesk/pkg/util"
)

var (
	mu     sync.Mutex
	router http.Handler
)

// build returns the cached router, building it on first use. A failed build
// is not cached so the next request tries again.
func build() (http.Handler, error) {
	mu.Lock()
	defer mu.Unlock()

	if router != nil {
		return router, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, err
	}
	router = a.Handler
	return router, nil
}

// Handler serves every /api request. The app is reused while the host keeps
// the instance warm.
func Handler(w http.ResponseWriter, r *http.Request) {
	h, err := build()
	if err != nil {
		slog.Error("handler initialization failed", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Lỗi máy chủ"})
		return
	}

	h.ServeHTTP(w, r)
}
