// Copyright (c) 2026 MindMeld. All rights reserved.

package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mindmeld/server/internal/platform/respond"
)

// HealthDependencies holds the injectable dependency checkers for the /ready endpoint.
type HealthDependencies struct {
	// CheckDatabase pings the PostgreSQL pool.
	CheckDatabase func() error

	// CheckCache pings the Redis client.
	CheckCache func() error
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
	startedAt    time.Time
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger, startedAt: time.Now()}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health (Liveness probe).
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]any{
		"status": "ok",
		"uptime": time.Since(handler.startedAt).Round(time.Second).String(),
	})
}

// readiness handles GET /ready (Readiness probe).
//
// Dependencies are pinged concurrently so the probe latency is the slowest
// check, not the sum of all of them.
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	checkers := map[string]func() error{
		"postgres": handler.dependencies.CheckDatabase,
		"redis":    handler.dependencies.CheckCache,
	}

	var (
		mutex  sync.Mutex
		group  sync.WaitGroup
		checks = make(map[string]string, len(checkers))
	)

	for name, check := range checkers {
		if check == nil {
			continue
		}

		group.Add(1)
		go func(name string, check func() error) {
			defer group.Done()

			status := "ok"
			if err := check(); err != nil {
				status = err.Error()
				handler.logger.Error("readiness_check_failed",
					slog.String("dependency", name),
					slog.Any("error", err),
				)
			}

			mutex.Lock()
			checks[name] = status
			mutex.Unlock()
		}(name, check)
	}
	group.Wait()

	isSystemReady := true
	for _, status := range checks {
		if status != "ok" {
			isSystemReady = false
			break
		}
	}

	responseStatus := "ready"
	if !isSystemReady {
		responseStatus = "degraded"
		// respond.OK always sends 200, so the header goes out first here
		writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		writer.WriteHeader(http.StatusServiceUnavailable)
	}

	respond.OK(writer, map[string]any{
		"status": responseStatus,
		"checks": checks,
	})
}
