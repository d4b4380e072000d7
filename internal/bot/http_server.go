package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/groupinviter/groupinviterbot/internal/config"
)

// metricsServer exposes collected counters over HTTP. One instance is owned
// by the Bot; there is no process-global started state.
type metricsServer struct {
	server  *http.Server
	metrics Metrics
	logger  Logger
}

func newMetricsServer(cfg config.MetricsConfig, metrics Metrics, logger Logger) *metricsServer {
	ms := &metricsServer{
		metrics: metrics,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", ms.handleMetrics)
	mux.HandleFunc("/healthz", ms.handleHealth)

	ms.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return ms
}

// Start serves in the background until Stop is called
func (ms *metricsServer) Start() {
	ms.logger.Info("Metrics server listening", StringField("address", ms.server.Addr))

	go func() {
		if err := ms.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ms.logger.Error("Metrics server stopped", err)
		}
	}()
}

// Stop shuts the server down gracefully
func (ms *metricsServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ms.server.Shutdown(ctx); err != nil {
		ms.logger.Error("Error stopping metrics server", err)
	}
}

func (ms *metricsServer) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats := map[string]interface{}{"status": "unavailable"}
	if collector, ok := ms.metrics.(*InMemoryMetrics); ok {
		stats = collector.GetStats()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		ms.logger.Error("Failed to encode metrics response", err)
	}
}

func (ms *metricsServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
