package rpc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics tracks request counters for the status API and the metrics
// endpoint.
type Metrics struct {
	RequestsTotal       atomic.Int64
	ClientErrorsTotal   atomic.Int64
	InternalErrorsTotal atomic.Int64
	CompletionsTotal    atomic.Int64
}

// StatusResponse is the JSON body returned by GET /api/v1/status.
type StatusResponse struct {
	Service       string `json:"service"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Provider      string `json:"provider"`
	Agents        int    `json:"agents"`
	Requests      int64  `json:"requests"`
	ClientErrors  int64  `json:"client_errors"`
	InternalErrs  int64  `json:"internal_errors"`
	Completions   int64  `json:"completions"`
}

// statusHandler returns an HTTP handler for GET /api/v1/status.
func statusHandler(d *Dispatcher, startTime time.Time, metrics *Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		resp := StatusResponse{
			Service:       "agent-gateway",
			UptimeSeconds: int64(time.Since(startTime).Seconds()),
			Provider:      d.ProviderName(),
			Agents:        d.AgentCount(),
			Requests:      metrics.RequestsTotal.Load(),
			ClientErrors:  metrics.ClientErrorsTotal.Load(),
			InternalErrs:  metrics.InternalErrorsTotal.Load(),
			Completions:   metrics.CompletionsTotal.Load(),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

// metricsHandler returns an HTTP handler for GET /metrics in Prometheus text
// format. This uses the lightweight text format to avoid pulling in the full
// prometheus client.
func metricsHandler(d *Dispatcher, startTime time.Time, metrics *Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

		fmt.Fprintf(w, "# HELP gateway_requests_total Total JSON-RPC requests dispatched.\n")
		fmt.Fprintf(w, "# TYPE gateway_requests_total counter\n")
		fmt.Fprintf(w, "gateway_requests_total %d\n", metrics.RequestsTotal.Load())

		fmt.Fprintf(w, "# HELP gateway_client_errors_total Requests rejected with -326xx client errors.\n")
		fmt.Fprintf(w, "# TYPE gateway_client_errors_total counter\n")
		fmt.Fprintf(w, "gateway_client_errors_total %d\n", metrics.ClientErrorsTotal.Load())

		fmt.Fprintf(w, "# HELP gateway_internal_errors_total Requests failed on the completion backend.\n")
		fmt.Fprintf(w, "# TYPE gateway_internal_errors_total counter\n")
		fmt.Fprintf(w, "gateway_internal_errors_total %d\n", metrics.InternalErrorsTotal.Load())

		fmt.Fprintf(w, "# HELP gateway_completions_total Successful completions.\n")
		fmt.Fprintf(w, "# TYPE gateway_completions_total counter\n")
		fmt.Fprintf(w, "gateway_completions_total %d\n", metrics.CompletionsTotal.Load())

		fmt.Fprintf(w, "# HELP gateway_agents Number of agents in the catalog.\n")
		fmt.Fprintf(w, "# TYPE gateway_agents gauge\n")
		fmt.Fprintf(w, "gateway_agents %d\n", d.AgentCount())

		fmt.Fprintf(w, "# HELP gateway_uptime_seconds Seconds since the gateway started.\n")
		fmt.Fprintf(w, "# TYPE gateway_uptime_seconds gauge\n")
		fmt.Fprintf(w, "gateway_uptime_seconds %.0f\n", time.Since(startTime).Seconds())

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		fmt.Fprintf(w, "# HELP go_goroutines Number of goroutines.\n")
		fmt.Fprintf(w, "# TYPE go_goroutines gauge\n")
		fmt.Fprintf(w, "go_goroutines %d\n", runtime.NumGoroutine())

		fmt.Fprintf(w, "# HELP go_memstats_alloc_bytes Bytes of allocated heap objects.\n")
		fmt.Fprintf(w, "# TYPE go_memstats_alloc_bytes gauge\n")
		fmt.Fprintf(w, "go_memstats_alloc_bytes %d\n", mem.Alloc)
	}
}
