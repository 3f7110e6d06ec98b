// Package metrics defines the Prometheus metrics exported by mediacat and the
// small HTTP surface that serves them.
//
// All metrics are registered on the default registry at init time through
// promauto. The storage layer records every query through
// DBQueryTotal/DBQueryDuration; ingestion, the raw query gateway and the MCP
// tools record their outcomes in the remaining counters.
//
// The listener is optional and only started by "mediacat serve --metrics-addr":
//
//	srv := metrics.NewServer(":9464", store.Ping)
//	go srv.ListenAndServe()
//
// It serves /metrics (promhttp) and /healthz, which returns 503 when the
// health function fails.
package metrics
