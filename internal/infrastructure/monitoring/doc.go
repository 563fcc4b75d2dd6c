/*
Package monitoring provides Prometheus metrics for the Datash host.

# Overview

Metrics are registered against an injected prometheus.Registerer so tests can
use a private registry. A nil *Metrics records nothing, which keeps optional
instrumentation out of component constructors.

# Metrics

  - datash_http_requests_total, datash_http_request_duration_seconds
  - datash_bridge_calls_total{method,status}
  - datash_bridge_errors_total{kind}
  - datash_transfers_total{outcome}, datash_transfers_pending
  - datash_download_bytes_written_total
  - datash_share_items_delivered_total{kind}
  - datash_worker_task_duration_seconds{task,status}
  - datash_ws_connections, datash_ws_messages_total{direction,type}

# Usage

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	router.Use(monitoring.Middleware(metrics))
	pool.Observe(metrics.ObserveTask)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
