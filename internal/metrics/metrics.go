// Package metrics exposes Prometheus counters for the append pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersAppended counts orders whose rows were all appended.
	OrdersAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sheetsync_orders_appended_total",
		Help: "Orders successfully appended to the spreadsheet.",
	})

	// OrdersRejected counts orders rejected as malformed.
	OrdersRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sheetsync_orders_rejected_total",
		Help: "Orders rejected because they violate the order invariants.",
	})

	// RowsAppended counts individual spreadsheet rows appended.
	RowsAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sheetsync_rows_appended_total",
		Help: "Spreadsheet rows appended.",
	})

	// AppendFailures counts batches that failed at the append stage.
	AppendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sheetsync_append_failures_total",
		Help: "Order batches that failed while appending rows.",
	})
)
