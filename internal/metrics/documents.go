package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	NameTotalDocumentLoads  = "total_document_loads"
	NameTotalDocumentSaves  = "total_document_saves"
	NameTotalSaveRetries    = "total_save_retries"
	NameTotalSaveFailures   = "total_save_failures"
	NameTotalSearchRequests = "total_search_requests"
	NameTotalFallbackMounts = "total_fallback_mounts"
)

var TotalDocumentLoads = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      NameTotalDocumentLoads,
		Help:      "Total documents loaded into the editor",
		Namespace: Namespace,
	},
)

var TotalDocumentSaves = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      NameTotalDocumentSaves,
		Help:      "Total successful document saves",
		Namespace: Namespace,
	},
)

var TotalSaveRetries = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      NameTotalSaveRetries,
		Help:      "Total retried save attempts",
		Namespace: Namespace,
	},
)

var TotalSaveFailures = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      NameTotalSaveFailures,
		Help:      "Total saves that exhausted every retry",
		Namespace: Namespace,
	},
)

var TotalSearchRequests = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      NameTotalSearchRequests,
		Help:      "Total search requests",
		Namespace: Namespace,
	},
)

var TotalFallbackMounts = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      NameTotalFallbackMounts,
		Help:      "Total editor bindings downgraded to the plain-text fallback surface",
		Namespace: Namespace,
	},
)
