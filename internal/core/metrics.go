package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardex_import_records_total",
		Help: "Records processed by imports, by file format and outcome",
	}, []string{"format", "outcome"})

	importDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cardex_import_duration_seconds",
		Help:    "Duration of import operations",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"format"})

	importsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cardex_imports_in_flight",
		Help: "Imports currently holding a limiter slot",
	})

	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardex_exports_total",
		Help: "Completed exports by format",
	}, []string{"format"})

	qrOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardex_qr_operations_total",
		Help: "QR encode and decode operations by result",
	}, []string{"operation", "result"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardex_cache_lookups_total",
		Help: "Card cache lookups by result (hit or miss)",
	}, []string{"result"})
)
