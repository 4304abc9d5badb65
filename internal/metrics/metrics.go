// Package metrics agrupa las métricas Prometheus del servicio.
// Se definen en un paquete aparte para evitar ciclos entre http, services y workers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ─── HTTP ───

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Número total de requests procesadas",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	HTTPInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "Requests en vuelo",
	})

	RateLimitRejects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rate_limit_rejects_total",
		Help: "Requests rechazadas por rate limit",
	}, []string{"scope"})

	// ─── Dominio ───

	TicketsEscalated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_tickets_escalated_total",
		Help: "Tickets escalados por nivel alcanzado",
	}, []string{"level"})

	TicketsAutoAssigned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crm_tickets_auto_assigned_total",
		Help: "Tickets asignados automáticamente",
	})

	DealsClosed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_deals_closed_total",
		Help: "Deals cerrados por resultado",
	}, []string{"stage"}) // closed_won | closed_lost

	ContractsExpired = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_contracts_expired_total",
		Help: "Contratos expirados por el sweeper",
	}, []string{"renewed"})

	AuditEntries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_audit_entries_total",
		Help: "Entradas de auditoría por resultado",
	}, []string{"result"}) // ok | failed

	EmailsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_emails_sent_total",
		Help: "Emails enviados por resultado",
	}, []string{"result"})

	SLASweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "crm_sla_sweep_duration_seconds",
		Help:    "Duración de cada pasada del SLA sweeper",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		HTTPRequestsTotal, HTTPRequestDuration, HTTPInflight, RateLimitRejects,
		TicketsEscalated, TicketsAutoAssigned, DealsClosed, ContractsExpired,
		AuditEntries, EmailsSent, SLASweepDuration,
	}
}

// Register registra las métricas en el registry indicado (o el default si es nil).
// Registrar dos veces no es error.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range collectors() {
		if err := registerCollector(reg, c); err != nil {
			return err
		}
	}
	return nil
}

// registerCollector registra el collector ignorando duplicados.
func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}
