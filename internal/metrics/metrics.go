// Package metrics экспортирует метрики Prometheus для переходов машины блокировки.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/salespilots/paylock/internal/lock"
)

// Metrics собирает счётчики результатов операций над защищёнными конфигурациями.
type Metrics struct {
	registry *prometheus.Registry

	TransitionsTotal *prometheus.CounterVec // action, level, kind
	State            *prometheus.GaugeVec   // config, state: 1 для текущего состояния
}

// Убедимся, что Metrics удовлетворяет интерфейсу lock.Notifier.
var _ lock.Notifier = (*Metrics)(nil)

var allStates = []lock.State{lock.StateUninitialized, lock.StateUnlocked, lock.StateLocked}

// New создает метрики в собственном реестре.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "config_lock_operations_total",
				Help: "Total protected-config operations by action and outcome",
			},
			[]string{"action", "level", "kind"},
		),
		State: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "config_lock_state",
				Help: "Current lock state per protected config (1 = active state)",
			},
			[]string{"config", "state"},
		),
	}
	m.registry.MustRegister(m.TransitionsTotal, m.State)
	return m
}

// Notify учитывает результат операции.
func (m *Metrics) Notify(_ context.Context, res lock.Result) {
	m.TransitionsTotal.WithLabelValues(string(res.Action), string(res.Level), string(res.Kind)).Inc()
	for _, st := range allStates {
		value := 0.0
		if st == res.State {
			value = 1
		}
		m.State.WithLabelValues(res.Config, string(st)).Set(value)
	}
}

// Handler возвращает HTTP-обработчик для /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
