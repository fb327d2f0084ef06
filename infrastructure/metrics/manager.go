package metrics

import (
	"context"
	"sync"

	"github.com/agaii/ping-api/infrastructure/logger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Manager registers and drives the application's named instruments.
// Instruments are created once during container init and updated from
// hot paths without further allocation.
type Manager interface {
	NewCounter(name, description string)
	NewGauge(name, description string)
	NewHistogram(name, description string, buckets ...float64)

	IncCounter(name string, value float64)
	SetGauge(name string, value float64)
	ObserveHistogram(name string, value float64)
}

type metricsManager struct {
	meter  metric.Meter
	logger *logger.Logger

	mu         sync.RWMutex
	counters   map[string]metric.Float64Counter
	gauges     map[string]metric.Float64Gauge
	histograms map[string]metric.Float64Histogram
}

func NewMetricsManager(meter metric.Meter, logger *logger.Logger) Manager {
	return &metricsManager{
		meter:      meter,
		logger:     logger,
		counters:   make(map[string]metric.Float64Counter),
		gauges:     make(map[string]metric.Float64Gauge),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

func (m *metricsManager) NewCounter(name, description string) {
	counter, err := m.meter.Float64Counter(name, metric.WithDescription(description))
	if err != nil {
		m.logger.Error("failed to register counter", zap.Error(err), zap.String("name", name))
		return
	}

	m.mu.Lock()
	m.counters[name] = counter
	m.mu.Unlock()
}

func (m *metricsManager) NewGauge(name, description string) {
	gauge, err := m.meter.Float64Gauge(name, metric.WithDescription(description))
	if err != nil {
		m.logger.Error("failed to register gauge", zap.Error(err), zap.String("name", name))
		return
	}

	m.mu.Lock()
	m.gauges[name] = gauge
	m.mu.Unlock()
}

func (m *metricsManager) NewHistogram(name, description string, buckets ...float64) {
	histogram, err := m.meter.Float64Histogram(name,
		metric.WithDescription(description),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	if err != nil {
		m.logger.Error("failed to register histogram", zap.Error(err), zap.String("name", name))
		return
	}

	m.mu.Lock()
	m.histograms[name] = histogram
	m.mu.Unlock()
}

func (m *metricsManager) IncCounter(name string, value float64) {
	m.mu.RLock()
	counter, ok := m.counters[name]
	m.mu.RUnlock()

	if ok {
		counter.Add(context.Background(), value)
	}
}

func (m *metricsManager) SetGauge(name string, value float64) {
	m.mu.RLock()
	gauge, ok := m.gauges[name]
	m.mu.RUnlock()

	if ok {
		gauge.Record(context.Background(), value)
	}
}

func (m *metricsManager) ObserveHistogram(name string, value float64) {
	m.mu.RLock()
	histogram, ok := m.histograms[name]
	m.mu.RUnlock()

	if ok {
		histogram.Record(context.Background(), value)
	}
}
