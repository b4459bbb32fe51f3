package otel

import (
	"context"
	"sync"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/MrEthical07/cookiejwt"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot cookiejwt.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() cookiejwt.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := cookiejwt.MetricsSnapshot{
		Counters:   make(map[cookiejwt.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[cookiejwt.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		next := make([]uint64, len(buckets))
		copy(next, buckets)
		out.Histograms[k] = next
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("cookiejwt-test")

	src := &fakeSource{
		snapshot: cookiejwt.MetricsSnapshot{
			Counters: map[cookiejwt.MetricID]uint64{
				cookiejwt.MetricSessionLoaded: 3,
			},
			Histograms: map[cookiejwt.MetricID][]uint64{
				cookiejwt.MetricDecodeLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		dropped: 1,
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(rm.ScopeMetrics) == 0 {
		t.Fatal("expected collected metrics, got none")
	}
}

func TestExporterRejectsNilSource(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("cookiejwt-test")

	if _, err := NewOTelExporterFromSource(meter, nil); err == nil {
		t.Fatal("expected error for nil source")
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("cookiejwt-test")

	src := &fakeSource{
		snapshot: cookiejwt.MetricsSnapshot{
			Counters: map[cookiejwt.MetricID]uint64{
				cookiejwt.MetricSessionLoaded: 1,
			},
			Histograms: map[cookiejwt.MetricID][]uint64{
				cookiejwt.MetricDecodeLatency: {1, 0, 0, 0, 0, 0, 0, 0},
			},
		},
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[cookiejwt.MetricSessionLoaded] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}

func TestExporterObservesSnapshotValues(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("cookiejwt-test")

	src := &fakeSource{
		snapshot: cookiejwt.MetricsSnapshot{
			Counters: map[cookiejwt.MetricID]uint64{
				cookiejwt.MetricSessionCommitted: 5,
			},
			Histograms: map[cookiejwt.MetricID][]uint64{
				cookiejwt.MetricEncodeLatency: {2, 1, 0, 0, 0, 0, 0, 0},
			},
		},
		dropped: 4,
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer exp.Close()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	values := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				if len(data.DataPoints) > 0 {
					values[m.Name] = data.DataPoints[0].Value
				}
			case metricdata.Gauge[int64]:
				if len(data.DataPoints) > 0 {
					values[m.Name] = data.DataPoints[0].Value
				}
			}
		}
	}

	want := map[string]int64{
		"cookiejwt_session_committed_total":               5,
		"cookiejwt_audit_dropped_total":                   4,
		"cookiejwt_encode_latency_seconds_bucket_le_0_01": 3,
		"cookiejwt_encode_latency_seconds_count":          3,
	}
	for name, v := range want {
		if values[name] != v {
			t.Fatalf("%s expected %d, got %d", name, v, values[name])
		}
	}
}

func TestExporterRejectsNilMeter(t *testing.T) {
	if _, err := NewOTelExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
}
