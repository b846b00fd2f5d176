package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFreshnessWindow(t *testing.T) {
	ctx := context.Background()
	key := Key{ProjectSlug: "raydium", MetricID: "fees"}

	writtenAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	window := time.Hour

	tests := []struct {
		name     string
		readAt   time.Time
		wantMiss bool
	}{
		{"immediately after write", writtenAt, false},
		{"just inside window", writtenAt.Add(window - time.Second), false},
		{"exactly at window", writtenAt.Add(window), true},
		{"well past window", writtenAt.Add(2 * window), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemory()
			m.now = func() time.Time { return writtenAt }
			if err := m.Put(ctx, KindTimeSeries, key, []byte(`{"v":1}`)); err != nil {
				t.Fatalf("put: %v", err)
			}

			m.now = func() time.Time { return tt.readAt }
			payload, err := m.Get(ctx, KindTimeSeries, key, window)

			if tt.wantMiss {
				if !errors.Is(err, ErrMiss) {
					t.Errorf("err = %v, want ErrMiss", err)
				}
				// The row physically remains; only the read treats it as absent.
				if m.Len() != 1 {
					t.Errorf("Len() = %d, want 1", m.Len())
				}
				return
			}
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(payload) != `{"v":1}` {
				t.Errorf("payload = %s, want {\"v\":1}", payload)
			}
		})
	}
}

func TestPutIsUpsert(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	key := Key{ProjectSlug: "raydium", Granularity: "month"}

	if err := m.Put(ctx, KindFinancialStatement, key, []byte(`old`)); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := m.Put(ctx, KindFinancialStatement, key, []byte(`new`)); err != nil {
		t.Fatalf("second put: %v", err)
	}

	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after double put", m.Len())
	}

	payload, err := m.Get(ctx, KindFinancialStatement, key, time.Hour)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(payload) != "new" {
		t.Errorf("payload = %q, want %q", payload, "new")
	}
}

func TestKindsAreIsolated(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	key := Key{ProjectSlug: "raydium"}

	if err := m.Put(ctx, KindMetricsBreakdown, key, []byte(`breakdown`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, err := m.Get(ctx, KindFinancialStatement, key, time.Hour); !errors.Is(err, ErrMiss) {
		t.Errorf("cross-kind get err = %v, want ErrMiss", err)
	}

	got, err := m.Get(ctx, KindMetricsBreakdown, key, time.Hour)
	if err != nil {
		t.Fatalf("same-kind get: %v", err)
	}
	if string(got) != "breakdown" {
		t.Errorf("payload = %q, want %q", got, "breakdown")
	}
}

func TestDistinctKeysCoexist(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_ = m.Put(ctx, KindTimeSeries, Key{ProjectSlug: "raydium", MetricID: "fees"}, []byte(`a`))
	_ = m.Put(ctx, KindTimeSeries, Key{ProjectSlug: "raydium", MetricID: "revenue"}, []byte(`b`))

	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	got, err := m.Get(ctx, KindTimeSeries, Key{ProjectSlug: "raydium", MetricID: "revenue"}, time.Hour)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "b" {
		t.Errorf("payload = %q, want %q", got, "b")
	}
}
