package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	corenumerator "warebase/internal/core/numerator"
)

// Mock objects
type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

type mockQuerier struct {
	mu sync.Mutex
	// counters simulates sys_sequences rows: key -> current_val
	counters map[string]int64
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{counters: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, _ := args[0].(string)
	var increment int64 = 1
	if len(args) == 2 {
		if val, ok := args[1].(int64); ok {
			increment = val
		}
	}

	m.counters[key] += increment
	return &mockRow{val: m.counters[key]}
}

var december = time.Date(2024, time.December, 5, 10, 0, 0, 0, time.UTC)

func TestGetNextNumber_Strict(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("PO")

	num, err := svc.GetNextNumber(ctx, cfg, nil, december)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "PO-202412-0001" {
		t.Errorf("expected PO-202412-0001, got %s", num)
	}

	num, err = svc.GetNextNumber(ctx, cfg, nil, december)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "PO-202412-0002" {
		t.Errorf("expected PO-202412-0002, got %s", num)
	}
}

func TestGetNextNumber_MonthlyReset(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("SO")

	num, err := svc.GetNextNumber(ctx, cfg, nil, december)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "SO-202412-0001" {
		t.Errorf("expected SO-202412-0001, got %s", num)
	}

	// A new month keys a fresh counter, so the sequence restarts at 1.
	january := time.Date(2025, time.January, 2, 9, 0, 0, 0, time.UTC)
	num, err = svc.GetNextNumber(ctx, cfg, nil, january)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "SO-202501-0001" {
		t.Errorf("expected SO-202501-0001, got %s", num)
	}
}

func TestGetNextNumber_PrefixesAreIndependent(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()

	po, err := svc.GetNextNumber(ctx, corenumerator.DefaultConfig("PO"), nil, december)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	so, err := svc.GetNextNumber(ctx, corenumerator.DefaultConfig("SO"), nil, december)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if po != "PO-202412-0001" || so != "SO-202412-0001" {
		t.Errorf("expected independent sequences, got %s and %s", po, so)
	}
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("PO")

	opts := &corenumerator.Options{
		Strategy:  corenumerator.StrategyCached,
		RangeSize: 10,
	}

	// First call reserves 1..10 in one DB round trip.
	num, err := svc.GetNextNumber(ctx, cfg, opts, december)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "PO-202412-0001" {
		t.Errorf("expected PO-202412-0001, got %s", num)
	}
	if q.counters["PO_2024_12"] != 10 {
		t.Errorf("expected DB value 10, got %d", q.counters["PO_2024_12"])
	}

	// Second call must come from memory.
	num, err = svc.GetNextNumber(ctx, cfg, opts, december)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "PO-202412-0002" {
		t.Errorf("expected PO-202412-0002, got %s", num)
	}
	if q.counters["PO_2024_12"] != 10 {
		t.Errorf("expected DB value to stay 10, got %d", q.counters["PO_2024_12"])
	}

	// Exhaust the range; the next call reserves 11..20.
	for i := 0; i < 8; i++ {
		_, _ = svc.GetNextNumber(ctx, cfg, opts, december)
	}
	num, err = svc.GetNextNumber(ctx, cfg, opts, december)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "PO-202412-0011" {
		t.Errorf("expected PO-202412-0011, got %s", num)
	}
	if q.counters["PO_2024_12"] != 20 {
		t.Errorf("expected DB value 20, got %d", q.counters["PO_2024_12"])
	}
}

func TestParseNumber(t *testing.T) {
	if got := ParseNumber("PO-202412-0042"); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if got := ParseNumber("garbage"); got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
}
