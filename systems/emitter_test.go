package systems

import (
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/trail/config"
)

func newTestEmitter() (*Emitter, *SpawnQueue) {
	return NewEmitter(config.Default().Emitter), NewSpawnQueue()
}

func TestEmitterStationaryPointerSpawnsNothing(t *testing.T) {
	e, q := newTestEmitter()
	t0 := time.Unix(1000, 0)

	e.Sample(PointerSample{X: 100, Y: 100, Time: t0}, q)
	n := e.Sample(PointerSample{X: 100, Y: 100, Time: t0}, q)

	if n != 0 {
		t.Errorf("spawned %d, want 0 for zero speed", n)
	}
	if q.Len() != 0 {
		t.Errorf("queue holds %d requests, want 0", q.Len())
	}
}

func TestEmitterFastMoveSpawnsFour(t *testing.T) {
	e, q := newTestEmitter()
	t0 := time.Unix(1000, 0)

	e.Sample(PointerSample{X: 0, Y: 0, Time: t0}, q)
	n := e.Sample(PointerSample{X: 40, Y: 30, Time: t0.Add(20 * time.Millisecond)}, q)

	if n != 4 {
		t.Fatalf("spawned %d, want 4 for speed 50", n)
	}

	reqs, batches := q.Drain(nil)
	if batches != 1 {
		t.Errorf("batches = %d, want 1", batches)
	}
	if len(reqs) != 4 {
		t.Fatalf("drained %d requests, want 4", len(reqs))
	}
	for i, r := range reqs {
		if r.X != 40 || r.Y != 30 {
			t.Errorf("request %d at (%v, %v), want (40, 30)", i, r.X, r.Y)
		}
		if r.HintX != 40 || r.HintY != 30 {
			t.Errorf("request %d hint (%v, %v), want (40, 30)", i, r.HintX, r.HintY)
		}
	}
}

func TestEmitterFirstSampleOnlyRecordsPosition(t *testing.T) {
	e, q := newTestEmitter()

	if n := e.Sample(PointerSample{X: 500, Y: 500, Time: time.Unix(1, 0)}, q); n != 0 {
		t.Errorf("first sample spawned %d, want 0", n)
	}
}

func TestEmitterSpeedThresholdIsStrict(t *testing.T) {
	e, q := newTestEmitter()
	t0 := time.Unix(1000, 0)

	e.Sample(PointerSample{X: 0, Y: 0, Time: t0}, q)
	if n := e.Sample(PointerSample{X: 2, Y: 0, Time: t0.Add(time.Second)}, q); n != 0 {
		t.Errorf("speed exactly at threshold spawned %d, want 0", n)
	}
	if n := e.Sample(PointerSample{X: 4.5, Y: 0, Time: t0.Add(2 * time.Second)}, q); n != 1 {
		t.Errorf("speed 2.5 spawned %d, want 1", n)
	}
}

func TestEmitterGatingOneBatchPerInterval(t *testing.T) {
	e, q := newTestEmitter()
	t0 := time.Unix(1000, 0)

	e.Sample(PointerSample{X: 0, Y: 0, Time: t0}, q)

	var spawnTimes []time.Duration
	for i := 1; i <= 200; i++ {
		at := time.Duration(i) * time.Millisecond
		if e.Sample(PointerSample{X: float64(i * 10), Y: 0, Time: t0.Add(at)}, q) > 0 {
			spawnTimes = append(spawnTimes, at)
		}
	}

	if len(spawnTimes) < 2 {
		t.Fatalf("expected several batches over 200ms, got %d", len(spawnTimes))
	}
	for i := 1; i < len(spawnTimes); i++ {
		if gap := spawnTimes[i] - spawnTimes[i-1]; gap <= 16*time.Millisecond {
			t.Errorf("batches %d and %d only %v apart", i-1, i, gap)
		}
	}

	_, batches := q.Drain(nil)
	if batches != len(spawnTimes) {
		t.Errorf("queue saw %d batches, emitter reported %d", batches, len(spawnTimes))
	}
	// 200ms with a strict 16ms gap allows at most one batch per 17ms
	if batches > 200/17+1 {
		t.Errorf("batches = %d, exceeds one per interval window", batches)
	}
}

func TestEmitterIgnoresNonFiniteSamples(t *testing.T) {
	e, q := newTestEmitter()
	t0 := time.Unix(1000, 0)

	e.Sample(PointerSample{X: 0, Y: 0, Time: t0}, q)
	e.Sample(PointerSample{X: math.NaN(), Y: 10, Time: t0.Add(time.Second)}, q)
	e.Sample(PointerSample{X: math.Inf(1), Y: 10, Time: t0.Add(time.Second)}, q)

	// Previous position is still (0, 0), so this is speed 50
	if n := e.Sample(PointerSample{X: 40, Y: 30, Time: t0.Add(2 * time.Second)}, q); n != 4 {
		t.Errorf("spawned %d after non-finite samples, want 4", n)
	}
}

func TestEmitterBatchSize(t *testing.T) {
	e, _ := newTestEmitter()

	tests := []struct {
		speed float64
		want  int
	}{
		{2.5, 1},
		{7.9, 1},
		{8, 2},
		{15.9, 2},
		{16, 3},
		{24, 4},
		{50, 4},
		{10000, 4},
	}

	for _, tt := range tests {
		if got := e.BatchSize(tt.speed); got != tt.want {
			t.Errorf("BatchSize(%v) = %d, want %d", tt.speed, got, tt.want)
		}
	}
}

func TestEmitterReset(t *testing.T) {
	e, q := newTestEmitter()
	t0 := time.Unix(1000, 0)

	e.Sample(PointerSample{X: 0, Y: 0, Time: t0}, q)
	e.Reset()

	if n := e.Sample(PointerSample{X: 40, Y: 30, Time: t0.Add(time.Second)}, q); n != 0 {
		t.Errorf("sample after reset spawned %d, want 0", n)
	}
}

func TestEmitterSetConfigKeepsHistory(t *testing.T) {
	e, q := newTestEmitter()
	t0 := time.Unix(1000, 0)

	e.Sample(PointerSample{X: 0, Y: 0, Time: t0}, q)

	cfg := config.Default().Emitter
	cfg.MaxPerBatch = 8
	cfg.SpeedPerParticle = 1
	e.SetConfig(cfg)

	// Previous position survives, so this measures speed 50
	if n := e.Sample(PointerSample{X: 40, Y: 30, Time: t0.Add(20 * time.Millisecond)}, q); n != 8 {
		t.Errorf("spawned %d, want 8 after raising the batch cap", n)
	}
}

func TestEmitterTrackMovesBaselineWithoutSpawning(t *testing.T) {
	e, q := newTestEmitter()
	t0 := time.Unix(1000, 0)

	e.Sample(PointerSample{X: 0, Y: 0, Time: t0}, q)
	e.Track(PointerSample{X: 500, Y: 500, Time: t0.Add(time.Second)})
	if q.Len() != 0 {
		t.Fatalf("Track queued %d requests", q.Len())
	}

	// Measured from the tracked position, not the original one
	n := e.Sample(PointerSample{X: 501, Y: 500, Time: t0.Add(2 * time.Second)}, q)
	if n != 0 {
		t.Errorf("spawned %d after a 1px move, want 0", n)
	}
}
