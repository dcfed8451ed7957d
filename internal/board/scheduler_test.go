package board

import (
	"sync/atomic"
	"testing"
	"time"
)

type countingTicker struct {
	ticks atomic.Int32
}

func (c *countingTicker) Tick() { c.ticks.Add(1) }

func TestSchedulerTicks(t *testing.T) {
	target := &countingTicker{}
	s := NewScheduler(target, "@every 1s", nil)

	if s.NextRun() != nil {
		t.Fatal("NextRun before Start should be nil")
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	if next := s.NextRun(); next == nil || next.Before(time.Now().Add(-time.Second)) {
		t.Fatalf("unexpected NextRun %v", next)
	}

	deadline := time.Now().Add(3 * time.Second)
	for target.ticks.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("scheduler never ticked")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(&countingTicker{}, "whenever", nil)
	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatal("Start accepted an invalid spec")
	}
}
