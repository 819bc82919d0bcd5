package orch

import (
	"context"
	"testing"
	"time"
)

func TestNewSweeperRejectsBadSchedule(t *testing.T) {
	o, _ := newTestOrchestrator()
	if _, err := NewSweeper(o, "not a schedule"); err == nil {
		t.Error("expected an error for an invalid schedule")
	}
}

func TestSweeperStopsWithContext(t *testing.T) {
	o, _ := newTestOrchestrator()
	s, err := NewSweeper(o, "@every 1h")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
