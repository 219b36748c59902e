package app

import (
	"testing"
	"time"
)

type sweeperStub struct {
	calls chan struct{}
}

func (s *sweeperStub) Sweep() int {
	select {
	case s.calls <- struct{}{}:
	default:
	}
	return 1
}

func TestScheduler_RunsSweep(t *testing.T) {
	sweeper := &sweeperStub{calls: make(chan struct{}, 1)}
	s := NewScheduler(sweeper, "@every 1s", discardLogger())
	if err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer s.Stop()

	select {
	case <-sweeper.calls:
	case <-time.After(3 * time.Second):
		t.Fatal("sweep job did not run")
	}
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&sweeperStub{calls: make(chan struct{}, 1)}, "every now and then", discardLogger())
	if err := s.Start(); err == nil {
		t.Fatal("expected an error for an invalid schedule")
	}
}
