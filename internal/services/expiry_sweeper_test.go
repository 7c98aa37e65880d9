package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

type sweepStub struct {
	calls    int
	affected int
	err      error
}

func (s *sweepStub) SweepExpired(context.Context) (int, error) {
	s.calls++
	return s.affected, s.err
}

type sweepRecorder struct {
	marks []time.Time
}

func (r *sweepRecorder) MarkSweep(at time.Time) {
	r.marks = append(r.marks, at)
}

func TestExpirySweeperRun(t *testing.T) {
	sweep := &sweepStub{affected: 3}
	recorder := &sweepRecorder{}
	s := NewExpirySweeper(sweep, healthStub{online: true}, recorder, time.Minute, nil)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sweep.calls != 1 || len(recorder.marks) != 1 {
		t.Fatalf("expected one sweep and one mark, got %d and %d", sweep.calls, len(recorder.marks))
	}
}

func TestExpirySweeperSkipsOffline(t *testing.T) {
	sweep := &sweepStub{}
	recorder := &sweepRecorder{}
	s := NewExpirySweeper(sweep, healthStub{online: false}, recorder, time.Minute, nil)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sweep.calls != 0 || len(recorder.marks) != 0 {
		t.Fatalf("offline sweep must not run")
	}
}

func TestExpirySweeperReportsErrors(t *testing.T) {
	boom := errors.New("db gone")
	recorder := &sweepRecorder{}
	s := NewExpirySweeper(&sweepStub{err: boom}, nil, recorder, 0, nil)

	if err := s.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected sweep error, got %v", err)
	}
	if len(recorder.marks) != 0 {
		t.Fatalf("failed sweep must not be recorded")
	}
}

func TestExpirySweeperStartStop(t *testing.T) {
	s := NewExpirySweeper(&sweepStub{}, nil, nil, time.Second, nil)
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
