package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew_RejectsBadSchedule(t *testing.T) {
	_, err := New([]Job{{Name: "bad", Schedule: "every tuesday", Run: noop}}, 0)
	if err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestRunOnce(t *testing.T) {
	tests := []struct {
		name    string
		run     Scan
		want    int
		wantErr bool
	}{
		{"success", func(context.Context) (int, error) { return 3, nil }, 3, false},
		{"partial failure", func(context.Context) (int, error) { return 1, errors.New("boom") }, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := RunOnce(context.Background(), Job{Name: tt.name, Run: tt.run})
			if (err != nil) != tt.wantErr {
				t.Fatalf("RunOnce() error = %v, wantErr %v", err, tt.wantErr)
			}
			if n != tt.want {
				t.Errorf("RunOnce() = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestScheduler_StartStop(t *testing.T) {
	var calls atomic.Int32
	s, err := New([]Job{{
		Name:     "tick",
		Schedule: "@every 1s",
		Run: func(context.Context) (int, error) {
			calls.Add(1)
			return 0, nil
		},
	}}, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Error("second Start() should fail")
	}
	if !s.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}

	deadline := time.Now().Add(3 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if calls.Load() == 0 {
		t.Error("job never ran")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}

func noop(context.Context) (int, error) { return 0, nil }
