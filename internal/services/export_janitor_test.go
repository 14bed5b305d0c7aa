package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

type purgerFunc func(ctx context.Context, retention time.Duration) (int, error)

func (f purgerFunc) Purge(ctx context.Context, retention time.Duration) (int, error) {
	return f(ctx, retention)
}

func TestExportJanitorRunOnce(t *testing.T) {
	var got time.Duration
	j, err := NewExportJanitor(purgerFunc(func(_ context.Context, retention time.Duration) (int, error) {
		got = retention
		return 3, nil
	}), nil, JanitorConfig{Retention: 2 * time.Hour})
	if err != nil {
		t.Fatalf("new janitor: %v", err)
	}

	removed, err := j.RunOnce(context.Background())
	if err != nil || removed != 3 {
		t.Fatalf("expected 3 removed, got %d (%v)", removed, err)
	}
	if got != 2*time.Hour {
		t.Fatalf("expected configured retention, got %v", got)
	}
}

func TestExportJanitorPropagatesErrors(t *testing.T) {
	j, err := NewExportJanitor(purgerFunc(func(context.Context, time.Duration) (int, error) {
		return 0, errors.New("bolt closed")
	}), nil, JanitorConfig{})
	if err != nil {
		t.Fatalf("new janitor: %v", err)
	}
	if _, err := j.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected purge error")
	}
}

func TestExportJanitorRejectsBadSchedule(t *testing.T) {
	if _, err := NewExportJanitor(nil, nil, JanitorConfig{Schedule: "every now and then"}); err == nil {
		t.Fatalf("expected invalid schedule error")
	}
}

func TestExportJanitorStartStop(t *testing.T) {
	j, err := NewExportJanitor(nil, nil, JanitorConfig{Schedule: "@every 1h"})
	if err != nil {
		t.Fatalf("new janitor: %v", err)
	}
	j.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	j.Stop(ctx)
}
