package main

import (
	"context"
	"testing"
	"time"

	"doorlock/hw"
	"doorlock/lock"
	"doorlock/store"
)

func TestSimCalibrationEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		Hardware: hw.Config{Type: "sim", Sim: hw.SimConfig{Travel: 40, PulseMs: 2}},
		Store:    store.Config{Dir: dir},
		Timing:   TimingConfig{StallTimeoutMs: 100, LockSettleMs: 1, ReverseSettleMs: 1, StopSettleMs: 1},
		PollMs:   1,
	}
	app, err := newApp(cfg, true)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		app.run(ctx)
		close(stopped)
	}()

	st, err := store.NewFile(cfg.Store)
	if err != nil {
		t.Fatal(err)
	}
	var l lock.Lengths
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if l, err = st.LoadLengths(); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	<-stopped
	app.shutdown()

	if err != nil {
		t.Fatalf("lengths never written: %v", err)
	}
	if want := (lock.Lengths{Release: 40, Close: 40}); l != want {
		t.Errorf("lengths %+v, want %+v", l, want)
	}
	if p, err := st.LoadPosition(); err != nil || p != lock.Locked {
		t.Errorf("position %s, %v, want locked", p, err)
	}
}

func TestNewAppBadBoard(t *testing.T) {
	if _, err := newApp(&Config{Hardware: hw.Config{Type: "bogus"}}, false); err == nil {
		t.Error("expected error for unknown board type")
	}
}
