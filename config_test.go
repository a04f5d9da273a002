package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"doorlock/lock"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doorlock.cfg")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
client_id: front-door
hardware:
  type: sim
  sim:
    travel: 150
store:
  dir: /var/lib/doorlock
timing:
  stall_timeout_ms: 400
  full_travel: 5000
policy:
  skip_release: true
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.ClientID != "front-door" || cfg.Hardware.Type != "sim" || cfg.Hardware.Sim.Travel != 150 {
		t.Errorf("decoded %+v", cfg)
	}
	if cfg.PollMs != 1 {
		t.Errorf("poll %d ms, want default 1", cfg.PollMs)
	}

	tm := cfg.Timing.Timing()
	def := lock.DefaultTiming()
	if tm.StallTimeout != 400*time.Millisecond || tm.FullTravel != 5000 {
		t.Errorf("overrides not applied: %+v", tm)
	}
	if tm.SecurityTimeout != def.SecurityTimeout || tm.LockSettle != def.LockSettle {
		t.Errorf("defaults not kept: %+v", tm)
	}

	p := cfg.Policy.Apply(lock.Policy{ReopenOnObstacle: true})
	if want := (lock.Policy{ReopenOnObstacle: true, SkipRelease: true}); p != want {
		t.Errorf("policy %+v, want %+v", p, want)
	}
}

func TestPolicyOverrideClearsJumper(t *testing.T) {
	off := false
	p := PolicyConfig{RecalibrateAtBoot: &off}.Apply(lock.Policy{RecalibrateAtBoot: true, SkipRelease: true})
	if want := (lock.Policy{SkipRelease: true}); p != want {
		t.Errorf("policy %+v, want %+v", p, want)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.cfg")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := loadConfig(writeConfig(t, "mqtt: [")); err == nil {
		t.Error("expected decode error")
	}
	if _, err := loadConfig(writeConfig(t, "mqtt:\n  host: broker\n")); err == nil {
		t.Error("expected error for mqtt without client_id")
	}
}
