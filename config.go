package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"doorlock/diag"
	"doorlock/eventpipe"
	"doorlock/hw"
	"doorlock/indicator"
	"doorlock/lock"
	"doorlock/mqtt"
	"doorlock/store"
)

// Config is the main configuration structure for doorlock.
type Config struct {
	// MQTT telemetry broker
	MQTT mqtt.Config `yaml:"mqtt"`

	// Board pins and backend
	Hardware hw.Config `yaml:"hardware"`

	// Indicator configuration
	Indicator indicator.Config `yaml:"indicator"`

	// Serial diagnostic console
	Console diag.Config `yaml:"console"`

	// Persistent lengths and position
	Store store.Config `yaml:"store"`

	// Stimulus pipe for the simulated board
	EventPipe eventpipe.Config `yaml:"event_pipe"`

	Timing TimingConfig `yaml:"timing"`
	Policy PolicyConfig `yaml:"policy"`

	// General settings
	ClientID string `yaml:"client_id"`
	PollMs   int    `yaml:"poll_ms"`
}

// TimingConfig overrides the controller timing. Zero keeps the default.
type TimingConfig struct {
	StallTimeoutMs    int `yaml:"stall_timeout_ms"`
	SecurityTimeoutMs int `yaml:"security_timeout_ms"`
	LockSettleMs      int `yaml:"lock_settle_ms"`
	ReverseSettleMs   int `yaml:"reverse_settle_ms"`
	StopSettleMs      int `yaml:"stop_settle_ms"`
	DebounceMs        int `yaml:"debounce_ms"`
	FullTravel        int `yaml:"full_travel"`
}

// PolicyConfig overrides jumper settings. Unset fields follow the jumpers.
type PolicyConfig struct {
	ReopenOnObstacle  *bool `yaml:"reopen_on_obstacle"`
	SkipRelease       *bool `yaml:"skip_release"`
	RecalibrateAtBoot *bool `yaml:"recalibrate_at_boot"`
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.MQTT.Host != "" && cfg.ClientID == "" {
		return nil, fmt.Errorf("client_id missing in config file")
	}
	if cfg.PollMs <= 0 {
		cfg.PollMs = 1
	}
	return &cfg, nil
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// Timing returns the default timing with the configured overrides.
func (t TimingConfig) Timing() lock.Timing {
	lt := lock.DefaultTiming()
	set := func(d *time.Duration, n int) {
		if n > 0 {
			*d = ms(n)
		}
	}
	set(&lt.StallTimeout, t.StallTimeoutMs)
	set(&lt.SecurityTimeout, t.SecurityTimeoutMs)
	set(&lt.LockSettle, t.LockSettleMs)
	set(&lt.ReverseSettle, t.ReverseSettleMs)
	set(&lt.StopSettle, t.StopSettleMs)
	set(&lt.Debounce, t.DebounceMs)
	if t.FullTravel > 0 {
		lt.FullTravel = t.FullTravel
	}
	return lt
}

// Apply overlays the configured overrides on p.
func (c PolicyConfig) Apply(p lock.Policy) lock.Policy {
	if c.ReopenOnObstacle != nil {
		p.ReopenOnObstacle = *c.ReopenOnObstacle
	}
	if c.SkipRelease != nil {
		p.SkipRelease = *c.SkipRelease
	}
	if c.RecalibrateAtBoot != nil {
		p.RecalibrateAtBoot = *c.RecalibrateAtBoot
	}
	return p
}
