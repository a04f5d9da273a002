package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"

	"doorlock/diag"
	"doorlock/eventpipe"
	"doorlock/hw"
	"doorlock/indicator"
	"doorlock/lock"
	"doorlock/mqtt"
	"doorlock/store"
)

var myBuild string

// App holds the application state and dependencies.
type App struct {
	cfg       *Config
	board     *hw.Board
	ctrl      *lock.Controller
	mqtt      *mqtt.Client
	telemetry *mqtt.Telemetry
	console   *diag.Console
	pipe      *eventpipe.EventPipe

	// mu guards the indicator, which is driven by both the event
	// fan-out and the MQTT connection callbacks.
	mu        sync.Mutex
	indicator indicator.Indicator
	position  lock.Position

	events  chan lock.Event
	fanDone chan struct{}
	done    chan struct{}
}

func main() {
	fmt.Printf("doorlock build %s\n", myBuild)

	cfgfile := flag.String("cfg", "doorlock.cfg", "Config file")
	calibrate := flag.Bool("calibrate", false, "Measure the stroke lengths at boot")
	flag.Parse()

	cfg, err := loadConfig(*cfgfile)
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	app, err := newApp(cfg, *calibrate)
	if err != nil {
		log.Fatalf("Init: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app.run(ctx)

	fmt.Println("Shutting down...")
	app.shutdown()
	fmt.Println("Shutdown complete")
}

// newApp opens every device and boots the controller. On error all
// devices opened so far are released.
func newApp(cfg *Config, calibrate bool) (app *App, err error) {
	app = &App{
		cfg:     cfg,
		events:  make(chan lock.Event, 64),
		fanDone: make(chan struct{}),
		done:    make(chan struct{}),
	}
	defer func() {
		if err != nil {
			app.release()
			app = nil
		}
	}()

	if app.indicator, err = indicator.New(cfg.Indicator); err != nil {
		return app, fmt.Errorf("init indicator: %w", err)
	}
	if app.console, err = diag.New(cfg.Console); err != nil {
		return app, fmt.Errorf("init console: %w", err)
	}
	if app.board, err = hw.New(cfg.Hardware); err != nil {
		return app, fmt.Errorf("init board: %w", err)
	}

	var st lock.Store
	if cfg.Store.Dir == "" {
		log.Warnln("no store directory, lengths and position are not persisted")
		st = store.NewMemory(lock.Lengths{}, lock.Locked)
	} else if st, err = store.NewFile(cfg.Store); err != nil {
		return app, fmt.Errorf("init store: %w", err)
	}

	policy := cfg.Policy.Apply(app.board.Policy())
	if calibrate {
		policy.RecalibrateAtBoot = true
	}
	log.Printf("Policy: reopen on obstacle %v, skip release %v, recalibrate %v",
		policy.ReopenOnObstacle, policy.SkipRelease, policy.RecalibrateAtBoot)

	app.ctrl, err = lock.New(app.board.Pins(), st, policy,
		lock.WithTiming(cfg.Timing.Timing()),
		lock.WithObserver(app.observe))
	if err != nil {
		return app, fmt.Errorf("init controller: %w", err)
	}
	if err := app.ctrl.Boot(); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warnf("first boot, %v", err)
		} else {
			log.Warnf("boot: %v", err)
		}
	}
	app.position = app.ctrl.Position()
	if app.ctrl.Calibration() != lock.CalibrationNone {
		app.indicator.Calibrating()
	} else {
		app.indicator.Position(app.position)
	}

	if cfg.EventPipe.Path != "" {
		if sim := app.board.Sim(); sim != nil {
			app.pipe, err = eventpipe.New(cfg.EventPipe, func(cmd eventpipe.Command) {
				if err := sim.Apply(cmd); err != nil {
					log.Warnf("Event pipe: %v", err)
				}
			})
			if err != nil {
				return app, fmt.Errorf("init event pipe: %w", err)
			}
		} else {
			log.Println("Event pipe ignored for hardware board")
		}
	}

	app.mqtt, err = mqtt.New(cfg.MQTT, cfg.ClientID, mqtt.Handlers{
		OnConnect:    app.onMQTTConnect,
		OnDisconnect: app.onMQTTDisconnect,
	})
	if err != nil {
		return app, fmt.Errorf("init MQTT: %w", err)
	}
	app.telemetry = mqtt.NewTelemetry(app.mqtt, cfg.ClientID)
	return app, nil
}

// run starts the background goroutines and runs the control loop until
// ctx is cancelled.
func (app *App) run(ctx context.Context) {
	// fanOut owns position once started.
	booted := app.position
	go app.fanOut()
	if app.pipe != nil {
		go app.pipe.Start()
	}
	go func() {
		if err := app.mqtt.Connect(); err != nil {
			log.Errorf("MQTT connect: %v", err)
		}
	}()
	if app.mqtt.IsEnabled() {
		app.telemetry.Position(booted)
		go app.telemetry.Run(app.done)
	}

	app.ctrl.Run(ctx, ms(app.cfg.PollMs))
	close(app.events)
	<-app.fanDone
}

// observe runs on the control loop and must not block.
func (app *App) observe(ev lock.Event) {
	select {
	case app.events <- ev:
	default:
		log.Warnf("Event queue full, dropped %s", ev.Type)
	}
}

func (app *App) fanOut() {
	defer close(app.fanDone)
	for ev := range app.events {
		app.console.Event(ev)
		app.telemetry.Event(ev)

		app.mu.Lock()
		if ev.Type == lock.EventMotorStop || ev.Type == lock.EventCalibration {
			app.position = ev.Position
		}
		indicator.Show(app.indicator, ev)
		app.mu.Unlock()
	}
}

func (app *App) onMQTTConnect() {
	app.mu.Lock()
	defer app.mu.Unlock()
	app.indicator.Position(app.position)
}

func (app *App) onMQTTDisconnect() {
	app.mu.Lock()
	defer app.mu.Unlock()
	app.indicator.ConnectionLost()
}

func (app *App) shutdown() {
	close(app.done)
	if app.mqtt != nil {
		app.mqtt.Disconnect()
	}
	if app.indicator != nil {
		app.indicator.Shutdown()
	}
	app.release()
}

// release frees every device that was opened.
func (app *App) release() {
	if app.pipe != nil {
		app.pipe.Close()
	}
	if app.indicator != nil {
		app.indicator.Release()
	}
	if app.console != nil {
		app.console.Close()
	}
	if app.board != nil {
		if err := app.board.Release(); err != nil {
			log.Errorf("Release board: %v", err)
		}
	}
}
