// main.go - CLI entry point
//
// Grounded on the teacher's main.go banner-then-dispatch shape, replaced
// with flag-based Config parsing (the natural one-step-up flag gives
// over the teacher's bare os.Args reads) and errgroup-joined backend
// startup in place of the teacher's fire-and-forget goroutines.

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"
)

const banner = `consoleruntime - portable handheld host runtime`

// Config is the fully-resolved set of choices main needs to assemble a
// Device and launch an app, following the teacher's struct-literal
// configuration style (DisplayConfig/GUIConfig lineage).
type Config struct {
	Backend  string // "ebiten" or "terminal"
	App      string // "author.app"
	BaseDir  string // root containing roms/, data/, sys/
	BindAddr string
	Scale    int
	LogLevel slog.Level
}

func parseConfig() (Config, error) {
	var cfg Config
	var level string
	flag.StringVar(&cfg.Backend, "backend", "ebiten", "display backend: ebiten or terminal")
	flag.StringVar(&cfg.App, "app", "", "app to launch, as author.app")
	flag.StringVar(&cfg.BaseDir, "base-dir", ".", "root directory containing roms/, data/, and sys/")
	flag.StringVar(&cfg.BindAddr, "bind", ":7777", "UDP bind address for multiplayer")
	flag.IntVar(&cfg.Scale, "scale", 3, "window scale factor (ebiten backend only)")
	flag.StringVar(&level, "log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if cfg.App == "" {
		return cfg, fmt.Errorf("main: -app is required, e.g. -app=example.snake")
	}
	if _, ok := ParseFullID(cfg.App); !ok {
		return cfg, fmt.Errorf("main: -app %q is not a valid author.app id", cfg.App)
	}
	switch level {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		cfg.LogLevel = slog.LevelInfo
	}
	return cfg, nil
}

func main() {
	fmt.Fprintln(os.Stderr, banner)

	cfg, err := parseConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	log := NewSlogLog(cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// run assembles a Device from cfg, loads the requested app, and drives
// it until it exits or the process is signaled.
func run(cfg Config, log *SlogLog) error {
	app, ok := ParseFullID(cfg.App)
	if !ok {
		return fmt.Errorf("main: invalid app id %q", cfg.App)
	}

	fs, err := NewOSFileSystem(cfg.BaseDir)
	if err != nil {
		return &RuntimeError{Operation: "startup", Details: "open data directory", Err: err}
	}

	netTransport, err := NewUDPNet(cfg.BindAddr)
	if err != nil {
		return &RuntimeError{Operation: "startup", Details: "bind udp socket", Err: err}
	}

	sink, err := NewAudioSink(audioSampleRate)
	if err != nil {
		return &RuntimeError{Operation: "startup", Details: "open audio sink", Err: err}
	}

	var display Display
	var input Input2
	var closeDisplay func() error
	var runDisplay func(ctx context.Context) error

	switch cfg.Backend {
	case "terminal":
		td := NewTerminalDisplay(os.Stdout)
		ti, err := NewTerminalInput()
		if err != nil {
			return &RuntimeError{Operation: "startup", Details: "open terminal input", Err: err}
		}
		display, input = td, ti
		closeDisplay = func() error { ti.Stop(); return td.Close() }
		runDisplay = func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}
	default:
		ed := NewEbitenDisplay(fmt.Sprintf("%s - %s", banner, app.String()), cfg.Scale)
		display, input = ed, ed.Input()
		closeDisplay = ed.Close
		runDisplay = func(ctx context.Context) error {
			errCh := make(chan error, 1)
			go func() { errCh <- ed.Run() }()
			select {
			case <-ctx.Done():
				ed.Close()
				return <-errCh
			case err := <-errCh:
				return err
			}
		}
	}

	dev := &mainDevice{
		display: display,
		input:   input,
		clock:   OSClock{},
		fs:      fs,
		net:     netTransport,
		rng:     CryptoRNG{},
		log:     log,
	}

	guest := NewNullGuestApp(app)

	rt := NewRuntime(dev, fs, app, guest, dev.rng.Uint32())
	sink.SetSource(rt.State().Audio)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runDisplay(gctx) })
	g.Go(func() error { return driveTicks(gctx, rt, cfg, log) })

	err = g.Wait()
	closeDisplay()
	netTransport.Close()
	return err
}

// driveTicks runs Runtime.Tick at runtimeTickRate until ctx is canceled,
// the app exits, or it asks to switch to a different app - in which
// case the process exits so a supervising process manager can relaunch
// it with -app set to the new id (app switches are not expected to be
// frequent enough to warrant an in-process reload).
func driveTicks(ctx context.Context, rt *Runtime, cfg Config, log *SlogLog) error {
	ticker := time.NewTicker(runtimeTickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			exit, next := rt.Tick(now)
			if exit {
				return nil
			}
			if next != nil {
				log.Info("app switch requested", "next", next.String())
				return nil
			}
		}
	}
}

// mainDevice assembles the real-backend capabilities into one Device.
type mainDevice struct {
	display Display
	input   Input2
	clock   Clock
	fs      FS
	net     Net
	rng     RNG
	log     Log
}

func (d *mainDevice) Display() Display { return d.display }
func (d *mainDevice) Input() Input2    { return d.input }
func (d *mainDevice) Clock() Clock     { return d.clock }
func (d *mainDevice) FS() FS           { return d.fs }
func (d *mainDevice) Net() Net         { return d.net }
func (d *mainDevice) RNG() RNG         { return d.rng }
func (d *mainDevice) Log() Log         { return d.log }
