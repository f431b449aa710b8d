package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"yabaitray/pkg/config"
	"yabaitray/pkg/event"
	"yabaitray/pkg/history"
	"yabaitray/pkg/tracker"
	"yabaitray/pkg/tray"
	"yabaitray/pkg/yabai"
)

func main() {
	err := run()
	if err != nil {
		log.Fatalf("error: %+v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file (default: $XDG_CONFIG_HOME/yabaitray/config.yaml)")
	debug := flag.Bool("debug", false, "enable debug logging")
	showHistory := flag.Int("history", 0, "print the most recent layout transitions and exit")
	flag.Parse()

	log, err := newLogger(*debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	path := *configPath
	if path == "" {
		path, err = config.DefaultPath()
		if err != nil {
			return fmt.Errorf("locate config: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if *showHistory > 0 {
		return printHistory(cfg, *showHistory, log)
	}

	client := &yabai.Client{Path: cfg.YabaiPath}

	// prime the state before anything renders or polls
	space, err := client.ActiveSpace()
	if err != nil {
		return fmt.Errorf("query active space: %w", err)
	}
	state := tracker.NewState(space.Type)

	var recorder tracker.TransitionRecorder
	if cfg.History.Enabled {
		store, err := history.NewStore(cfg.History.Path, log)
		if err != nil {
			return fmt.Errorf("create history store: %w", err)
		}
		defer store.Close()
		recorder = store
	}

	trk := tracker.New(client, state, recorder, log, tracker.Options{
		Interval:    time.Duration(cfg.PollInterval),
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     time.Duration(cfg.Backoff),
	})

	listener := event.NewListener(cfg.EventSocket, func(ev string) {
		if ev == event.SpaceChanged {
			trk.HandleSpaceChange()
		}
	}, log)

	log.Infow("started yabaitray", "layout", state.Current())

	errChan := make(chan error, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		err := trk.Poll(ctx)
		if err != nil {
			errChan <- fmt.Errorf("poll: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		err := listener.Listen(ctx)
		if err != nil {
			errChan <- fmt.Errorf("listen for events: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		err := systemdNotifyLoop(ctx)
		if err != nil {
			errChan <- fmt.Errorf("systemd notify: %w", err)
		}
	}()

	// the tray owns the main goroutine; shut it down when a background
	// worker dies or a signal arrives
	runErr := make(chan error, 1)
	go func() {
		select {
		case err := <-errChan:
			runErr <- err
		case <-ctx.Done():
			runErr <- ctx.Err()
		}
		tray.Quit()
	}()

	tray.Run(trk, state.Subscribe(), log, stop)

	err = <-runErr
	switch {
	case errors.Is(err, context.Canceled):
		log.Info("shutting down")
		wg.Wait()
		return nil
	case err != nil:
		return err
	}

	return nil
}

func printHistory(cfg config.Config, limit int, log *zap.SugaredLogger) error {
	store, err := history.NewStore(cfg.History.Path, log)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	transitions, err := store.Recent(limit)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	for _, tr := range transitions {
		fmt.Println(tr)
	}

	return nil
}

func systemdNotifyLoop(ctx context.Context) error {
	// tell systemd that we're ready
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		return fmt.Errorf("notify systemd: %w", err)
	}
	if !supported {
		return nil
	}

	_, _ = daemon.SdNotify(false, "STATUS=Watching the active space layout")

	// notify watchdog
	t, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return fmt.Errorf("check watchdog: %w", err)
	}
	// if watchdog is not enabled, we don't need to notify it
	if t == 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-time.After(t / 2):
			_, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			if err != nil {
				return fmt.Errorf("notify watchdog: %w", err)
			}
		}
	}
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	loggerConfig := zap.NewDevelopmentConfig()

	loggerConfig.OutputPaths = []string{"stdout"}
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if !debug {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.Sugar(), nil
}
