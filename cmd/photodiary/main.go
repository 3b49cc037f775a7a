package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photodiary/internal/config"
	"photodiary/internal/diary"
	appLog "photodiary/internal/log"
	"photodiary/internal/reminder"
	"photodiary/internal/storage"
	"photodiary/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	debug      bool
	once       bool
}

func main() {
	appLog.Info("photodiary starting", "version", "0.1.0")

	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	// Debug runs keep data next to the working directory so no root
	// permissions are needed.
	if flags.debug && conf.DataDir == "/var/lib/photodiary" {
		conf.DataDir = "./data"
	}

	loc := resolveLocationOrLocal(conf.Timezone)

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", loc.String(),
		"week_start", conf.WeekStart,
		"reminder_refresh", conf.ReminderRefresh,
		"banner_limit", conf.BannerLimit,
		"data_dir", conf.DataDir,
		"seed_samples", conf.SeedSamplesEnabled(),
		"once", flags.once,
	)

	kv := storage.NewFile(conf.DataDir)
	store := diary.Open(kv, diary.Options{
		SeedSamples: conf.SeedSamplesEnabled(),
		Location:    loc,
	})
	defer store.Close()

	if flags.once {
		runOnce(store, loc)
		return
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	sched := reminder.New(store, loc)
	if err := sched.Start(conf.ReminderRefresh); err != nil {
		appLog.Error("failed to start reminder scheduler", err, "refresh", conf.ReminderRefresh)
		os.Exit(1)
	}
	defer sched.Stop()

	server := web.NewServer(conf, store, sched, kv, loc)
	httpServer := &http.Server{
		Addr:    conf.Listen,
		Handler: server.Handler(),
	}

	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("HTTP server failed", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP shutdown failed", err)
	}

	appLog.Info("photodiary exiting")
}

// runOnce evaluates the reminder set a single time, prints it as JSON on
// stdout, and exits. Useful for cron-style integrations and smoke checks.
func runOnce(store *diary.Store, loc *time.Location) {
	active := reminder.Evaluate(store.All(), time.Now(), loc)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(active); err != nil {
		appLog.Error("failed to print reminders", err)
		os.Exit(1)
	}
	appLog.Info("one-shot evaluation complete", "active", len(active), "events", store.Len())
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/photodiary/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.debug, "debug", false, "Verbose logging and working-directory data dir")
	flag.BoolVar(&cfg.once, "once", false, "Evaluate reminders once, print them, and exit")

	flag.Parse()

	return cfg
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}
