// Command restd serves the board's LEDs, thermometer and accelerometer as
// REST resources over HTTP, the in-process bus and optionally MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"devicerest-go/bus"
	"devicerest-go/services/bridge"
	"devicerest-go/services/config"
	"devicerest-go/services/hal"
	"devicerest-go/services/logging"
	"devicerest-go/services/rest"
	"devicerest-go/services/rest/httpapi"
	"devicerest-go/services/telemetry"
)

var version = "dev"

func main() {
	cfgPath := flag.String("config", "", "YAML config file overlaying the device defaults")
	device := flag.String("device", "", "device profile (z1, sim)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load(*cfgPath, *device)
	if err != nil {
		fmt.Fprintln(os.Stderr, "restd:", err)
		os.Exit(2)
	}

	log := logging.New(cfg.Logging, version)
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("restd stopped", "error", err)
		stop()
		log.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logging.Logger) error {
	log.Info("starting", "device", cfg.Device, "platform", cfg.HAL.Platform)

	b := bus.NewBus(16)

	h, err := hal.New(cfg.HAL, b.NewConnection("hal"), log)
	if err != nil {
		return fmt.Errorf("hal: %w", err)
	}
	defer h.Close()

	engine := rest.NewEngine(cfg.REST.ChunkSize, log.Logger)
	handlers := &rest.Handlers{LEDs: h.LEDs, Therm: h.Therm, Accel: h.Accel}
	if err := handlers.ActivateAll(engine); err != nil {
		return fmt.Errorf("activate resources: %w", err)
	}
	engine.ServeBus(ctx, b.NewConnection("rest"))

	srv, err := httpapi.New(httpapi.Deps{Config: cfg.HTTP, Logger: log, Engine: engine, Version: version})
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	defer srv.Close()
	log.Info("http listening", "addr", srv.Addr())

	tel := telemetry.New(engine, cfg.Telemetry, log)
	if err := tel.Start(ctx, b.NewConnection("telemetry")); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	bridge.New(b.NewConnection("bridge"), nil, log).Start(ctx)

	config.NewConfigService(cfg, log).Start(ctx, b.NewConnection("config"))

	<-ctx.Done()
	log.Info("shutting down")
	return nil
}
