// aimcore - real-time target tracking core.
// Folds detector output into tracked targets and drives the pointer
// through the input bridge at a fixed tick rate.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/drixpyyy/aimcore/internal/config"
	"github.com/drixpyyy/aimcore/internal/log"
	"github.com/drixpyyy/aimcore/pkg/detect"
	"github.com/drixpyyy/aimcore/pkg/input"
	"github.com/drixpyyy/aimcore/pkg/screen"
	"github.com/drixpyyy/aimcore/pkg/tracking"
	"github.com/drixpyyy/aimcore/pkg/web"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file")
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	detectorURL := flag.String("detector-url", "", "Detection service URL (overrides config)")
	inputURL := flag.String("input-url", "", "Input bridge websocket URL (overrides config)")
	port := flag.String("port", "", "Dashboard port (overrides config)")
	preset := flag.String("preset", "", "Tracking preset: default, smooth, aggressive")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Init("info")
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	if *detectorURL != "" {
		cfg.Detector.URL = *detectorURL
	}
	if *inputURL != "" {
		cfg.Input.URL = *inputURL
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *preset != "" {
		cfg.Tracking.Preset = *preset
	}

	log.Init(cfg.LogLevel)
	defer log.Sync()

	if err := run(cfg); err != nil {
		log.Error("runtime error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Detection backend
	detector, err := newDetector(cfg)
	if err != nil {
		return err
	}
	defer detector.Close()

	// Frame source
	source, err := screen.NewCaptureSource(screen.CaptureConfig{
		Device:    cfg.Capture.Device,
		Downscale: cfg.Capture.Downscale,
		Quality:   cfg.Capture.Quality,
	})
	if err != nil {
		return err
	}
	defer source.Close()

	// Surface geometry is pushed by the bridge as the page reports it
	surface := screen.NewSurfaceTracker()

	// Input bridge
	actuator, err := input.DialWS(input.DefaultWSConfig(cfg.Input.URL))
	if err != nil {
		return err
	}
	defer actuator.Close()

	// Tracking core
	store := tracking.NewStore(cfg.TrackingConfig())
	registry := tracking.NewRegistry()
	scheduler := tracking.NewScheduler(store, detector, source, surface, registry)
	driver := tracking.NewDriver(store, registry, actuator, surface)

	actuator.OnGeometry(surface.Update)
	actuator.OnActive(driver.SetActive)

	// Dashboard doubles as the status sink
	server := web.NewServer(cfg.Server.Port, store, driver, scheduler, registry)
	scheduler.SetStatusSink(server)
	driver.SetStatusSink(server)
	server.StartAsync(ctx)

	log.Info("aimcore started",
		"detector", cfg.Detector.Backend,
		"bridge", cfg.Input.URL,
		"preset", cfg.Tracking.Preset)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		scheduler.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		driver.Run(ctx)
	}()

	<-ctx.Done()
	wg.Wait()

	log.Info("aimcore stopped")
	return nil
}

// newDetector builds the configured detection backend.
func newDetector(cfg config.Config) (detect.Detector, error) {
	switch cfg.Detector.Backend {
	case "onnx":
		classes := cfg.TrackingConfig().Classes
		return detect.NewONNX(detect.DefaultONNXConfig(cfg.Detector.Model, classes))
	default:
		hc := detect.DefaultHTTPConfig(cfg.Detector.URL)
		if cfg.Detector.Timeout > 0 {
			hc.Timeout = time.Duration(cfg.Detector.Timeout)
		}
		return detect.NewHTTPClient(hc), nil
	}
}
