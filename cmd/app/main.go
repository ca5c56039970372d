package main

import (
	drowsinessService "WakeGuard/internal/api/drowsiness/service"
	"WakeGuard/internal/config"
	"WakeGuard/pkg/camera"
	"WakeGuard/pkg/log"
	"WakeGuard/pkg/render"
	"WakeGuard/pkg/vision/dlib"
	"WakeGuard/pkg/vision/haar"
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil {
		logger.Warnf("Error loading .env file: %v", err)
	}

	if err := run(logger); err != nil {
		logger.Fatal(err)
	}

	logger.Info("WakeGuard stopped")
}

func run(logger *logrus.Logger) error {
	validator := config.NewValidator()
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cam, err := camera.Open(logger, settings.Camera.Source, settings.Display.WindowWidth)
	if err != nil {
		return fmt.Errorf("cannot access camera: %w", err)
	}
	defer cam.Close()

	var faces drowsinessService.FaceLocator
	switch settings.Vision.FaceDetector {
	case "dlib":
		detector, err := dlib.NewFaceDetector(settings.Vision.DlibModelDir)
		if err != nil {
			return fmt.Errorf("cannot load face detector: %w", err)
		}
		defer detector.Close()
		faces = detector
	default:
		detector, err := haar.NewFaceDetector(settings.Vision.FaceCascadePath)
		if err != nil {
			return fmt.Errorf("cannot load face detector: %w", err)
		}
		defer detector.Close()
		faces = detector
	}

	eyes, err := haar.NewEyeCounter(settings.Vision.EyeCascadePath)
	if err != nil {
		return fmt.Errorf("cannot load eye detector: %w", err)
	}
	defer eyes.Close()

	options := []config.MonitorOption{
		config.WithFiber(config.NewFiber(logger)),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithSettings(settings),
		config.WithMiddleware(),
		config.WithCamera(cam),
		config.WithFaceLocator(faces),
		config.WithEyeCounter(eyes),
		config.WithLandmarkClient(),
		config.WithAlarmSound(ctx),
		config.WithNotifier(ctx),
		config.WithMQTTPublisher(),
		config.WithS3Client(),
	}

	if !settings.Display.Headless {
		window := render.NewWindow("WakeGuard - Drowsiness Detection", render.Options{
			ShowFPS:           settings.Display.ShowFPS,
			ShowAllLandmarks:  settings.Display.ShowAllLandmarks,
			ShowEyeContours:   settings.Display.ShowEyeContours,
			ShowMouthContours: settings.Display.ShowMouthContours,
			VisualAlerts:      settings.Display.VisualAlerts,
		})
		defer window.Close()
		options = append(options, config.WithRenderer(window))
	}

	monitor, err := config.NewMonitor(options...)
	if err != nil {
		return err
	}

	monitor.RegisterHandler()

	logger.WithFields(log.Fields{
		"profile":           settings.Profile,
		"ear_threshold":     settings.Thresholds.EARThreshold,
		"ear_consec_frames": settings.Thresholds.EARConsecFrames,
		"notify_channel":    settings.Notify.Channel,
		"status_api":        settings.API.Enabled,
	}).Info("WakeGuard started, press q in the video window to quit")

	return monitor.Run(ctx)
}
