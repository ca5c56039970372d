package config

import (
	drowsinessHandler "WakeGuard/internal/api/drowsiness/handler"
	drowsinessRepository "WakeGuard/internal/api/drowsiness/repository"
	drowsinessService "WakeGuard/internal/api/drowsiness/service"
	"WakeGuard/internal/middleware"
	"WakeGuard/pkg/audio"
	"WakeGuard/pkg/clock"
	"WakeGuard/pkg/mqtt"
	"WakeGuard/pkg/s3"
	"WakeGuard/pkg/sms"
	"WakeGuard/pkg/smtp"
	websocketPkg "WakeGuard/pkg/websocket"
	"WakeGuard/pkg/whatsapp"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type MonitorOption func(*Monitor) error

// Monitor assembles the drowsiness service, its collaborators and the
// optional status API.
type Monitor struct {
	engine     *fiber.App
	log        *logrus.Logger
	validator  *validator.Validate
	middleware middleware.Middleware
	settings   *Settings
	deps       drowsinessService.Dependencies
	service    drowsinessService.IDrowsinessService
	handlers   []handler
	closers    []func()
}

type handler interface {
	Start(srv fiber.Router)
}

func NewMonitor(options ...MonitorOption) (*Monitor, error) {
	monitor := &Monitor{}

	for _, option := range options {
		if err := option(monitor); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if monitor.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if monitor.settings == nil {
		return nil, fmt.Errorf("settings are required")
	}
	if monitor.settings.API.Enabled && monitor.engine == nil {
		return nil, fmt.Errorf("fiber app is required when the status API is enabled")
	}

	return monitor, nil
}

func WithFiber(fiberApp *fiber.App) MonitorOption {
	return func(m *Monitor) error {
		m.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) MonitorOption {
	return func(m *Monitor) error {
		m.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) MonitorOption {
	return func(m *Monitor) error {
		m.validator = validator
		return nil
	}
}

// WithSettings validates s before accepting it.
func WithSettings(s Settings) MonitorOption {
	return func(m *Monitor) error {
		if m.validator == nil {
			return fmt.Errorf("validator must be initialized before settings")
		}
		if err := s.Validate(m.validator); err != nil {
			return err
		}
		m.settings = &s
		return nil
	}
}

func WithMiddleware() MonitorOption {
	return func(m *Monitor) error {
		if m.log == nil || m.settings == nil {
			return fmt.Errorf("logger and settings must be initialized before middleware")
		}
		api := m.settings.API
		m.middleware = middleware.New(m.log, rate.Limit(api.RateLimit), api.RateBurst, api.JWTSecret)
		return nil
	}
}

func WithClock(clk clock.Clock) MonitorOption {
	return func(m *Monitor) error {
		m.deps.Clock = clk
		return nil
	}
}

func WithCamera(camera drowsinessService.Camera) MonitorOption {
	return func(m *Monitor) error {
		m.deps.Camera = camera
		return nil
	}
}

func WithFaceLocator(faces drowsinessService.FaceLocator) MonitorOption {
	return func(m *Monitor) error {
		m.deps.Faces = faces
		return nil
	}
}

func WithEyeCounter(eyes drowsinessService.EyeCounter) MonitorOption {
	return func(m *Monitor) error {
		m.deps.Eyes = eyes
		return nil
	}
}

func WithRenderer(renderer drowsinessService.Renderer) MonitorOption {
	return func(m *Monitor) error {
		m.deps.Renderer = renderer
		return nil
	}
}

// WithLandmarkClient connects the remote landmark model. Without a URL the
// monitor runs on the eye-region fallback alone.
func WithLandmarkClient() MonitorOption {
	return func(m *Monitor) error {
		if err := m.requireBase(); err != nil {
			return err
		}
		lm := m.settings.Landmarks
		if lm.ServiceURL == "" {
			m.log.Warn("LANDMARK_SERVICE_URL is not set, eye state will come from the eye-region fallback")
			return nil
		}

		client := websocketPkg.NewLandmarkClient(m.log, lm.ServiceURL, lm.RetryInterval, lm.Timeout)
		m.deps.Landmarker = client
		m.closers = append(m.closers, client.Close)
		return nil
	}
}

// WithAlarmSound loads the alarm clip, synthesising a spoken one when the
// file is missing and an ElevenLabs key is configured. Failure leaves the
// monitor with visual alerts only.
func WithAlarmSound(ctx context.Context) MonitorOption {
	return func(m *Monitor) error {
		if err := m.requireBase(); err != nil {
			return err
		}
		cfg := m.settings.Audio
		if !cfg.Enabled {
			m.log.Info("Audio alerts disabled")
			return nil
		}

		path := cfg.AlarmSound
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && cfg.ElevenLabsAPIKey != "" {
			tts := audio.NewTTSService(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID)
			ttsCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			clip, err := tts.SynthesizeAlarm(ttsCtx, path, "Wake up! Please pull over and take a break.")
			cancel()
			if err != nil {
				m.log.WithField("error", err.Error()).Warn("Failed to synthesize alarm clip")
			} else {
				path = clip
			}
		}

		player, err := audio.Load(m.log, path)
		if err != nil {
			m.log.WithFields(logrus.Fields{
				"sound": path,
				"error": err.Error(),
			}).Warn("Alarm sound unavailable, continuing with visual alerts only")
			return nil
		}

		m.deps.Audio = player
		m.closers = append(m.closers, player.Stop)
		return nil
	}
}

// WithNotifier builds the NOTIFY_CHANNEL transport. Missing credentials
// disable notifications with a warning.
func WithNotifier(ctx context.Context) MonitorOption {
	return func(m *Monitor) error {
		if err := m.requireBase(); err != nil {
			return err
		}
		n := m.settings.Notify
		to := m.settings.Alerts.To
		disabled := func(reason string) error {
			m.log.WithField("channel", n.Channel).Warnf("Notifications disabled: %s", reason)
			return nil
		}

		switch n.Channel {
		case "none":
			m.log.Info("Notifications disabled by configuration")
			return nil
		case "sms":
			if n.SMSAPIKey == "" || to == "" {
				return disabled("SMS_API_KEY and SMS_TO are required")
			}
			m.deps.Notifier = sms.New(n.SMSAPIKey, "")
		case "email":
			if n.SMTPMail == "" || n.SMTPPass == "" || to == "" {
				return disabled("SMTP_MAIL, SMTP_PASSWORD and SMS_TO are required")
			}
			m.deps.Notifier = smtp.New(n.SMTPMail, n.SMTPPass, n.SMTPHost, n.SMTPPort)
		case "whatsapp":
			if to == "" {
				return disabled("SMS_TO is required")
			}
			client, err := whatsapp.New(ctx, m.log)
			if err != nil {
				return disabled(err.Error())
			}
			m.deps.Notifier = client
			m.closers = append(m.closers, client.Disconnect)
		default:
			return fmt.Errorf("unknown notify channel %q", n.Channel)
		}

		m.log.WithFields(logrus.Fields{
			"channel":  n.Channel,
			"cooldown": m.settings.Thresholds.SMSCooldown.String(),
		}).Info("Notifications enabled")
		return nil
	}
}

func WithMQTTPublisher() MonitorOption {
	return func(m *Monitor) error {
		if err := m.requireBase(); err != nil {
			return err
		}
		t := m.settings.Telemetry
		if t.MQTTBroker == "" {
			return nil
		}

		publisher, err := mqtt.New(m.log, t.MQTTBroker, t.MQTTTopic, t.MQTTClientID)
		if err != nil {
			m.log.WithField("error", err.Error()).Warn("MQTT unavailable, alert events stay local")
			return nil
		}
		m.deps.Publisher = publisher
		m.closers = append(m.closers, publisher.Disconnect)
		return nil
	}
}

func WithS3Client() MonitorOption {
	return func(m *Monitor) error {
		if err := m.requireBase(); err != nil {
			return err
		}
		bucket := m.settings.Telemetry.S3Bucket
		if bucket == "" {
			return nil
		}

		client, err := s3.New(bucket)
		if err != nil {
			m.log.Errorf("Failed to initialize S3 client: %v", err)
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		m.deps.Snapshots = client
		return nil
	}
}

func (m *Monitor) requireBase() error {
	if m.log == nil || m.settings == nil {
		return fmt.Errorf("logger and settings must be initialized first")
	}
	return nil
}

func (m *Monitor) RegisterHandler() {
	s := m.settings

	repo := drowsinessRepository.New(m.log, drowsinessRepository.DefaultAlertCapacity)
	m.service = drowsinessService.NewDrowsinessService(m.log, repo, s.Thresholds, s.Alerts, s.Camera.MaxReadFailures, m.deps)

	if !s.API.Enabled {
		return
	}

	handlers := drowsinessHandler.New(m.log, m.validator, m.middleware, m.service, s.API.StreamInterval, s.API.JWTSecret != "")

	m.setupHealthCheck()
	m.handlers = append(m.handlers, handlers)
}

// Run serves the status API in the background and blocks on the frame loop
// until ctx ends or the loop stops by itself.
func (m *Monitor) Run(ctx context.Context) error {
	if m.service == nil {
		return fmt.Errorf("RegisterHandler must be called before Run")
	}
	defer m.shutdown()

	if m.settings.API.Enabled {
		go func() {
			if err := m.Serve(); err != nil {
				m.log.Errorf("Status API stopped: %v", err)
			}
		}()
	}

	return m.service.Run(ctx)
}

func (m *Monitor) Serve() error {
	router := m.engine.Group("/api/v1")
	m.engine.Use(m.middleware.NewRequestIDMiddleware())
	m.engine.Use(m.middleware.NewLoggingMiddleware())

	for _, h := range m.handlers {
		h.Start(router)
	}

	return m.engine.Listen(fmt.Sprintf(":%s", m.settings.API.Port))
}

func (m *Monitor) shutdown() {
	if m.engine != nil && m.settings.API.Enabled {
		if err := m.engine.ShutdownWithTimeout(5 * time.Second); err != nil {
			m.log.Warnf("Status API shutdown: %v", err)
		}
	}

	m.log.Info("Waiting for pending alerts")
	m.service.Wait()

	for i := len(m.closers) - 1; i >= 0; i-- {
		m.closers[i]()
	}
}

func (m *Monitor) setupHealthCheck() {
	m.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "WakeGuard is Healthy!",
		})
	})
}
