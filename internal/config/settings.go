package config

import (
	"WakeGuard/internal/api/drowsiness"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type CameraSettings struct {
	Source          string `validate:"required"`
	MaxReadFailures int    `validate:"gt=0"`
}

type DisplaySettings struct {
	Headless          bool
	WindowWidth       int `validate:"gt=0"`
	ShowFPS           bool
	ShowAllLandmarks  bool
	ShowEyeContours   bool
	ShowMouthContours bool
	VisualAlerts      bool
}

type VisionSettings struct {
	FaceDetector    string `validate:"oneof=haar dlib"`
	FaceCascadePath string `validate:"required"`
	EyeCascadePath  string `validate:"required"`
	DlibModelDir    string `validate:"required_if=FaceDetector dlib"`
}

type LandmarkSettings struct {
	ServiceURL    string        `validate:"omitempty,url"`
	RetryInterval time.Duration `validate:"gt=0"`
	Timeout       time.Duration `validate:"gt=0"`
}

type AudioSettings struct {
	Enabled           bool
	AlarmSound        string `validate:"required"`
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
}

type NotifySettings struct {
	Channel   string `validate:"oneof=sms whatsapp email none"`
	SMSAPIKey string
	SMTPMail  string
	SMTPPass  string
	SMTPHost  string
	SMTPPort  int `validate:"gt=0"`
}

type APISettings struct {
	Enabled        bool
	Port           string        `validate:"required,numeric"`
	StreamInterval time.Duration `validate:"gt=0"`
	JWTSecret      string
	RateLimit      float64 `validate:"gt=0"`
	RateBurst      int     `validate:"gt=0"`
}

type TelemetrySettings struct {
	MQTTBroker   string
	MQTTTopic    string `validate:"required"`
	MQTTClientID string
	S3Bucket     string
}

// Settings is the full runtime configuration, read once at startup.
type Settings struct {
	Profile    string `validate:"required"`
	Thresholds drowsiness.Thresholds
	Alerts     drowsiness.AlertSettings
	Camera     CameraSettings
	Display    DisplaySettings
	Vision     VisionSettings
	Landmarks  LandmarkSettings
	Audio      AudioSettings
	Notify     NotifySettings
	API        APISettings
	Telemetry  TelemetrySettings
}

func DefaultSettings() Settings {
	return Settings{
		Profile:    "default",
		Thresholds: drowsiness.DefaultThresholds(),
		Alerts: drowsiness.AlertSettings{
			Message:       "WakeGuard alert: the driver appears drowsy. Please check on them.",
			NotifyTimeout: 5 * time.Second,
		},
		Camera: CameraSettings{
			Source:          "0",
			MaxReadFailures: 30,
		},
		Display: DisplaySettings{
			WindowWidth:       700,
			ShowFPS:           true,
			ShowEyeContours:   true,
			ShowMouthContours: true,
			VisualAlerts:      true,
		},
		Vision: VisionSettings{
			FaceDetector:    "haar",
			FaceCascadePath: "data/haarcascade_frontalface_default.xml",
			EyeCascadePath:  "data/haarcascade_eye_tree_eyeglasses.xml",
			DlibModelDir:    "models",
		},
		Landmarks: LandmarkSettings{
			RetryInterval: 5 * time.Second,
			Timeout:       500 * time.Millisecond,
		},
		Audio: AudioSettings{
			Enabled:    true,
			AlarmSound: "alarm.wav",
		},
		Notify: NotifySettings{
			Channel:  "sms",
			SMTPHost: "smtp.gmail.com",
			SMTPPort: 587,
		},
		API: APISettings{
			Port:           "3000",
			StreamInterval: 500 * time.Millisecond,
			RateLimit:      10,
			RateBurst:      20,
		},
		Telemetry: TelemetrySettings{
			MQTTTopic: "wakeguard/alerts",
		},
	}
}

// LoadSettings reads the process environment on top of DefaultSettings.
func LoadSettings() (Settings, error) {
	return LoadSettingsFrom(os.LookupEnv)
}

// LoadSettingsFrom resolves settings through lookup. The sensitivity profile
// is applied first so EAR_THRESHOLD and EAR_CONSEC_FRAMES can override it.
func LoadSettingsFrom(lookup func(string) (string, bool)) (Settings, error) {
	s := DefaultSettings()
	r := &envReader{lookup: lookup}

	r.String("SENSITIVITY_PROFILE", &s.Profile)
	profile, ok := drowsiness.SensitivityProfiles[s.Profile]
	if !ok {
		return s, fmt.Errorf("unknown sensitivity profile %q", s.Profile)
	}
	s.Thresholds.EARThreshold = profile.EARThreshold
	s.Thresholds.EARConsecFrames = profile.EARConsecFrames

	r.Float("EAR_THRESHOLD", &s.Thresholds.EARThreshold)
	r.Int("EAR_CONSEC_FRAMES", &s.Thresholds.EARConsecFrames)
	r.Float("MAR_THRESHOLD", &s.Thresholds.MARThreshold)
	r.Int("YAWN_CONSEC_FRAMES", &s.Thresholds.YawnConsecFrames)
	r.Seconds("SMS_COOLDOWN_SECONDS", &s.Thresholds.SMSCooldown)

	r.String("SMS_FROM", &s.Alerts.From)
	r.String("SMS_TO", &s.Alerts.To)
	r.String("SMS_MESSAGE", &s.Alerts.Message)
	r.Duration("NOTIFY_TIMEOUT", &s.Alerts.NotifyTimeout)

	r.String("CAMERA_SOURCE", &s.Camera.Source)
	r.Int("CAMERA_MAX_READ_FAILURES", &s.Camera.MaxReadFailures)

	r.Bool("HEADLESS", &s.Display.Headless)
	r.Int("WINDOW_WIDTH", &s.Display.WindowWidth)
	r.Bool("SHOW_FPS", &s.Display.ShowFPS)
	r.Bool("SHOW_ALL_LANDMARKS", &s.Display.ShowAllLandmarks)
	r.Bool("SHOW_EYE_CONTOURS", &s.Display.ShowEyeContours)
	r.Bool("SHOW_MOUTH_CONTOURS", &s.Display.ShowMouthContours)
	r.Bool("VISUAL_ALERTS_ENABLED", &s.Display.VisualAlerts)

	r.String("FACE_DETECTOR", &s.Vision.FaceDetector)
	r.String("FACE_CASCADE", &s.Vision.FaceCascadePath)
	r.String("EYE_CASCADE", &s.Vision.EyeCascadePath)
	r.String("DLIB_MODEL_DIR", &s.Vision.DlibModelDir)

	r.String("LANDMARK_SERVICE_URL", &s.Landmarks.ServiceURL)
	r.Duration("LANDMARK_RETRY_INTERVAL", &s.Landmarks.RetryInterval)
	r.Duration("LANDMARK_TIMEOUT", &s.Landmarks.Timeout)

	r.Bool("AUDIO_ENABLED", &s.Audio.Enabled)
	r.String("ALARM_SOUND", &s.Audio.AlarmSound)
	r.String("ELEVENLABS_API_KEY", &s.Audio.ElevenLabsAPIKey)
	r.String("ELEVENLABS_VOICE_ID", &s.Audio.ElevenLabsVoiceID)

	r.String("NOTIFY_CHANNEL", &s.Notify.Channel)
	r.String("SMS_API_KEY", &s.Notify.SMSAPIKey)
	r.String("SMTP_MAIL", &s.Notify.SMTPMail)
	r.String("SMTP_PASSWORD", &s.Notify.SMTPPass)
	r.String("SMTP_HOST", &s.Notify.SMTPHost)
	r.Int("SMTP_PORT", &s.Notify.SMTPPort)

	r.Bool("STATUS_API_ENABLED", &s.API.Enabled)
	r.String("APP_PORT", &s.API.Port)
	r.Duration("STATUS_STREAM_INTERVAL", &s.API.StreamInterval)
	r.String("JWT_ACCESS_TOKEN_SECRET", &s.API.JWTSecret)
	r.Float("RATE_LIMIT_RPS", &s.API.RateLimit)
	r.Int("RATE_LIMIT_BURST", &s.API.RateBurst)

	r.String("MQTT_BROKER", &s.Telemetry.MQTTBroker)
	r.String("MQTT_TOPIC", &s.Telemetry.MQTTTopic)
	r.String("MQTT_CLIENT_ID", &s.Telemetry.MQTTClientID)
	r.String("AWS_BUCKET_NAME", &s.Telemetry.S3Bucket)

	s.Notify.Channel = strings.ToLower(s.Notify.Channel)
	s.Vision.FaceDetector = strings.ToLower(s.Vision.FaceDetector)
	s.Alerts.UploadSnapshot = s.Telemetry.S3Bucket != ""

	if err := errors.Join(r.errs...); err != nil {
		return s, fmt.Errorf("invalid environment: %w", err)
	}
	return s, nil
}

func (s Settings) Validate(v *validator.Validate) error {
	if err := v.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *envReader) get(name string) (string, bool) {
	v, ok := r.lookup(name)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (r *envReader) String(name string, value *string) {
	if v, ok := r.get(name); ok {
		*value = v
	}
}

func (r *envReader) Bool(name string, value *bool) {
	v, ok := r.get(name)
	if !ok {
		return
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		*value = true
	case "false", "0", "no", "off":
		*value = false
	default:
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a boolean", name, v))
	}
}

func (r *envReader) Float(name string, value *float64) {
	v, ok := r.get(name)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", name, err))
		return
	}
	*value = f
}

func (r *envReader) Int(name string, value *int) {
	v, ok := r.get(name)
	if !ok {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", name, err))
		return
	}
	*value = i
}

// Seconds accepts a plain number of seconds.
func (r *envReader) Seconds(name string, value *time.Duration) {
	v, ok := r.get(name)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", name, err))
		return
	}
	*value = time.Duration(f * float64(time.Second))
}

// Duration accepts Go duration syntax ("500ms", "5s").
func (r *envReader) Duration(name string, value *time.Duration) {
	v, ok := r.get(name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", name, err))
		return
	}
	*value = d
}
