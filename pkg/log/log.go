package log

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"
	"time"

	contextPkg "WakeGuard/pkg/context"

	"golang.org/x/net/context"
	"gopkg.in/natefinch/lumberjack.v2"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

const RequestIDKey = "request_id"

type Fields = logrus.Fields

func NewLogger() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()
		logger.SetLevel(levelFromEnv())

		logger.SetFormatter(&formatter.Formatter{
			NoColors:        false,
			TimestampFormat: "02 Jan 06 - 15:04:05",
			HideKeys:        false,
			CallerFirst:     true,
			CustomCallerFormatter: func(f *runtime.Frame) string {
				s := strings.Split(f.Function, ".")
				funcName := s[len(s)-1]
				return fmt.Sprintf(" \x1b[%dm[%s:%d][%s()]", 34, path.Base(f.File), f.Line, funcName)
			},
		})

		writers := []io.Writer{os.Stderr}

		if os.Getenv("APP_ENV") != "test" {
			fileWriter := &lumberjack.Logger{
				Filename:   fmt.Sprintf("./storage/logs/wakeguard-%s.log", time.Now().Format("2006-01-02")),
				LocalTime:  true,
				Compress:   true,
				MaxSize:    100,
				MaxAge:     7,
				MaxBackups: 3,
			}
			writers = append(writers, fileWriter)
		}

		logger.SetOutput(io.MultiWriter(writers...))
		logger.SetReportCaller(true)
	})

	return logger
}

func levelFromEnv() logrus.Level {
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return logrus.DebugLevel
	}
	return level
}

// ErrorWithTraceID logs msg on l with a trace id, reusing the request id
// when fields carry one, and returns the id for the client.
func ErrorWithTraceID(l *logrus.Logger, fields Fields, msg string) string {
	if l == nil {
		l = logrus.StandardLogger()
	}
	if fields == nil {
		fields = Fields{}
	}

	var traceID string
	if reqID, ok := fields[RequestIDKey].(string); ok && reqID != "" && reqID != "unknown" {
		traceID = reqID
	} else {
		id, err := uuid.NewRandom()
		if err != nil {
			traceID = "unknown"
		} else {
			traceID = id.String()
		}
	}

	fields["trace_id"] = traceID
	l.WithFields(fields).Error(msg)

	return traceID
}

// WithRequestID tags entries with the request id carried by ctx.
func WithRequestID(l *logrus.Logger, ctx context.Context) *logrus.Entry {
	return l.WithField(RequestIDKey, contextPkg.GetRequestID(ctx))
}
