package log

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

const (
	RequestIDKey = "request_id"

	defaultLogDir = "./storage/logs"
)

type Fields = logrus.Fields

// NewLogger returns the process-wide logger. Outside APP_ENV=test it also
// writes a daily rotated file under APP_LOG_DIR.
func NewLogger() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()
		logger.SetLevel(parseLevel(os.Getenv("APP_LOG_LEVEL")))
		logger.SetFormatter(callerFormatter())
		logger.SetReportCaller(true)

		writers := []io.Writer{os.Stderr}
		if os.Getenv("APP_ENV") != "test" {
			writers = append(writers, rotatingFile(os.Getenv("APP_LOG_DIR"), time.Now()))
		}
		logger.SetOutput(io.MultiWriter(writers...))
	})

	return logger
}

func callerFormatter() *formatter.Formatter {
	return &formatter.Formatter{
		TimestampFormat: "02 Jan 06 - 15:04",
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			fn := f.Function[strings.LastIndex(f.Function, ".")+1:]
			return fmt.Sprintf(" \x1b[34m[%s:%d][%s()]", path.Base(f.File), f.Line, fn)
		},
	}
}

func rotatingFile(dir string, day time.Time) *lumberjack.Logger {
	if dir == "" {
		dir = defaultLogDir
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, "eyelid-"+day.Format("2006-01-02")+".log"),
		LocalTime:  true,
		Compress:   true,
		MaxSize:    100,
		MaxAge:     7,
		MaxBackups: 3,
	}
}

// parseLevel falls back to debug, the level the service has always logged at.
func parseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(level)
	if level == "" || err != nil {
		return logrus.DebugLevel
	}
	return parsed
}

func entry(fields Fields) *logrus.Entry {
	if fields == nil {
		fields = Fields{}
	}
	return NewLogger().WithFields(fields)
}

func Info(fields Fields, msg string)  { entry(fields).Info(msg) }
func Warn(fields Fields, msg string)  { entry(fields).Warn(msg) }
func Error(fields Fields, msg string) { entry(fields).Error(msg) }
func Fatal(fields Fields, msg string) { entry(fields).Fatal(msg) }

// NewTraceID reuses the request ID in fields when there is one, so a
// client-visible trace ID can be matched against the access log.
func NewTraceID(fields Fields) string {
	if reqID, ok := fields[RequestIDKey].(string); ok && reqID != "" && reqID != "unknown" {
		return reqID
	}

	id, err := uuid.NewRandom()
	if err != nil {
		Error(Fields{"error": err.Error()}, "failed to generate trace ID")
		return "unknown"
	}
	return id.String()
}

// ErrorWithTraceID logs msg at error level and returns the trace ID attached
// to it.
func ErrorWithTraceID(fields Fields, msg string) string {
	if fields == nil {
		fields = Fields{}
	}
	traceID := NewTraceID(fields)
	fields["trace_id"] = traceID
	entry(fields).Error(msg)
	return traceID
}

// WithRequestID scopes l to the request ID carried by ctx.
func WithRequestID(l *logrus.Logger, ctx context.Context) *logrus.Entry {
	requestID := "unknown"
	if ctx != nil {
		if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
			requestID = id
		}
	}
	return l.WithField(RequestIDKey, requestID)
}
