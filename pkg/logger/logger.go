package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

type Logger struct {
	zl zerolog.Logger
}

var globalLogger *Logger

func New(output io.Writer, level LogLevel) *Logger {
	if output == nil {
		output = os.Stdout
	}
	zl := zerolog.New(output).With().Timestamp().Logger().Level(parseLevel(level))
	return &Logger{zl: zl}
}

// Init installs the process-wide logger writing JSON lines to stdout.
func Init() {
	InitWithLevel(LevelInfo)
}

func InitWithLevel(level LogLevel) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	globalLogger = New(os.Stdout, level)
}

// SetOutput redirects the global logger, mainly for tests.
func SetOutput(w io.Writer) {
	globalLogger = New(w, LevelDebug)
}

func parseLevel(level LogLevel) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(string(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

func (l *Logger) log(level zerolog.Level, action string, userID *string, details map[string]interface{}, err error) {
	event := l.zl.WithLevel(level).Str("action", action)
	if userID != nil {
		event = event.Str("user_id", *userID)
	}
	if len(details) > 0 {
		event = event.Fields(details)
	}
	if err != nil {
		event = event.Str("error", err.Error())
	}
	event.Send()
}

func emit(level zerolog.Level, userID *string, action string, err error, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(level, action, userID, details, err)
	}
}

func Info(action string, details map[string]interface{}) {
	emit(zerolog.InfoLevel, nil, action, nil, details)
}

func InfoWithUser(userID string, action string, details map[string]interface{}) {
	emit(zerolog.InfoLevel, &userID, action, nil, details)
}

func Warn(action string, details map[string]interface{}) {
	emit(zerolog.WarnLevel, nil, action, nil, details)
}

func WarnWithUser(userID string, action string, details map[string]interface{}) {
	emit(zerolog.WarnLevel, &userID, action, nil, details)
}

func Error(action string, err error, details map[string]interface{}) {
	emit(zerolog.ErrorLevel, nil, action, err, details)
}

func ErrorWithUser(userID string, action string, err error, details map[string]interface{}) {
	emit(zerolog.ErrorLevel, &userID, action, err, details)
}

// GetUserIDFromContext returns the id RequireAuth stored, or nil for
// anonymous requests.
func GetUserIDFromContext(c *fiber.Ctx) *string {
	if id, ok := c.Locals("userID").(string); ok {
		return &id
	}
	return nil
}

const (
	inlineBodyLimit  = 1024
	loggedBodyLength = 200
)

// sensitiveFields are matched case-insensitively at any depth.
var sensitiveFields = map[string]bool{
	"password":    true,
	"oldpassword": true,
	"newpassword": true,
	"secret":      true,
	"token":       true,
}

func redactSensitiveFields(value interface{}) {
	switch v := value.(type) {
	case map[string]interface{}:
		for key, nested := range v {
			if sensitiveFields[strings.ToLower(key)] {
				v[key] = "[REDACTED]"
				continue
			}
			redactSensitiveFields(nested)
		}
	case []interface{}:
		for _, nested := range v {
			redactSensitiveFields(nested)
		}
	}
}

// GetRequestBodySummary renders small JSON bodies with secrets redacted.
// Uploads and other non-JSON bodies are only described by size.
func GetRequestBodySummary(c *fiber.Ctx) string {
	body := c.Body()
	switch {
	case len(body) == 0:
		return "empty"
	case strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm):
		return fmt.Sprintf("multipart (%d bytes)", len(body))
	case len(body) > inlineBodyLimit:
		return fmt.Sprintf("large (%d bytes)", len(body))
	}

	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Sprintf("binary (%d bytes)", len(body))
	}
	redactSensitiveFields(decoded)
	encoded, err := json.Marshal(decoded)
	if err != nil {
		return fmt.Sprintf("binary (%d bytes)", len(body))
	}
	if len(encoded) > loggedBodyLength {
		return string(encoded[:loggedBodyLength]) + "..."
	}
	return string(encoded)
}

func GetResponseSizeSummary(c *fiber.Ctx) string {
	size := len(c.Response().Body())
	switch {
	case size == 0:
		return "empty"
	case size > inlineBodyLimit:
		return fmt.Sprintf("large (%d bytes)", size)
	default:
		return fmt.Sprintf("small (%d bytes)", size)
	}
}

func GenerateRequestID() string {
	return uuid.New().String()
}
