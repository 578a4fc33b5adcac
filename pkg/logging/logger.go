package logging

import (
	"io"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/niels/tinyhttpd/pkg/config"
	"github.com/rs/zerolog"
)

var (
	// Global logger instance
	globalLogger = zerolog.Nop()
)

// InitGlobalLogger initializes the global logger.
//
// Console receives the log stream when file logging is off; pass nil to
// discard it unless debug is set. With file logging on, entries go to the
// rotating file, and to stderr as well in debug mode.
func InitGlobalLogger(debug bool, cfg *config.Config, console io.Writer) {
	var output io.Writer

	if cfg != nil && cfg.Logging.LogToFile {
		fileLogger := &lumberjack.Logger{
			Filename:   cfg.Logging.LogFilePath,
			MaxSize:    cfg.Logging.MaxSize, // megabytes
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAge:     cfg.Logging.MaxAge, // days
			Compress:   cfg.Logging.Compress,
		}

		if debug {
			output = io.MultiWriter(fileLogger, os.Stderr)
		} else {
			output = fileLogger
			tempLogger := NewLogger(false, os.Stderr)
			tempLogger.Info().Msg("Logging to file only: " + cfg.Logging.LogFilePath)
		}
	} else {
		switch {
		case console != nil:
			output = console
		case debug:
			output = os.Stderr
		default:
			output = io.Discard
		}
	}

	globalLogger = NewLogger(debug, output)
}

// NewLogger creates a new zerolog logger with the specified debug level
func NewLogger(debug bool, output io.Writer) zerolog.Logger {
	if output == nil {
		output = os.Stderr
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	return zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Logger()
}

// SetGlobalLogger replaces the global logger
func SetGlobalLogger(logger zerolog.Logger) {
	globalLogger = logger
}

// Debug logs a message at debug level
func Debug(msg string) {
	globalLogger.Debug().Msg(msg)
}

// Info logs a message at info level
func Info(msg string) {
	globalLogger.Info().Msg(msg)
}

// Warn logs a message at warn level
func Warn(msg string) {
	globalLogger.Warn().Msg(msg)
}

// Error logs a message at error level
func Error(msg string) {
	globalLogger.Error().Msg(msg)
}

// DebugWith logs a message at debug level with additional context
func DebugWith(msg string, fields map[string]interface{}) {
	logWith(globalLogger.Debug(), msg, fields)
}

// InfoWith logs a message at info level with additional context
func InfoWith(msg string, fields map[string]interface{}) {
	logWith(globalLogger.Info(), msg, fields)
}

// WarnWith logs a message at warn level with additional context
func WarnWith(msg string, fields map[string]interface{}) {
	logWith(globalLogger.Warn(), msg, fields)
}

// ErrorWith logs a message at error level with additional context
func ErrorWith(msg string, fields map[string]interface{}) {
	logWith(globalLogger.Error(), msg, fields)
}

// GetLogger returns the global logger instance
func GetLogger() zerolog.Logger {
	return globalLogger
}

// WithComponent returns a logger with the component field set
func WithComponent(component string) zerolog.Logger {
	return globalLogger.With().Str("component", component).Logger()
}

// WithConnection returns a logger carrying the connection id and peer address
func WithConnection(component, connID, remoteAddr string) zerolog.Logger {
	return globalLogger.With().
		Str("component", component).
		Str("conn_id", connID).
		Str("remote_addr", remoteAddr).
		Logger()
}

func logWith(event *zerolog.Event, msg string, fields map[string]interface{}) {
	for k, v := range fields {
		event = addField(event, k, v)
	}
	event.Msg(msg)
}

// addField adds a field to the log event based on its type
func addField(event *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return event.Str(key, v)
	case int:
		return event.Int(key, v)
	case int64:
		return event.Int64(key, v)
	case float64:
		return event.Float64(key, v)
	case bool:
		return event.Bool(key, v)
	case time.Time:
		return event.Time(key, v)
	case time.Duration:
		return event.Dur(key, v)
	case []string:
		return event.Strs(key, v)
	case error:
		return event.Err(v).Str(key, v.Error())
	default:
		return event.Interface(key, v)
	}
}
