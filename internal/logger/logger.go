// Package logger builds the zerolog logger shared by the server and the CLI.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type LoggerConfig struct {
	Level              string                 `json:"level,omitempty" mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format             string                 `json:"format,omitempty" mapstructure:"format" validate:"oneof=json console"`
	OutputTarget       string                 `json:"outputTarget,omitempty" mapstructure:"output_target" validate:"oneof=stdout stderr"`
	TimeField          string                 `json:"timeField,omitempty" mapstructure:"time_field"`
	TimeFormat         string                 `json:"timeFormat,omitempty" mapstructure:"time_format" validate:"oneof=rfc3339 rfc3339nano unix unix_ms"`
	ServiceName        string                 `json:"serviceName,omitempty" mapstructure:"service_name"`
	ServiceVersion     string                 `json:"serviceVersion,omitempty" mapstructure:"service_version"`
	Env                string                 `json:"env,omitempty" mapstructure:"env" validate:"oneof=dev staging prod"`
	WithCaller         bool                   `json:"withCaller,omitempty" mapstructure:"with_caller"`
	Stacktrace         bool                   `json:"stacktrace,omitempty" mapstructure:"stacktrace"`
	StacktraceMinLevel string                 `json:"stacktraceMinLevel,omitempty" mapstructure:"stacktrace_min_level" validate:"oneof=debug info warn error fatal panic"`
	DebugLogPath       string                 `json:"debugLogPath,omitempty" mapstructure:"debug_log_path"`
	NoColor            bool                   `json:"noColor,omitempty" mapstructure:"no_color"`
	Fields             map[string]interface{} `json:"fields,omitempty" mapstructure:"fields"`

	// Writer replaces the stream chosen by OutputTarget when set.
	Writer io.Writer `json:"-" mapstructure:"-"`
}

// New builds the service logger and installs it as the zerolog global logger.
func New(cfg *LoggerConfig) (zerolog.Logger, error) {
	cfg.setDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return zerolog.Nop(), fmt.Errorf("logger config validation error: %w", err)
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	zerolog.TimestampFieldName = cfg.TimeField
	zerolog.TimeFieldFormat = timeFieldFormat(cfg.TimeFormat)

	ctx := zerolog.New(writerFor(cfg)).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("version", cfg.ServiceVersion).
		Str("env", cfg.Env)
	if cfg.WithCaller {
		ctx = ctx.Caller()
	}
	if len(cfg.Fields) > 0 {
		ctx = ctx.Fields(cfg.Fields)
	}
	logger := ctx.Logger()

	if cfg.Stacktrace {
		minLevel, err := zerolog.ParseLevel(cfg.StacktraceMinLevel)
		if err != nil {
			return zerolog.Nop(), err
		}
		logger = logger.Hook(stackHook{min: minLevel})
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = logger
	return logger, nil
}

// Component returns a child logger tagged with module and component names.
func Component(base zerolog.Logger, module, component string) zerolog.Logger {
	return base.With().Str("module", module).Str("component", component).Logger()
}

// writerFor picks the sink. Production-like environments log JSON to the
// configured stream unless console format is requested; dev always uses the
// console on stderr and, at debug level, tees into DebugLogPath.
func writerFor(cfg *LoggerConfig) io.Writer {
	var out io.Writer = os.Stdout
	if cfg.OutputTarget == "stderr" {
		out = os.Stderr
	}
	if cfg.Writer != nil {
		out = cfg.Writer
	}

	if cfg.Env != "dev" {
		if cfg.Format == "console" {
			return zerolog.ConsoleWriter{Out: out, TimeFormat: zerolog.TimeFieldFormat, NoColor: cfg.NoColor}
		}
		return out
	}

	var consoleOut io.Writer = os.Stderr
	if cfg.Writer != nil {
		consoleOut = cfg.Writer
	}
	console := zerolog.ConsoleWriter{Out: consoleOut, TimeFormat: zerolog.TimeFieldFormat, NoColor: cfg.NoColor}
	if cfg.Level != "debug" && cfg.Level != "trace" {
		return console
	}
	file, err := openDebugFile(cfg.DebugLogPath)
	if err != nil {
		// console only
		return console
	}
	return zerolog.MultiLevelWriter(console, file)
}

func openDebugFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
}

// stackHook attaches the goroutine stack to events at or above min.
type stackHook struct{ min zerolog.Level }

func (h stackHook) Run(e *zerolog.Event, level zerolog.Level, _ string) {
	if level >= h.min && level < zerolog.NoLevel {
		e.Bytes("stack", debug.Stack())
	}
}

func timeFieldFormat(format string) string {
	switch format {
	case "rfc3339":
		return time.RFC3339
	case "unix":
		return zerolog.TimeFormatUnix
	case "unix_ms":
		return zerolog.TimeFormatUnixMs
	default:
		return time.RFC3339Nano
	}
}

func (c *LoggerConfig) setDefaults() {
	dev := c.Env == "dev"
	if c.Env == "" {
		c.Env = "prod"
	}
	if c.Level == "" {
		c.Level = pick(dev, "debug", "info")
	}
	if c.Format == "" {
		c.Format = pick(dev, "console", "json")
	}
	if c.OutputTarget == "" {
		c.OutputTarget = "stdout"
	}
	if c.TimeField == "" {
		c.TimeField = "ts"
	}
	if c.TimeFormat == "" {
		c.TimeFormat = "rfc3339nano"
	}

	// dev gets caller info; everything else gets stacks on errors
	if dev {
		c.WithCaller = true
	} else {
		c.Stacktrace = true
	}
	if c.StacktraceMinLevel == "" {
		c.StacktraceMinLevel = "error"
	}

	if c.ServiceName == "" {
		c.ServiceName = "query-explorer"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "0.1.0"
	}
	if c.DebugLogPath == "" {
		c.DebugLogPath = "logs/debug.log"
	}
	if c.Fields == nil {
		c.Fields = make(map[string]interface{})
	}
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
