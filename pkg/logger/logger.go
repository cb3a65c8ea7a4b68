package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/flivyn/flivynterm/pkg/configuration"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel orders log entries by severity.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// LogArea tags every entry with the subsystem that wrote it.
type LogArea string

const (
	AreaWebSocket  LogArea = "websocket"
	AreaTerminal   LogArea = "terminal"
	AreaSession    LogArea = "session"
	AreaFileSystem LogArea = "filesystem"
	AreaEditor     LogArea = "editor"
	AreaGame       LogArea = "game"
	AreaAuth       LogArea = "auth"
	AreaDatabase   LogArea = "database"
	AreaMetrics    LogArea = "metrics"
	AreaConfig     LogArea = "config"
	AreaGeneral    LogArea = "general"
)

var allAreas = []LogArea{
	AreaWebSocket, AreaTerminal, AreaSession, AreaFileSystem, AreaEditor,
	AreaGame, AreaAuth, AreaDatabase, AreaMetrics, AreaConfig, AreaGeneral,
}

// Logger filters entries by level and area before handing them to zap.
type Logger struct {
	enabled     int32
	level       int32
	areaEnabled map[LogArea]*int32
	sink        *rotatingFile
	zl          *zap.Logger
}

type options struct {
	enabled       bool
	level         LogLevel
	path          string
	maxSizeMB     int64
	rotationCount int
	areas         map[LogArea]bool
}

var (
	globalLogger *Logger
	initOnce     sync.Once
)

// Initialize builds the global logger from the [Debug] section.
func Initialize() error {
	var err error
	initOnce.Do(func() {
		globalLogger, err = newLogger(optionsFromConfig())
	})
	return err
}

func optionsFromConfig() options {
	opts := options{
		enabled:       configuration.GetBool("Debug", "enable_debug_logging", true),
		level:         parseLogLevel(configuration.GetString("Debug", "log_level", "INFO")),
		path:          configuration.GetString("Debug", "log_file", "flivynterm.log"),
		maxSizeMB:     int64(configuration.GetInt("Debug", "max_log_size_mb", 10)),
		rotationCount: configuration.GetInt("Debug", "log_rotation_count", 3),
		areas:         make(map[LogArea]bool, len(allAreas)),
	}
	for _, area := range allAreas {
		opts.areas[area] = configuration.GetBool("Debug", "log_"+string(area), false)
	}
	return opts
}

func newLogger(opts options) (*Logger, error) {
	l := &Logger{areaEnabled: make(map[LogArea]*int32, len(allAreas))}
	for _, area := range allAreas {
		l.areaEnabled[area] = new(int32)
	}
	l.apply(opts)

	sink, err := openRotatingFile(opts.path, opts.maxSizeMB*1024*1024, opts.rotationCount)
	if err != nil {
		return nil, err
	}
	l.sink = sink

	encCfg := zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		CallerKey:        "caller",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
	// Filtering happens in shouldLog, so the file core accepts everything.
	fileCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), sink, zapcore.DebugLevel)
	stderrCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), zapcore.WarnLevel)

	l.zl = zap.New(zapcore.NewTee(fileCore, stderrCore), zap.AddCaller(), zap.AddCallerSkip(2))
	return l, nil
}

func (l *Logger) apply(opts options) {
	atomic.StoreInt32(&l.enabled, boolToInt32(opts.enabled))
	atomic.StoreInt32(&l.level, int32(opts.level))
	for area, flag := range l.areaEnabled {
		atomic.StoreInt32(flag, boolToInt32(opts.areas[area]))
	}
}

func (l *Logger) isAreaEnabled(area LogArea) bool {
	if flag, exists := l.areaEnabled[area]; exists {
		return atomic.LoadInt32(flag) != 0
	}
	return false
}

// shouldLog lets WARN and above through for every area; lower levels need the
// area switch.
func (l *Logger) shouldLog(level LogLevel, area LogArea) bool {
	if atomic.LoadInt32(&l.enabled) == 0 {
		return false
	}
	if atomic.LoadInt32(&l.level) > int32(level) {
		return false
	}
	return level >= WARN || l.isAreaEnabled(area)
}

func (l *Logger) writeLog(level LogLevel, area LogArea, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if ce := l.zl.Check(zapLevel(level), msg); ce != nil {
		ce.Write(zap.String("area", strings.ToUpper(string(area))))
	}
}

func zapLevel(level LogLevel) zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR, FATAL:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Debug writes a debug entry for area.
func Debug(area LogArea, format string, args ...interface{}) {
	if globalLogger != nil && globalLogger.shouldLog(DEBUG, area) {
		globalLogger.writeLog(DEBUG, area, format, args...)
	}
}

// Info writes an info entry for area.
func Info(area LogArea, format string, args ...interface{}) {
	if globalLogger != nil && globalLogger.shouldLog(INFO, area) {
		globalLogger.writeLog(INFO, area, format, args...)
	}
}

// Warn writes a warning for area.
func Warn(area LogArea, format string, args ...interface{}) {
	if globalLogger != nil && globalLogger.shouldLog(WARN, area) {
		globalLogger.writeLog(WARN, area, format, args...)
	}
}

// Error writes an error entry for area.
func Error(area LogArea, format string, args ...interface{}) {
	if globalLogger != nil && globalLogger.shouldLog(ERROR, area) {
		globalLogger.writeLog(ERROR, area, format, args...)
	}
}

// Fatal writes the entry unconditionally and exits the process.
func Fatal(area LogArea, format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.writeLog(FATAL, area, format, args...)
		_ = globalLogger.zl.Sync()
	}
	log.Fatalf("[FATAL] [%s] %s", strings.ToUpper(string(area)), fmt.Sprintf(format, args...))
}

// Convenience helpers for the busiest areas.

func WebSocketDebug(format string, args ...interface{}) { Debug(AreaWebSocket, format, args...) }
func WebSocketInfo(format string, args ...interface{})  { Info(AreaWebSocket, format, args...) }
func WebSocketWarn(format string, args ...interface{})  { Warn(AreaWebSocket, format, args...) }
func WebSocketError(format string, args ...interface{}) { Error(AreaWebSocket, format, args...) }

func SessionInfo(format string, args ...interface{}) { Info(AreaSession, format, args...) }

func AuthInfo(format string, args ...interface{})  { Info(AreaAuth, format, args...) }
func AuthWarn(format string, args ...interface{})  { Warn(AreaAuth, format, args...) }
func AuthError(format string, args ...interface{}) { Error(AreaAuth, format, args...) }

func ConfigInfo(format string, args ...interface{}) { Info(AreaConfig, format, args...) }
func ConfigWarn(format string, args ...interface{}) { Warn(AreaConfig, format, args...) }

// EnableArea switches an area on at runtime.
func EnableArea(area LogArea) {
	if globalLogger != nil {
		if flag, exists := globalLogger.areaEnabled[area]; exists {
			atomic.StoreInt32(flag, 1)
		}
	}
}

// DisableArea switches an area off at runtime.
func DisableArea(area LogArea) {
	if globalLogger != nil {
		if flag, exists := globalLogger.areaEnabled[area]; exists {
			atomic.StoreInt32(flag, 0)
		}
	}
}

// GetAreaStatus reports whether an area is switched on.
func GetAreaStatus(area LogArea) bool {
	if globalLogger != nil {
		return globalLogger.isAreaEnabled(area)
	}
	return false
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func parseLogLevel(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// Close flushes zap and closes the log file.
func Close() {
	if globalLogger == nil {
		return
	}
	_ = globalLogger.zl.Sync()
	globalLogger.sink.Close()
}
