package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/hekate/internal/constants"
)

// Logger is the process-wide logger. It stays nil until Init or InitWriter
// runs, and every helper below is a no-op until then.
var Logger *log.Logger

var path string

type Config struct {
	Debug     bool
	ConfigDir string
}

// Init writes logs to a rotating file under <ConfigDir>/logs. Debug mode
// lowers the level and mirrors everything to stderr.
func Init(cfg Config) error {
	logDir := filepath.Join(cfg.ConfigDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}
	path = filepath.Join(logDir, constants.AppName+".log")

	rotating := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 2,
		MaxAge:     14, // days
		Compress:   true,
	}

	var w io.Writer = rotating
	if cfg.Debug {
		w = io.MultiWriter(os.Stderr, rotating)
	}
	InitWriter(w, cfg.Debug)
	return nil
}

// InitWriter sends logs to w. Tests use it to capture output.
func InitWriter(w io.Writer, debug bool) {
	level := log.WarnLevel
	if debug {
		level = log.DebugLevel
	}
	Logger = log.NewWithOptions(w, log.Options{
		ReportCaller:    debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
	})
}

// Path is the log file Init opened, or "" when logging goes elsewhere.
func Path() string {
	return path
}

func Debug(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
