package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/sirupsen/logrus"
)

// Logger is responsible for logging messages from code.
type Logger interface {
	Debug(string, ...interface{})
	Info(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	WithFields(...interface{}) Logger
	SetLevel(string)
	SetOutput(io.Writer)
	Discard()
	Configure(Config)
}

// New returns a new Logger instance with the given namespace and base fields.
func New(ns string, args ...interface{}) Logger {
	f := fields(args...)
	f["ns"] = ns

	base := logrus.New()
	base.SetLevel(logrus.InfoLevel)
	base.SetOutput(os.Stderr)
	base.SetFormatter(&textFormatter{
		conf: TextFormatConfig{
			FullTimestamp:   true,
			TimestampFormat: defaultTimestampFormat,
		},
	})

	return &logger{log: base, entry: base.WithFields(f)}
}

// NewLogger returns a new Logger instance configured from conf.
func NewLogger(ns string, conf Config) Logger {
	l := New(ns)
	l.Configure(conf)
	return l
}

type logger struct {
	log   *logrus.Logger
	entry *logrus.Entry
}

// Debug logs a debug message.
//
// After the first argument, arguments are key-value pairs which are written
// as structured logs.
//
//	log.Debug("Some message here", "key1", value1, "key2", value2)
func (l *logger) Debug(msg string, args ...interface{}) {
	defer recoverLogErr()
	l.entry.WithFields(fields(args...)).Debug(msg)
}

// Info logs an info message
//
// After the first argument, arguments are key-value pairs which are written
// as structured logs.
//
//	log.Info("Some message here", "key1", value1, "key2", value2)
func (l *logger) Info(msg string, args ...interface{}) {
	defer recoverLogErr()
	l.entry.WithFields(fields(args...)).Info(msg)
}

// Warn logs a warning message.
func (l *logger) Warn(msg string, args ...interface{}) {
	defer recoverLogErr()
	l.entry.WithFields(fields(args...)).Warn(msg)
}

// Error logs an error message
//
// Error has a two-argument version that can be used as a shortcut.
//
//	err := launch()
//	log.Error("Couldn't launch", err)
func (l *logger) Error(msg string, args ...interface{}) {
	defer recoverLogErr()
	var f map[string]interface{}
	if len(args) == 1 {
		f = fields("error", args[0])
	} else {
		f = fields(args...)
	}
	l.entry.WithFields(f).Error(msg)
}

// WithFields returns a new Logger instance with the given fields added to all
// log messages.
func (l *logger) WithFields(args ...interface{}) Logger {
	defer recoverLogErr()
	return &logger{log: l.log, entry: l.entry.WithFields(fields(args...))}
}

// SetLevel sets the level of logging.
func (l *logger) SetLevel(lvl string) {
	switch strings.ToLower(lvl) {
	case "debug":
		l.log.SetLevel(logrus.DebugLevel)
	case "info":
		l.log.SetLevel(logrus.InfoLevel)
	case "warn":
		l.log.SetLevel(logrus.WarnLevel)
	case "error":
		l.log.SetLevel(logrus.ErrorLevel)
	default:
		l.log.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput sets the logger output.
func (l *logger) SetOutput(w io.Writer) {
	l.log.SetOutput(w)
}

// Discard configures the logger to discard all logs.
func (l *logger) Discard() {
	l.log.SetOutput(io.Discard)
}

// Configure configures the logging level, formatter and output path.
func (l *logger) Configure(conf Config) {
	l.SetLevel(conf.Level)

	switch conf.Formatter {
	case "json":
		l.log.SetFormatter(&jsonFormatter{conf: conf.JSONFormat})

	// Default to text
	default:
		l.log.SetFormatter(&textFormatter{
			conf: conf.TextFormat,
			json: jsonFormatter{conf: conf.JSONFormat},
		})
	}

	if conf.OutputFile != "" {
		logFile, err := os.OpenFile(
			conf.OutputFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666,
		)
		if err != nil {
			l.Error("Can't open log output", "output", conf.OutputFile)
		} else {
			l.SetOutput(logFile)
		}
	}
}

// recoverLogErr is used to recover from any panics during logging.
// Panics aren't expected of course, but logging should never crash
// a program, so this failsafe tries to prevent those crashes.
func recoverLogErr() {
	if r := recover(); r != nil {
		fmt.Println("Recovered from logging panic", r)
	}
}

// PrintSimpleError prints out an error message with a red "ERROR:" prefix.
func PrintSimpleError(err error) {
	fmt.Printf("%s %s\n", aurora.Red("ERROR:"), err.Error())
}

func fields(args ...interface{}) map[string]interface{} {
	f := make(map[string]interface{}, len(args)/2)
	if len(args) == 1 {
		f["unknown"] = args[0]
		return f
	}
	for i := 0; i+1 < len(args); i += 2 {
		k, ok := args[i].(string)
		if !ok {
			k = fmt.Sprintf("%v", args[i])
		}
		f[k] = args[i+1]
	}
	if len(args)%2 != 0 && len(args) > 1 {
		f["unknown"] = args[len(args)-1]
	}
	return f
}
