package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 5
	defaultMaxAgeDays = 30
)

// Logger printf-логгер поверх logrus.
// Пишет в stdout и, если указан файл, в файл с ротацией.
type Logger struct {
	log    *logrus.Logger
	closer io.Closer
}

// New создает логгер с уровнем level ("debug", "info", "warn", "error").
// Пустой file означает вывод только в stdout.
func New(file, level string) (*Logger, error) {
	if file == "" {
		return NewWithWriter(os.Stdout, level)
	}

	rotator := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    defaultMaxSizeMB,
		MaxBackups: defaultMaxBackups,
		MaxAge:     defaultMaxAgeDays,
		Compress:   true,
	}

	l, err := NewWithWriter(io.MultiWriter(os.Stdout, rotator), level)
	if err != nil {
		return nil, err
	}
	l.closer = rotator

	return l, nil
}

// NewWithWriter создает логгер, пишущий в w
func NewWithWriter(w io.Writer, level string) (*Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logger: invalid level %q: %w", level, err)
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
		DisableColors:   true,
	})

	return &Logger{log: l}, nil
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.log.Debugf(format, v...)
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.log.Infof(format, v...)
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.log.Warnf(format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.log.Errorf(format, v...)
}

// Fatal пишет сообщение и завершает процесс
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.log.Fatalf(format, v...)
}

// Close закрывает файл логов
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
