package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logWriterMapInstance = &logWriterMap{
	m: make(map[string]io.WriteCloser),
}

type logWriterMap struct {
	sync.RWMutex
	m map[string]io.WriteCloser
}

// Close ...
func (l *logWriterMap) Close() {
	l.Lock()
	defer l.Unlock()
	for name, w := range l.m {
		_ = w.Close()
		delete(l.m, name)
	}
}

// GetLogWriter ...
func (l *logWriterMap) GetLogWriter(name string) io.WriteCloser {
	l.RLock()
	w := l.m[name]
	l.RUnlock()
	if w != nil {
		return w
	}

	l.Lock()
	defer l.Unlock()
	if w = l.m[name]; w != nil {
		return w
	}
	w = newLumberJackWriter(LogFile(name))
	l.m[name] = w
	return w
}

type zapSugarLogger struct {
	sugar  *zap.SugaredLogger
	writer io.Writer
}

// Close flushes the logger. Stdout is never closed.
func (l *zapSugarLogger) Close() error {
	_ = l.sugar.Sync()
	if l.writer == os.Stdout {
		return nil
	}
	if c, ok := l.writer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (l *zapSugarLogger) Debug(args ...interface{}) { l.sugar.Debug(args...) }

func (l *zapSugarLogger) Debugf(s string, i ...interface{}) { l.sugar.Debugf(s, i...) }

func (l *zapSugarLogger) Error(args ...interface{}) { l.sugar.Error(args...) }

func (l *zapSugarLogger) Errorf(s string, i ...interface{}) { l.sugar.Errorf(s, i...) }

func (l *zapSugarLogger) Info(args ...interface{}) { l.sugar.Info(args...) }

func (l *zapSugarLogger) Infof(s string, i ...interface{}) { l.sugar.Infof(s, i...) }

func (l *zapSugarLogger) Warn(args ...interface{}) { l.sugar.Warn(args...) }

func (l *zapSugarLogger) Warnf(s string, i ...interface{}) { l.sugar.Warnf(s, i...) }

func (l *zapSugarLogger) Writer() io.Writer { return l.writer }

func CloseWriters() {
	logWriterMapInstance.Close()
}

// GetLogWriter returns stdout for an empty name, otherwise a rotating file writer.
func GetLogWriter(logName string) io.WriteCloser {
	if logName == "" {
		return os.Stdout
	}
	return logWriterMapInstance.GetLogWriter(logName)
}

// LogFile ...
func LogFile(name string) string {
	return filepath.Join(RootDir(), "logs", fmt.Sprintf("%s.log", name))
}

// NewLogger builds a logger writing to w.
func NewLogger(w io.Writer, level, prefix string) ItfLogger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.DebugLevel
	}
	core := zapcore.NewCore(getEncoder(prefix), zapcore.AddSync(w), lvl)
	return &zapSugarLogger{
		sugar:  zap.New(core, zap.WithCaller(true), zap.AddCallerSkip(1)).Sugar(),
		writer: w,
	}
}

// ZapLogger returns a logger named logName at the given level.
func ZapLogger(logName, level string) ItfLogger {
	return NewLogger(GetLogWriter(logName), level, logName)
}

func getEncoder(prefix string) zapcore.Encoder {
	if prefix == "" {
		prefix = "http"
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(fmt.Sprintf("[%s] ", strings.ToUpper(prefix)) + t.Format("2006-01-02 15:04:05.000") + " ")
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func newLumberJackWriter(name string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   name,
		MaxSize:    2,
		MaxBackups: 5,
		MaxAge:     3,
		Compress:   false,
		LocalTime:  true,
	}
}
