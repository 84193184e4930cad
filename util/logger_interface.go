package util

import (
	"io"
)

// ItfLogger is the leveled logger used across the module.
// Debugf, Warnf and Errorf make it a resty.Logger.
type ItfLogger interface {
	Close() error
	Writer() io.Writer
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(s string, i ...interface{})
	Infof(s string, i ...interface{})
	Warnf(s string, i ...interface{})
	Errorf(s string, i ...interface{})
}
