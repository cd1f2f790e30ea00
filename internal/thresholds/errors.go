package thresholds

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching against a *ConfigError
var (
	ErrFileRead         = errors.New("failed to read config file")
	ErrParse            = errors.New("failed to parse config file")
	ErrInvalidThreshold = errors.New("invalid threshold value")
)

// ErrorKind classifies a configuration failure
type ErrorKind int

const (
	KindFileRead ErrorKind = iota + 1
	KindParse
	KindInvalidThreshold
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindFileRead:
		return ErrFileRead
	case KindParse:
		return ErrParse
	case KindInvalidThreshold:
		return ErrInvalidThreshold
	default:
		return nil
	}
}

// ConfigError is returned by every loading function in this package
type ConfigError struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	prefix := "config error"
	if s := e.Kind.sentinel(); s != nil {
		prefix = s.Error()
	}

	switch {
	case e.Reason != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", prefix, e.Reason, e.Err)
	case e.Reason != "":
		return fmt.Sprintf("%s: %s", prefix, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	default:
		return prefix
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind
func (e *ConfigError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func invalid(reason string) error {
	return &ConfigError{Kind: KindInvalidThreshold, Reason: reason}
}

func readError(path string, err error) error {
	return &ConfigError{Kind: KindFileRead, Reason: path, Err: err}
}

func parseError(reason string, err error) error {
	return &ConfigError{Kind: KindParse, Reason: reason, Err: err}
}
