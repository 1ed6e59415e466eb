// Package log provides the logging interface of the mmgen SDK.
//
// The SDK accepts any implementation of [Logger], [Noop] disables logging
// and is used when none is configured. Services add a "svc" key to every
// line, and jobs a "job-id" key.
package log

import "github.com/elecmate/mmgen/internal/log"

// Logger is the interface that loggers must implement for the SDK.
type Logger = log.Logger

// Kv is a helper type for structured logging key-value pairs.
type Kv = log.Kv

// Noop is a logger that discards all log output.
var Noop = log.Noop
