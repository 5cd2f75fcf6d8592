package config

import (
	"io"
	"time"
)

// TimeConfig defines helpers for retrieving time-based configuration values.
type TimeConfig interface {
	// GetSecond retrieves the value for key as a number of seconds.
	GetSecond(key string) time.Duration

	// GetMinute retrieves the value for key as a number of minutes.
	GetMinute(key string) time.Duration
}

// Config defines a set of methods for retrieving configuration values of various types.
// Missing keys resolve to the zero value of the requested type; callers apply their own
// fallbacks.
type Config interface {
	io.Closer
	TimeConfig

	// GetBool retrieves the value for key as a bool.
	GetBool(key string) bool

	// GetInt retrieves the value for key as an int.
	GetInt(key string) int

	// GetInt64 retrieves the value for key as an int64.
	GetInt64(key string) int64

	// GetFloat64 retrieves the value for key as a float64.
	GetFloat64(key string) float64

	// GetString retrieves the value for key as a string.
	GetString(key string) string

	// GetBinary retrieves the value for key decoded from base64.
	GetBinary(key string) []byte

	// GetArray retrieves the value for key stored as <element1>,<element2>,...
	// Empty elements are dropped.
	GetArray(key string) []string

	// GetList retrieves the value for key split by sep. Empty elements are dropped.
	GetList(key, sep string) []string

	// GetMap retrieves the value for key stored as <key1>:<value1>,<key2>:<value2>,...
	GetMap(key string) map[string]string
}
