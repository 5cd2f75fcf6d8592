// Package uid generates identifiers: UUIDv7 strings for token and correlation ids,
// snowflake numbers for row primary keys and ULIDs for externally visible references.
package uid

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates numeric identifiers.
type NumberID interface {
	Generate() int64
}
