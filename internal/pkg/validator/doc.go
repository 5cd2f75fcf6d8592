// Package validator validates request structs with go-playground/validator and
// returns field errors keyed by their wire name with English messages.
//
// Custom tags: password (8-72 characters) and money (positive decimal string
// with at most two fractional digits).
package validator
