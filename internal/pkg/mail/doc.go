// Package mail sends email messages.
//
// Use cases depend on the Mail interface and the provider-agnostic Message. SMTP
// delivery goes through gomail; the Log driver only records messages and is meant
// for local development.
package mail
