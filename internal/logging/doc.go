// Package logging provides slog attribute helpers used across the codebase.
//
// Email addresses are PII: log lines carry hashed or domain-only forms of
// them, produced by AnonymizeEmail and friends, never the raw address.
package logging
