// Package logging provides structured logging for devparam.
//
// It wraps the standard library's log/slog with configuration-driven
// format and level selection plus default service fields. Components
// that need logging accept the Logger (or a narrow interface of it)
// rather than constructing their own.
package logging
