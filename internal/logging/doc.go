// Package logging wires log/slog with clipforge conventions: a human-readable
// console handler, a JSON handler, multi-destination output (stdout plus the
// configured log file), and helpers for component-scoped loggers and typed
// attributes.
package logging
