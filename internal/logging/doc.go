// Package logging configures slog output for the archiver.
//
// It provides a console handler that renders compact key=value lines, a JSON
// handler for machine consumption, and small helpers (NewNop,
// NewComponentLogger, Attr aliases) so packages can log without importing
// slog directly. Components tag themselves with a "component" attribute which
// the console handler folds into the message prefix.
package logging
