// Package logging configures the slog logger shared by every component.
package logging
