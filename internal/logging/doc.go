// Package logging configures log/slog for fastfind.
//
// Normal runs log warnings and errors to stderr as text. With --debug, JSON
// logs at debug level are also written to a size-rotated file under
// ~/.fastfind/logs/, including every file a search skipped and why.
// `fastfind logs` reads that file back.
package logging
