// Package finder implements parallel, content-aware file search.
//
// A search walks a root directory, keeps the files whose base name satisfies
// the name pattern, and scans each of them on a bounded worker pool. Every
// line that satisfies the content pattern becomes a Match carrying up to
// Request.Context preceding lines.
//
// Files at or below Request.MapThreshold are read through a buffered reader.
// Larger files are memory mapped and split in place. Both strategies produce
// the same lines, so the strategy never changes the result.
//
// Only invalid patterns, invalid requests and an inaccessible root fail a
// search. A file that cannot be opened, mapped or decoded is skipped and
// counted in Stats.FilesSkipped.
package finder
