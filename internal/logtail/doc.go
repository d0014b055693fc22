// Package logtail reads the tail of lumen's own log file for the in-app log
// overlay.
//
// # Reading
//
// Read keeps a ring buffer of maxLines entries while scanning the file once,
// so memory stays proportional to the number of lines shown rather than the
// size of the file:
//
//	lines, err := logtail.Read(cfg.Log.File, 200)
//
// A file that does not exist yet yields no lines and no error. A non-positive
// maxLines returns every line.
//
// # Levels
//
// ParseLevel recognizes both zerolog output formats the client can write:
//
//	10:04:05 WRN settings write failed error="connection refused"
//	{"level":"warn","message":"settings write failed"}
//
// The UI uses the level to color each line. Lines with no recognizable level
// come back as LevelUnknown and are drawn in the default text color.
package logtail
