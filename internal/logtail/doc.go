// Package logtail reads the end of shelf's log file and renders its zap
// JSON records for a terminal.
//
// Read scans the whole file but holds at most twice maxLines lines at a
// time. A missing file is not an error; it yields no lines.
//
// Parse and Format turn a production zap record such as
//
//	{"level":"warn","ts":1760000000.5,"logger":"watch","msg":"upload failed","file":"a.pdf","error":"status 500"}
//
// into
//
//	2025-10-09 08:53:20 WARN  [watch] upload failed error="status 500" file=a.pdf
//
// Lines that are not zap records pass through FormatLines unchanged.
package logtail
