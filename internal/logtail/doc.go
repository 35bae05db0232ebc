// Package logtail reads the tail of folio's own log file for the Log view.
//
// Read keeps a ring buffer of the last N lines, so memory use is bounded by N
// rather than by file size. Parse splits a charmbracelet/log text line into
// timestamp, level, component prefix, message and key=value fields so the UI
// can colour each part; Filter narrows a tail by minimum level and substring.
//
//	lines, err := logtail.Read(cfg.LogPath(), 400)
//	if err != nil {
//		return err
//	}
//	for _, e := range logtail.Filter(lines, logtail.LevelWarn, "breaker") {
//		fmt.Println(e.Timestamp, e.Level, e.Message)
//	}
package logtail
