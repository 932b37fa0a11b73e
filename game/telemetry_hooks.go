package game

import (
	"log/slog"

	"github.com/pthm-cable/magfield/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Session) flushTelemetry() {
	if !s.collector.ShouldFlush(s.engine.Frame()) {
		return
	}

	stats := s.collector.Flush(s.sample(true))
	profile := s.profiler.Profile()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		profile.Log()
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(profile, stats.WindowEndFrame); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range s.bookmarkDetector.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}

		if s.outputManager != nil {
			if err := s.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}

		if s.snapshotDir != "" {
			s.saveSnapshot(&bm)
		}
	}
}

// saveSnapshot writes the current scene to the snapshot directory.
func (s *Session) saveSnapshot(bookmark *telemetry.Bookmark) {
	if s.snapshotDir == "" {
		slog.Warn("snapshot requested without -snapshot-dir")
		return
	}

	snapshot := telemetry.NewSnapshot(s.engine, s.rngSeed, bookmark)
	path, err := telemetry.SaveSnapshot(snapshot, s.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "frame", s.engine.Frame())
}
