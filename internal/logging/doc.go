// Package logging writes and reads the reparto run log.
//
// Every pipeline component reports through a [Logger], which emits one
// JSON line per entry via log/slog. The same package knows how to read
// those lines back: the logs command uses [AggregateLogs], [FilterLogs],
// and [ExportLogEntries] to answer questions about past runs without any
// external tooling.
//
// # Writing
//
// A Logger is bound to a log directory and appends to reparto.log
// inside it:
//
//	logger, err := logging.NewLogger(cfg.LogDir(), "info")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("roster loaded", "participants", 12)
//
// The With methods derive child loggers that stamp run context onto
// every entry they emit:
//
//	reqLog := logger.WithRequest("req-abc123").WithPhase("parsing")
//	reqLog.WithStrategy("tolerant").Info("items recovered", "count", 3)
//
// produces
//
//	{"time":"...","level":"INFO","msg":"items recovered","request_id":"req-abc123","phase":"parsing","strategy":"tolerant","count":3}
//
// Children share the parent's file. Closing any logger in the family
// closes the file for all of them.
//
// # Rotation
//
// [NewLoggerWithRotation] bounds the log's disk footprint. Once the
// active file passes RotationConfig.MaxSizeMB it is moved aside as
// reparto.log.1, older backups shift to .2, .3 and so on up to
// MaxBackups, and the oldest falls off the end. With Compress set,
// backups are stored gzipped as reparto.log.N.gz.
//
// # Reading back
//
// [AggregateLogs] parses the active log and every backup it finds next
// to it, gzipped or not, and returns the entries in timestamp order.
// [LogFilter] then narrows them down; all of its set fields must match:
//
//	entries, err := logging.AggregateLogs(cfg.LogDir())
//	if err != nil {
//	    return err
//	}
//	failed := logging.FilterLogs(entries, logging.LogFilter{
//	    Level:     "ERROR",
//	    RequestID: "req-abc123",
//	})
//
// [ExportLogEntries] writes a filtered set out as JSON, plain text, or
// CSV for sharing or spreadsheet work.
//
// # Levels
//
// The four levels are [LevelDebug], [LevelInfo], [LevelWarn], and
// [LevelError]. The Level given to NewLogger is a floor: entries below
// it are never written. [ParseLevel] normalizes user input and
// [ValidLevels] lists the accepted spellings, which the config
// validator and the logs command share.
//
// Tests and disabled-logging runs use [NopLogger], which swallows
// everything and needs no directory.
//
// All types here are safe for concurrent use.
package logging
