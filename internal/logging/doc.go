// Package logging provides structured JSON logging for the Mealwise
// pipeline, built on Go's log/slog.
//
// # Logger
//
// [Logger] writes JSON lines to a rotating file inside the data directory
// (or to stderr when no directory is configured). Child loggers carry
// persistent attributes so every entry from a worker or about a record is
// tagged consistently:
//
//	log, err := logging.NewLogger(dataDir, "INFO", logging.DefaultRotationConfig())
//	wlog := log.WithComponent("worker").WithWorker("worker-2")
//	wlog.Info("task claimed", "record_id", task.RecordID)
//
// # Rotation
//
// [RotatingWriter] rotates the log file by size, keeping a configurable
// number of numbered backups with optional gzip compression. Rotation
// defaults come from [DefaultRotationConfig].
//
// # Aggregation
//
// [AggregateLogs] parses a data directory's log file back into [LogEntry]
// values; [FilterLogs] narrows them by level, time range, component, worker,
// or record; [ExportLogEntries] writes them out as JSON, text, or CSV. The
// logs subcommand is built on these helpers.
package logging
