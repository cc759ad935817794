// Package tracelog is a small leveled logger for libraries.
//
// Each Logger tags its lines with a module name and filters calls against a
// minimum level: its own, if one was pinned, or else the current default held
// by a [Defaults]. Levels run from FATAL (0, most severe) to TRACE (5); a call
// is written when its level is less than or equal to the minimum.
//
// # Basic Usage
//
//	tracelog.SetGlobalDefaults("mylib", "INFO")
//
//	log := tracelog.New("client")
//	log.Info("connected to %s", addr)
//	log.Debug("dropped") // below INFO
//
//	sub := log.SubModule("pool", tracelog.WithLevel("TRACE"))
//	sub.Trace("%j", stats) // written as "mylib [TRACE] client>pool: {...}"
//
// FATAL and ERROR lines go to the error sink (os.Stderr by default); the
// others go to the informational sink (os.Stdout).
//
// # Formats
//
// Text lines look like
//
//	mylib [INFO] client: connected to db:5432
//
// and are coloured when the sink is a terminal. With [WithJSON] each line is a
// JSON object with the fields level, logger_name, module_name, message and
// @timestamp.
//
// # Templates
//
// Messages are printf-style templates rendered by [Sprintf]: %s stringifies,
// %j marshals JSON, and the usual numeric verbs are available. Missing
// arguments leave the placeholder in place; logging never fails.
//
// # slog
//
// [NewHandler] adapts a Logger to [log/slog].
//
// # Testing
//
// Use [NewDefaults] with [WithOutput] to capture lines, or [ForTest] to send
// them to the test log:
//
//	d := tracelog.ForTest(t, "mylib")
//	log := tracelog.New("client", tracelog.WithDefaults(d))
package tracelog
