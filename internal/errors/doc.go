// Package errors provides error handling conventions for the tracelog CLI.
//
// It re-exports the wrapping helpers of github.com/cockroachdb/errors
// ([New], [Newf], [Wrap], [Is], [As], ...) so that internal packages import a
// single errors package, and adds sentinel errors and an [ExitError] type for
// exit code handling.
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid flag, level or config file)
//   - ExitSystem (2): System-related error (I/O, permissions, etc.)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion:
//
//	err := errors.NewUserError(errors.ErrInvalidConfig, "Check your config file")
//	os.Exit(errors.ExitCode(err))
package errors
