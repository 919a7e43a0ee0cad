package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/rdswitchboard/doinorm/internal/graph"
	"github.com/rdswitchboard/doinorm/internal/normalize"
)

// Exit codes for the CLI. Every failure exits with ExitFailure.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// Error codes reported in JSON error responses.
const (
	ErrCodeGeneric   = "E001" // Generic/unknown error
	ErrCodeLayout    = "E002" // Store directory is not a valid store
	ErrCodeOpen      = "E003" // Store failed to open
	ErrCodeScanFault = "E004" // Per-node failure, transaction rolled back
	ErrCodeArgs      = "E005" // Invalid arguments or flags
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ErrorCode classifies an error for JSON responses.
func ErrorCode(err error) string {
	var (
		layoutErr *graph.StoreLayoutError
		openErr   *graph.StoreOpenError
		fault     *normalize.ScanFault
		exitErr   *ExitError
	)
	switch {
	case errors.As(err, &layoutErr):
		return ErrCodeLayout
	case errors.As(err, &openErr):
		return ErrCodeOpen
	case errors.As(err, &fault):
		return ErrCodeScanFault
	case errors.As(err, &exitErr) && exitErr.Err == nil:
		return ErrCodeArgs
	default:
		return ErrCodeGeneric
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`    // "E001", "E002", etc.
	Message string `json:"message"` // human-readable message
}

// Success outputs a successful result in the configured format.
// In text mode data is printed with its String method if it has one.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error response. Text mode prints nothing; the error is
// reported on stderr by the caller.
func (f *OutputFormatter) Error(err error) error {
	if f.Format != "json" {
		return nil
	}
	return json.NewEncoder(f.Writer).Encode(CLIResponse{
		Status: "error",
		Error: &CLIError{
			Code:    ErrorCode(err),
			Message: err.Error(),
		},
	})
}

// resolveFormat turns "auto" into "text" when w is a terminal and "json"
// otherwise.
func resolveFormat(format string, w io.Writer) string {
	if format != "auto" {
		return format
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "text"
	}
	return "json"
}
