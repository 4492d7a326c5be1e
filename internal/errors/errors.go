package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/hekate/internal/logger"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// UserError carries the static message shown to the user alongside the
// underlying cause, which is only ever logged.
type UserError struct {
	Message string
	Cause   error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

// Wrap logs err and replaces its text with the user-facing message. Errors
// that already carry a user message are returned unchanged.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var ue *UserError
	if stderrors.As(err, &ue) {
		return err
	}
	logger.Error(message, "error", err)
	return &UserError{Message: message, Cause: err}
}

// UserMessage returns the message to show for err, or fallback when err does
// not carry one.
func UserMessage(err error, fallback string) string {
	var ue *UserError
	if stderrors.As(err, &ue) {
		return ue.Message
	}
	return fallback
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
