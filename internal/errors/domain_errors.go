package errors

import (
	"fmt"
)

// UnsupportedFormatError is returned when an uploaded file has an
// extension outside the recognized set. The message matches what the
// user sees in the UI.
type UnsupportedFormatError struct {
	Extension string
}

// Error implements the error interface
func (e *UnsupportedFormatError) Error() string {
	return "Unsupported file type. Upload CSV, Excel, JSON, Parquet, PDF, TXT, or TSV."
}

// NewUnsupportedFormatError creates an unsupported-format error for the
// given file extension
func NewUnsupportedFormatError(extension string) *UnsupportedFormatError {
	return &UnsupportedFormatError{Extension: extension}
}

// EmptyResultError is returned when ingestion produced zero rows. The
// pipeline halts before cleaning; the user must verify the input.
type EmptyResultError struct {
	Filename string
}

// Error implements the error interface
func (e *EmptyResultError) Error() string {
	return "No rows were extracted from this file. Please verify your input format."
}

// NewEmptyResultError creates an empty-result error for the given file
func NewEmptyResultError(filename string) *EmptyResultError {
	return &EmptyResultError{Filename: filename}
}

// CloudExportError wraps a failure while uploading analysis outputs to
// object storage. The underlying error is surfaced verbatim to the user
// and never retried.
type CloudExportError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *CloudExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cloud export failed during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cloud export failed during %s", e.Op)
}

// Unwrap allows errors.Is and errors.As to reach the transport error
func (e *CloudExportError) Unwrap() error {
	return e.Err
}

// NewCloudExportError creates a cloud export error
func NewCloudExportError(op string, err error) *CloudExportError {
	return &CloudExportError{Op: op, Err: err}
}
