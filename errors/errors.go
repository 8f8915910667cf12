package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode identifies an application error category
type ErrorCode string

const (
	ErrorCode_HTTP_OK          ErrorCode = "OK"
	ErrorCode_INTERNAL         ErrorCode = "INTERNAL"
	ErrorCode_INVALID_ARGUMENT ErrorCode = "INVALID_ARGUMENT"
	ErrorCode_NOT_FOUND        ErrorCode = "NOT_FOUND"
	ErrorCode_INVALID_PAYLOAD  ErrorCode = "INVALID_PAYLOAD"

	// Generation pipeline errors
	ErrorCode_GENERATION_NOT_FOUND ErrorCode = "GENERATION_NOT_FOUND"
	ErrorCode_VIDEO_NOT_READY      ErrorCode = "VIDEO_NOT_READY"
	ErrorCode_PROVIDER_FAILED      ErrorCode = "PROVIDER_FAILED"
	ErrorCode_MALFORMED_SCRIPT     ErrorCode = "MALFORMED_SCRIPT"
	ErrorCode_ASSET_FAILED         ErrorCode = "ASSET_GENERATION_FAILED"
	ErrorCode_MISSING_ASSET        ErrorCode = "MISSING_ASSET"
	ErrorCode_ASSEMBLY_FAILED      ErrorCode = "ASSEMBLY_FAILED"

	// Integration errors
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = "INTEGRATION_STORAGE_FAILED"
	ErrorCode_INTEGRATION_QUEUE_FAILED   ErrorCode = "INTEGRATION_QUEUE_FAILED"
	ErrorCode_DB_QUERY_FAILED            ErrorCode = "DB_QUERY_FAILED"
)

// String returns the code as a plain string
func (c ErrorCode) String() string {
	return string(c)
}

// AppError is the custom error type for the application
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying error for errors.Is/As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid payload",
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

// Generation Errors

func ErrGenerationNotFound(id string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_GENERATION_NOT_FOUND,
		Message:  "Generation not found",
	}.WithDetail("generation_id", id)
}

func ErrVideoNotReady(id, status string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_VIDEO_NOT_READY,
		Message:  "Video file is not available for this generation",
	}.WithDetail("generation_id", id).WithDetail("status", status)
}

// ErrProviderFailed reports a failed call to an external generation provider.
// The script stage surfaces this to the pipeline; image/audio stages absorb it
// via fallback synthesis.
func ErrProviderFailed(service string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_PROVIDER_FAILED,
		Message:  fmt.Sprintf("Provider call failed: %s", service),
	}
}

func ErrMalformedScript(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_MALFORMED_SCRIPT,
		Message:  "Script response could not be parsed",
	}
}

// ErrAssetGenerationFailed means even the local fallback synthesizer failed.
// There is no further fallback; the pipeline aborts.
func ErrAssetGenerationFailed(kind string, segmentID int, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_ASSET_FAILED,
		Message:  fmt.Sprintf("%s generation completely failed for segment %d", kind, segmentID),
	}.WithDetail("segment_id", fmt.Sprintf("%d", segmentID))
}

func ErrMissingAsset(kind string, segmentID int) AppError {
	return AppError{
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_MISSING_ASSET,
		Message:  fmt.Sprintf("Missing %s asset for segment %d", kind, segmentID),
	}.WithDetail("segment_id", fmt.Sprintf("%d", segmentID))
}

func ErrAssemblyFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_ASSEMBLY_FAILED,
		Message:  "Video assembly failed",
	}
}

// Integration Errors

func ErrStorageFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTEGRATION_STORAGE_FAILED,
		Message:  fmt.Sprintf("Storage operation failed: %s", operation),
	}
}

func ErrQueueFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTEGRATION_QUEUE_FAILED,
		Message:  fmt.Sprintf("Queue operation failed: %s", operation),
	}
}

func ErrDBQueryFailed(query string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_QUERY_FAILED,
		Message:  "Database query failed",
	}.WithDetail("query", query)
}
