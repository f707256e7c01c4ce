package custom_error

import "fmt"

// DuplicateKeyError is returned when a record already exists for the IMEI
// the caller tried to register.
type DuplicateKeyError struct {
	Imei string
	code string // PostgreSQL error code (e.g., "23505")
}

func (e *DuplicateKeyError) Error() string {
	if e.code != "" {
		return fmt.Sprintf("record with IMEI %s already exists (code: %s)", e.Imei, e.code)
	}
	return fmt.Sprintf("record with IMEI %s already exists", e.Imei)
}

// NotFoundError is returned when no record exists for the given IMEI.
type NotFoundError struct {
	Imei string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no record found for IMEI %s", e.Imei)
}

// UnavailableError wraps a failure to reach the backing store. It is
// surfaced to the caller verbatim, no retries are attempted.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Validation reason codes. Field names the offending form field so the
// UI can highlight it.
const (
	ReasonMissingModel            = "MissingModel"
	ReasonInvalidImei             = "InvalidImei"
	ReasonMissingCounterpartyInfo = "MissingCounterpartyInfo"
)

type ValidationError struct {
	Reason string
	Field  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s (field: %s)", e.Reason, e.Field)
}

// UnrecognizedPayloadError is returned when a scanned barcode payload
// matches none of the supported shapes.
type UnrecognizedPayloadError struct {
	Payload string
}

func (e *UnrecognizedPayloadError) Error() string {
	return fmt.Sprintf("unrecognized scan payload: %q", e.Payload)
}

// WrapDBError maps PostgreSQL error codes onto the domain taxonomy.
func WrapDBError(imei, code string) error {
	switch code {
	case "23505":
		return &DuplicateKeyError{
			Imei: imei,
			code: code,
		}
	default:
		return fmt.Errorf("uncategorized database error with code %s for IMEI %s", code, imei)
	}
}
