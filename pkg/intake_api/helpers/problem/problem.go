package problem

type InvalidParam struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type ErrorDetail struct {
	In       string `json:"in"`
	Location string `json:"location"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

// APIError implements error + Problem Details (RFC 7807)
type APIError struct {
	Title  string        `json:"title"`
	Status int           `json:"status"`
	Errors []ErrorDetail `json:"errors,omitempty"`
}

func (e APIError) Error() string { return e.Title }

func NewBadRequest(location, detail string, params ...InvalidParam) APIError {
	return APIError{
		Title:  "Request validation failed",
		Status: 400,
		Errors: toErrorDetails(params, detail, "body", location, "bad_request"),
	}
}

// NewInvalidPayload signals a syntactically invalid body (malformed JSON).
// Client error, not retryable.
func NewInvalidPayload(detail string) APIError {
	return APIError{
		Title:  "Invalid payload",
		Status: 400,
		Errors: toErrorDetails(nil, detail, "body", "body", "invalid_payload"),
	}
}

// NewMissingField signals an absent or empty required field in the body.
func NewMissingField(field string) APIError {
	return APIError{
		Title:  "Missing required field",
		Status: 400,
		Errors: toErrorDetails(nil, "Missing "+field+" in payload", "body", field, "missing_field"),
	}
}

func NewNotFound(location, detail string, params ...InvalidParam) APIError {
	return APIError{
		Title:  "Resource Not Found",
		Status: 404,
		Errors: toErrorDetails(params, detail, "path", location, "not_found"),
	}
}

// NewDecryptionFailed signals a bad key or corrupt envelope. Client error;
// distinct from persistence faults that happen after a successful decrypt.
func NewDecryptionFailed(detail string) APIError {
	return APIError{
		Title:  "Decryption failed",
		Status: 422,
		Errors: toErrorDetails(nil, detail, "body", "encryptedContent", "decryption_failed"),
	}
}

// NewStoreUnavailable signals a transport/auth/store-side fault on the object
// store. Server error, safe to retry externally.
func NewStoreUnavailable(detail string) APIError {
	return APIError{
		Title:  "Object store unavailable",
		Status: 502,
		Errors: toErrorDetails(nil, detail, "", "", "store_unavailable"),
	}
}

// NewPersistenceFailed signals a database write fault after earlier workflow
// steps already took effect. Earlier side effects are not rolled back here.
func NewPersistenceFailed(detail string) APIError {
	return APIError{
		Title:  "Persistence failed",
		Status: 500,
		Errors: toErrorDetails(nil, detail, "", "", "persistence_failed"),
	}
}

func NewInternalServerError(detail string) APIError {
	return APIError{
		Title:  "Internal Server Error",
		Status: 500,
		Errors: toErrorDetails(nil, detail, "", "", "internal_error"),
	}
}

func toErrorDetails(params []InvalidParam, fallbackDetail, fallbackIn, fallbackLocation, fallbackCode string) []ErrorDetail {
	if len(params) == 0 {
		if fallbackDetail == "" {
			return nil
		}
		return []ErrorDetail{{
			In:       fallbackIn,
			Location: fallbackLocation,
			Code:     fallbackCode,
			Detail:   fallbackDetail,
		}}
	}
	out := make([]ErrorDetail, 0, len(params))
	for _, p := range params {
		out = append(out, ErrorDetail{
			In:       "body",
			Location: p.Name,
			Code:     p.Name,
			Detail:   p.Reason,
		})
	}
	return out
}
