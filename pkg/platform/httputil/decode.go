package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/requestcontext"
)

// MaxBodyBytes caps every decoded request body.
const MaxBodyBytes = 1 << 20

// Validatable is implemented by request types that validate themselves.
type Validatable interface {
	Validate() error
}

// Normalizable is implemented by request types that trim or lower-case
// their fields before validation.
type Normalizable interface {
	Normalize()
}

// Decode reads a JSON body into T. Unknown fields are rejected. On failure
// it writes a bad_request response and returns false.
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	var req T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		logger.WarnContext(r.Context(), "failed to decode request body",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	return &req, true
}

// Prepare normalizes then validates req when it implements the interfaces.
func Prepare(req any) error {
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	if v, ok := req.(Validatable); ok {
		return v.Validate()
	}
	return nil
}

// DecodeAndPrepare decodes the body and runs Prepare on it. Domain errors
// from Validate keep their code; plain errors become validation errors.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	req, ok := Decode[T](w, r, logger)
	if !ok {
		return nil, false
	}

	if err := Prepare(req); err != nil {
		logger.WarnContext(r.Context(), "invalid request",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			WriteError(w, err)
		} else {
			WriteError(w, dErrors.New(dErrors.CodeValidation, err.Error()))
		}
		return nil, false
	}
	return req, true
}
