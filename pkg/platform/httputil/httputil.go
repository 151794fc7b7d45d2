package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/requestcontext"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent, so an encoding error cannot change the status.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError translates domain errors into HTTP responses.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		response := map[string]string{
			"error": DomainCodeToHTTPCode(domainErr.Code),
		}
		if domainErr.Message != "" && domainErr.Code != dErrors.CodeInternal {
			response["error_description"] = domainErr.Message
		}
		WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), response)
		return
	}

	WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error": DomainCodeToHTTPCode(dErrors.CodeInternal),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeConflict, dErrors.CodeDuplicateCredential, dErrors.CodeSessionAlreadyActive, dErrors.CodeInvalidStateTransition:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to the error string of
// the JSON response.
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return "bad_request"
	case dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return "validation_error"
	case dErrors.CodeConflict:
		return "conflict"
	case dErrors.CodeDuplicateCredential:
		return "duplicate_credential"
	case dErrors.CodeSessionAlreadyActive:
		return "session_already_active"
	case dErrors.CodeInvalidStateTransition:
		return "invalid_state_transition"
	case dErrors.CodeUnauthorized:
		return "unauthorized"
	case dErrors.CodeForbidden:
		return "forbidden"
	case dErrors.CodeTimeout:
		return "timeout"
	default:
		return "internal_error"
	}
}

// RequireCaller extracts the caller identity resolved by the caller middleware.
func RequireCaller(ctx context.Context, logger *slog.Logger) (id.Identity, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		if logger != nil {
			logger.WarnContext(ctx, "request without caller identity",
				"request_id", requestcontext.RequestID(ctx))
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	return caller, nil
}

// WriteFailure logs a failed operation and writes the error. Client errors
// log at warn level, internal errors at error level.
func WriteFailure(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	if logger != nil {
		level := slog.LevelWarn
		if DomainCodeToHTTPStatus(codeOf(err)) >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(ctx, level, msg,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	WriteError(w, err)
}

func codeOf(err error) dErrors.Code {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return dErrors.CodeInternal
}

// ListResponse wraps collection responses so they can grow fields later.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewList builds a ListResponse, mapping each item with fn.
func NewList[S, T any](items []S, fn func(S) T) ListResponse[T] {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return ListResponse[T]{Items: out, Count: len(out)}
}
