package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "veriledger/pkg/domain-errors"
)

type tenantRequest struct {
	Name string `json:"name"`
}

func (r *tenantRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *tenantRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type revokeRequest struct {
	CredentialID string `json:"credential_id"`
}

func (r *revokeRequest) Validate() error {
	if r.CredentialID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "credential_id is required")
	}
	return nil
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestDecode(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("decodes known fields", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"acme"}`))
		w := httptest.NewRecorder()

		req, ok := Decode[tenantRequest](w, r, logger)
		require.True(t, ok)
		assert.Equal(t, "acme", req.Name)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"acme","admin":"0x1"}`))
		w := httptest.NewRecorder()

		_, ok := Decode[tenantRequest](w, r, logger)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", errorBody(t, w)["error"])
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		w := httptest.NewRecorder()

		_, ok := Decode[tenantRequest](w, r, logger)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("normalizes before validating", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"  acme  "}`))
		w := httptest.NewRecorder()

		req, ok := DecodeAndPrepare[tenantRequest](w, r, logger)
		require.True(t, ok)
		assert.Equal(t, "acme", req.Name)
	})

	t.Run("plain validation error becomes validation_error", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"   "}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[tenantRequest](w, r, logger)
		assert.False(t, ok)
		body := errorBody(t, w)
		assert.Equal(t, "validation_error", body["error"])
		assert.Contains(t, body["error_description"], "name is required")
	})

	t.Run("domain error keeps its code", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[revokeRequest](w, r, logger)
		assert.False(t, ok)
		assert.Equal(t, "bad_request", errorBody(t, w)["error"])
	})
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		code   dErrors.Code
		status int
		body   string
	}{
		{dErrors.CodeUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{dErrors.CodeForbidden, http.StatusForbidden, "forbidden"},
		{dErrors.CodeNotFound, http.StatusNotFound, "not_found"},
		{dErrors.CodeDuplicateCredential, http.StatusConflict, "duplicate_credential"},
		{dErrors.CodeSessionAlreadyActive, http.StatusConflict, "session_already_active"},
		{dErrors.CodeInvalidStateTransition, http.StatusConflict, "invalid_state_transition"},
		{dErrors.CodeInternal, http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, dErrors.New(tc.code, "boom"))
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.body, errorBody(t, w)["error"])
		})
	}

	t.Run("internal errors hide their message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "pq: connection refused"))
		_, leaked := errorBody(t, w)["error_description"]
		assert.False(t, leaked)
	})

	t.Run("non-domain errors are internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
