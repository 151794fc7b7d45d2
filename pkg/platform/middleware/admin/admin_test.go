package admin

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"
)

// AdminMiddlewareSuite covers the operator token guard.
//
// Justification: a wrong or missing token must never reach the handler,
// including when no token is configured.
type AdminMiddlewareSuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestAdminMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AdminMiddlewareSuite))
}

func (s *AdminMiddlewareSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *AdminMiddlewareSuite) serve(expected, token, actor string) (int, bool, string) {
	reached := false
	var seenActor string
	handler := RequireToken(expected, s.logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		seenActor = ActorID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/admin/audit", nil)
	if token != "" {
		req.Header.Set(HeaderToken, token)
	}
	if actor != "" {
		req.Header.Set(HeaderActorID, actor)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w.Code, reached, seenActor
}

func (s *AdminMiddlewareSuite) TestTokenValidation() {
	s.Run("correct token passes with actor", func() {
		code, reached, actor := s.serve("ops-secret", "ops-secret", "alice@ops")
		s.Equal(http.StatusOK, code)
		s.True(reached)
		s.Equal("alice@ops", actor)
	})

	s.Run("wrong token is rejected", func() {
		code, reached, _ := s.serve("ops-secret", "ops-secreT", "")
		s.Equal(http.StatusUnauthorized, code)
		s.False(reached)
	})

	s.Run("missing token is rejected", func() {
		_, reached, _ := s.serve("ops-secret", "", "")
		s.False(reached)
	})

	s.Run("unconfigured token rejects everything", func() {
		_, reached, _ := s.serve("", "", "")
		s.False(reached)
	})
}
