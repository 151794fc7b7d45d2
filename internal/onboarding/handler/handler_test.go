package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"veriledger/internal/onboarding/handler/mocks"
	"veriledger/internal/onboarding/models"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/requestcontext"
)

// OnboardingHandlerSuite covers step routing and payload mapping.
//
// Justification: step names arrive in the path and document lists in the
// body; both are translated here before the state machine sees them.
type OnboardingHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestOnboardingHandlerSuite(t *testing.T) {
	suite.Run(t, new(OnboardingHandlerSuite))
}

func (s *OnboardingHandlerSuite) SetupTest() {
	s.service = mocks.NewMockService(gomock.NewController(s.T()))
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
	s.router.Route("/admin", h.RegisterAdmin)
}

func (s *OnboardingHandlerSuite) do(method, path string, caller id.Identity, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if caller != "" {
		req = req.WithContext(requestcontext.WithCaller(req.Context(), caller))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func session(step models.Step) *models.Session {
	started := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return &models.Session{
		ID:          id.NewSessionID(),
		Subject:     "0xalice",
		TenantID:    "acme",
		CurrentStep: step,
		Active:      true,
		StartedAt:   started,
		UpdatedAt:   started,
	}
}

func (s *OnboardingHandlerSuite) TestStart() {
	s.Run("subject defaults to the caller", func() {
		s.service.EXPECT().StartSession(gomock.Any(), id.Identity("0xalice"), id.Identity("0xalice"), id.TenantID("acme")).
			Return(session(models.StepRegistration), nil)
		w := s.do(http.MethodPost, "/onboarding/sessions", "0xalice", map[string]any{
			"tenant_id": "acme",
		})
		s.Require().Equal(http.StatusCreated, w.Code)
		var resp SessionResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("REGISTRATION", resp.CurrentStep)
		s.Equal([]string{}, resp.CompletedSteps)
	})

	s.Run("second active session conflicts", func() {
		s.service.EXPECT().StartSession(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeSessionAlreadyActive, "session already active"))
		w := s.do(http.MethodPost, "/onboarding/sessions", "0xalice", map[string]any{})
		s.Equal(http.StatusConflict, w.Code)
	})

	s.Run("anonymous callers are rejected", func() {
		w := s.do(http.MethodPost, "/onboarding/sessions", "", map[string]any{})
		s.Equal(http.StatusUnauthorized, w.Code)
	})
}

func (s *OnboardingHandlerSuite) TestExecuteStep() {
	s.Run("step name is case-insensitive and documents are mapped", func() {
		s.service.EXPECT().
			ExecuteStep(gomock.Any(), id.Identity("0xalice"), id.Identity("0xalice"), models.StepDocumentUpload, gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ id.Identity, _ models.Step, p models.Payload) (*models.Session, error) {
				s.Equal([]string{"0xabc"}, p.DocumentHashes)
				s.Equal([]string{"passport"}, p.DocumentTypes)
				return session(models.StepFinalVerification), nil
			})
		w := s.do(http.MethodPost, "/onboarding/sessions/0xalice/steps/document_upload", "0xalice", map[string]any{
			"document_hashes": []string{"0xabc"},
			"document_types":  []string{"passport"},
		})
		s.Require().Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), `"current_step":"FINAL_VERIFICATION"`)
	})

	s.Run("unknown step is a bad request", func() {
		w := s.do(http.MethodPost, "/onboarding/sessions/0xalice/steps/teleport", "0xalice", map[string]any{})
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("out of order step conflicts", func() {
		s.service.EXPECT().ExecuteStep(gomock.Any(), gomock.Any(), gomock.Any(), models.StepEligibilityCheck, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInvalidStateTransition, "step is out of order"))
		w := s.do(http.MethodPost, "/onboarding/sessions/0xalice/steps/ELIGIBILITY_CHECK", "0xalice", map[string]any{
			"fields": map[string]string{"country": "US"},
		})
		s.Equal(http.StatusConflict, w.Code)
	})
}

func (s *OnboardingHandlerSuite) TestTermination() {
	s.Run("cancel acts on the caller", func() {
		failed := session(models.StepFailed)
		failed.Active = false
		failed.FailureReason = models.ReasonCancelled
		s.service.EXPECT().CancelSession(gomock.Any(), id.Identity("0xalice")).Return(failed, nil)
		w := s.do(http.MethodPost, "/onboarding/cancel", "0xalice", nil)
		s.Require().Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), `"failure_reason":"cancelled"`)
	})

	s.Run("force-fail requires a reason", func() {
		w := s.do(http.MethodPost, "/onboarding/sessions/0xalice/force-fail", "0xowner", map[string]any{
			"reason": "  ",
		})
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("force-fail passes the reason", func() {
		s.service.EXPECT().ForceFail(gomock.Any(), id.Identity("0xowner"), id.Identity("0xalice"), "sanctions hit").
			Return(session(models.StepFailed), nil)
		w := s.do(http.MethodPost, "/onboarding/sessions/0xalice/force-fail", "0xowner", map[string]any{
			"reason": "sanctions hit",
		})
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("force-complete by a non-operator is forbidden", func() {
		s.service.EXPECT().ForceComplete(gomock.Any(), id.Identity("0xmallory"), id.Identity("0xalice")).
			Return(nil, dErrors.New(dErrors.CodeForbidden, "caller is not authorized"))
		w := s.do(http.MethodPost, "/onboarding/sessions/0xalice/force-complete", "0xmallory", nil)
		s.Equal(http.StatusForbidden, w.Code)
	})
}

func (s *OnboardingHandlerSuite) TestReads() {
	s.Run("get returns the latest session", func() {
		s.service.EXPECT().GetSession(gomock.Any(), id.Identity("0xalice")).Return(session(models.StepRegistration), nil)
		w := s.do(http.MethodGet, "/onboarding/sessions/0xALICE", "", nil)
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("session data is served under the admin mount", func() {
		sid := id.NewSessionID()
		s.service.EXPECT().SessionData(gomock.Any(), sid).Return(map[string]string{"country": "US"}, nil)
		w := s.do(http.MethodGet, "/admin/sessions/"+sid.String()+"/data", "", nil)
		s.Require().Equal(http.StatusOK, w.Code)
		s.JSONEq(`{"session_id":"`+sid.String()+`","fields":{"country":"US"}}`, w.Body.String())
	})

	s.Run("malformed session id is rejected", func() {
		w := s.do(http.MethodGet, "/admin/sessions/not-a-uuid/data", "", nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}
