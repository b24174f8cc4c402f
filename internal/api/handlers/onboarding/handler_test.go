package onboarding

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"Regatta/internal/api/middleware"
	"Regatta/internal/core/onboarding"
)

const testUserID = "11111111-1111-4111-8111-111111111111"

type mockOnboardingService struct {
	mock.Mock
}

func (m *mockOnboardingService) Complete(ctx context.Context, userID string, in onboarding.Input) (*onboarding.Run, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*onboarding.Run), args.Error(1)
}

func (m *mockOnboardingService) GetRun(ctx context.Context, userID, runID string) (*onboarding.Run, error) {
	args := m.Called(ctx, userID, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*onboarding.Run), args.Error(1)
}

func (m *mockOnboardingService) ContinueAnyway(ctx context.Context, userID, runID string) (*onboarding.Run, error) {
	args := m.Called(ctx, userID, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*onboarding.Run), args.Error(1)
}

func serve(h *Handler, method, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Post("/onboarding", h.HandleComplete)
	r.Post("/onboarding/runs/{runID}/continue", h.HandleContinue)

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req = req.WithContext(middleware.SetTestUserID(req.Context(), testUserID))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleComplete_FailedStepsStill200(t *testing.T) {
	svc := new(mockOnboardingService)
	svc.On("Complete", mock.Anything, testUserID, onboarding.Input{BoatName: "Wind Dancer", SeedSampleData: true}).Return(&onboarding.Run{
		ID:    "run-1",
		State: onboarding.RunSuccess,
		Steps: []onboarding.StepResult{
			{Step: onboarding.StepCreateBoat, Status: onboarding.StatusFailed, Error: "boom"},
			{Step: onboarding.StepCompleteOnboarding, Status: onboarding.StatusOK},
		},
	}, nil)

	w := serve(NewHandler(svc), http.MethodPost, "/onboarding", `{"boatName":"Wind Dancer","seedSampleData":true}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"failed"`)
}

func TestHandleContinue_ErrorMapping(t *testing.T) {
	svc := new(mockOnboardingService)
	svc.On("ContinueAnyway", mock.Anything, testUserID, "run-1").Return(nil, onboarding.ErrInvalidTransition)
	svc.On("ContinueAnyway", mock.Anything, testUserID, "run-2").Return(nil, onboarding.ErrRunNotFound)

	assert.Equal(t, http.StatusConflict, serve(NewHandler(svc), http.MethodPost, "/onboarding/runs/run-1/continue", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(NewHandler(svc), http.MethodPost, "/onboarding/runs/run-2/continue", "").Code)
}
