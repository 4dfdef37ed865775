package generate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/middlewarectx"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/llm"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/services/generation"
)

// MockService реализует интерфейс generate.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Generate(ctx context.Context, user *models.User, req generation.GenerateRequest) (*generation.Result, error) {
	args := m.Called(ctx, user, req)
	if res := args.Get(0); res != nil {
		return res.(*generation.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) FreeLimit() int {
	return 3
}

func TestGenerateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	user := &models.User{UID: "u-1", Email: "pastor@example.com"}

	tests := []struct {
		name           string
		user           *models.User
		data           map[string]any
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная генерация",
			user: user,
			data: map[string]any{"input": "Faith", "mode": "sermon"},
			setupMock: func(m *MockService) {
				m.On("Generate", mock.Anything, user, mock.MatchedBy(func(req generation.GenerateRequest) bool {
					return req.Input == "Faith" && req.Mode == "sermon"
				})).Return(&generation.Result{
					Content:            "# Sermon",
					Usage:              &llm.Completion{PromptTokens: 120, CompletionTokens: 380, TotalTokens: 500},
					TotalUsage:         1,
					RemainingCreations: 2,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"totalUsage":1`,
		},
		{
			name: "режим по умолчанию sermon",
			user: user,
			data: map[string]any{"input": "Hope"},
			setupMock: func(m *MockService) {
				m.On("Generate", mock.Anything, user, mock.MatchedBy(func(req generation.GenerateRequest) bool {
					return req.Mode == "sermon"
				})).Return(&generation.Result{Content: "# Sermon"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name: "исчерпанная квота даёт 403 с флагом",
			user: user,
			data: map[string]any{"input": "Faith"},
			setupMock: func(m *MockService) {
				m.On("Generate", mock.Anything, user, mock.Anything).
					Return(nil, &generation.LimitReachedError{TotalUsage: 3})
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"limitReached":true`,
		},
		{
			name: "ошибка провайдера даёт 500 без деталей",
			user: user,
			data: map[string]any{"input": "Faith"},
			setupMock: func(m *MockService) {
				m.On("Generate", mock.Anything, user, mock.Anything).
					Return(nil, errors.New("upstream exploded"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"generation failed"`,
		},
		{
			name:           "без пользователя в контексте 401",
			user:           nil,
			data:           map[string]any{"input": "Faith"},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/generate", nil)
			ctx := req.Context()
			if tt.user != nil {
				ctx = context.WithValue(ctx, middlewarectx.UserKey, tt.user)
			}
			ctx = context.WithValue(ctx, middlewarectx.DataKey, tt.data)
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())
			if tt.expectedStatus == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "upstream exploded")
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestGenerateHandlerSubscriberSnapshot(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	user := &models.User{UID: "u-1", Email: "pastor@example.com"}

	mockService := new(MockService)
	mockService.On("Generate", mock.Anything, user, mock.Anything).Return(&generation.Result{
		Content:               "# Sermon",
		Usage:                 &llm.Completion{PromptTokens: 100, CompletionTokens: 412, TotalTokens: 512},
		HasActiveSubscription: true,
	}, nil)

	handler := New(logger, mockService)

	req := httptest.NewRequest(http.MethodPost, "/generate", nil)
	ctx := context.WithValue(req.Context(), middlewarectx.UserKey, user)
	ctx = context.WithValue(ctx, middlewarectx.DataKey, map[string]any{"input": "Faith"})
	req = req.WithContext(ctx)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, `"content":"# Sermon"`)
	assert.Contains(t, body, `"hasActiveSubscription":true`)
	assert.Contains(t, body, `"totalUsage":"unlimited"`)
	assert.Contains(t, body, `"remainingCreations":"unlimited"`)
	assert.Contains(t, body, `"total_tokens":512`)
}
