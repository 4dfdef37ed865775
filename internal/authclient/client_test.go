package authclient

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/config"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	str, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return str
}

func newTestClient(t *testing.T, providerStatus int, providerBody string) *Client {
	t.Helper()
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		w.WriteHeader(providerStatus)
		_, _ = w.Write([]byte(providerBody))
	}))
	t.Cleanup(provider.Close)

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(config.AuthProvider{
		AuthBaseURL: provider.URL,
		AuthAPIKey:  "anon-key",
		AuthTimeout: 2 * time.Second,
	}, log)
}

func TestAuthenticate(t *testing.T) {
	valid := signedToken(t, time.Now().Add(time.Hour))
	expired := signedToken(t, time.Now().Add(-time.Hour))

	tests := []struct {
		name           string
		authorization  string
		providerStatus int
		providerBody   string
		wantUser       bool
	}{
		{
			name:           "валидный токен",
			authorization:  "Bearer " + valid,
			providerStatus: http.StatusOK,
			providerBody:   `{"id":"user-1","email":"pastor@example.com"}`,
			wantUser:       true,
		},
		{
			name:           "нет заголовка",
			authorization:  "",
			providerStatus: http.StatusOK,
			providerBody:   `{"id":"user-1"}`,
			wantUser:       false,
		},
		{
			name:           "не bearer-схема",
			authorization:  "Basic abc",
			providerStatus: http.StatusOK,
			providerBody:   `{"id":"user-1"}`,
			wantUser:       false,
		},
		{
			name:           "мусор вместо jwt отклоняется локально",
			authorization:  "Bearer not-a-jwt",
			providerStatus: http.StatusOK,
			providerBody:   `{"id":"user-1"}`,
			wantUser:       false,
		},
		{
			name:           "просроченный токен отклоняется локально",
			authorization:  "Bearer " + expired,
			providerStatus: http.StatusOK,
			providerBody:   `{"id":"user-1"}`,
			wantUser:       false,
		},
		{
			name:           "провайдер отвечает 401",
			authorization:  "Bearer " + valid,
			providerStatus: http.StatusUnauthorized,
			providerBody:   `{"error":"invalid token"}`,
			wantUser:       false,
		},
		{
			name:           "провайдер отвечает пустым пользователем",
			authorization:  "Bearer " + valid,
			providerStatus: http.StatusOK,
			providerBody:   `{}`,
			wantUser:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.providerStatus, tt.providerBody)

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authorization != "" {
				r.Header.Set("Authorization", tt.authorization)
			}

			user := client.Authenticate(context.Background(), r)
			if tt.wantUser {
				require.NotNil(t, user)
				assert.Equal(t, "user-1", user.UID)
				assert.Equal(t, "pastor@example.com", user.Email)
			} else {
				assert.Nil(t, user)
			}
		})
	}
}
