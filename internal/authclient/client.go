// Package authclient резолвит bearer-токен запроса в пользователя через
// внешний провайдер идентификации. Локального состояния сессий нет: каждый
// запрос — свежая проверка токена у провайдера, поэтому отозванный токен
// никогда не обслуживается. Любая ошибка проверки означает "не аутентифицирован",
// а не 5xx.
package authclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/config"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/lib/sl"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
)

// Client — HTTP-клиент провайдера идентификации.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

// New создает клиент по настройкам провайдера.
func New(cfg config.AuthProvider, log *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.AuthBaseURL, "/"),
		apiKey:     cfg.AuthAPIKey,
		httpClient: &http.Client{Timeout: cfg.AuthTimeout},
		log:        log,
	}
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Authenticate извлекает bearer-токен из запроса и резолвит его в пользователя.
// Возвращает nil при отсутствующем, просроченном или не принятом провайдером
// токене — без различения причины для клиента.
func (c *Client) Authenticate(ctx context.Context, r *http.Request) *models.User {
	const op = "authclient.Authenticate"

	token := extractBearer(r)
	if token == "" {
		return nil
	}
	if rejectLocally(token) {
		return nil
	}

	user, err := c.verify(ctx, token)
	if err != nil {
		c.log.Debug("token verification failed", slog.String("op", op), sl.Err(err))
		return nil
	}
	return user
}

func (c *Client) verify(ctx context.Context, token string) (*models.User, error) {
	const op = "authclient.verify"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var ur userResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if ur.ID == "" {
		return nil, fmt.Errorf("%s: empty user id", op)
	}
	return &models.User{UID: ur.ID, Email: ur.Email}, nil
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// rejectLocally отсекает заведомо негодные токены без похода к провайдеру:
// не-JWT и токены с истёкшим exp. Положительного решения локальная проверка
// не принимает никогда — валидность подтверждает только провайдер.
func rejectLocally(token string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return true
	}
	if exp != nil && exp.Before(time.Now()) {
		return true
	}
	return false
}
