// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON-ответов HTTP-обработчиков: успешных ответов, ошибок
// валидации, ошибок квоты и ограничения частоты запросов.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// Response описывает стандартную структуру JSON-ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (опционально, при неуспехе).
// Поле Data — данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

// QuotaResponse — ошибка исчерпанной квоты. Флаг LimitReached позволяет
// клиенту показать предложение перейти на подписку вместо общей ошибки.
type QuotaResponse struct {
	Status       string `json:"status" example:"Error"`
	Error        string `json:"error" example:"generation limit reached"`
	LimitReached bool   `json:"limitReached" example:"true"`
	TotalUsage   int    `json:"totalUsage" example:"3"`
}

// RateLimitResponse — ошибка превышения частоты запросов с подсказкой,
// через сколько секунд можно повторить.
type RateLimitResponse struct {
	Status     string `json:"status" example:"Error"`
	Error      string `json:"error" example:"too many requests"`
	RetryAfter int    `json:"retryAfter" example:"42"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// OKWithData возвращает успешный Response с переданными данными.
func OKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// QuotaExceeded возвращает ошибку исчерпанной квоты бесплатного тарифа.
func QuotaExceeded(totalUsage int) QuotaResponse {
	return QuotaResponse{
		Status:       StatusError,
		Error:        "generation limit reached",
		LimitReached: true,
		TotalUsage:   totalUsage,
	}
}

// RateLimited возвращает ошибку превышения частоты запросов.
func RateLimited(retryAfterSeconds int) RateLimitResponse {
	return RateLimitResponse{
		Status:     StatusError,
		Error:      "too many requests",
		RetryAfter: retryAfterSeconds,
	}
}

// UsageCount возвращает сериализуемое значение счётчика квоты: при активной
// подписке счётчики не имеют смысла и отдаются строкой "unlimited".
func UsageCount(unlimited bool, n int) any {
	if unlimited {
		return "unlimited"
	}
	return n
}

// ValidationErrors формирует Response со статусом Error из списка нарушений
// схемной валидации.
func ValidationErrors(errs []string) Response {
	return Response{
		Status: StatusError,
		Error:  strings.Join(errs, ", "),
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок
// библиотечной валидации структур.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "uuid":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only uuid", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}
