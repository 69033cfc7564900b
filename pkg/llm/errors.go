// Классификация ошибок completion endpoint.
//
// Все ошибки уровня сети/протокола восстановимы на уровне UI: они
// показываются пользователю как заметка в чате, повтор — новая отправка.
package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrorKind представляет тип ошибки при работе с completion API.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrAuth
	ErrRateLimit
	ErrNetwork
	ErrMalformed
)

// String возвращает строковое представление типа ошибки.
func (k ErrorKind) String() string {
	switch k {
	case ErrAuth:
		return "authentication_failed"
	case ErrRateLimit:
		return "rate_limit"
	case ErrNetwork:
		return "network_error"
	case ErrMalformed:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// HumanMessage возвращает человекочитаемое сообщение для типа ошибки.
func (k ErrorKind) HumanMessage() string {
	switch k {
	case ErrAuth:
		return "API ключ недействителен или отсутствует. Проверьте api_key в конфигурации."
	case ErrRateLimit:
		return "Превышен лимит запросов. Подождите и отправьте сообщение снова."
	case ErrNetwork:
		return "Сервер недоступен. Проверьте подключение к интернету."
	case ErrMalformed:
		return "Сервер вернул некорректный ответ."
	default:
		return "Неизвестная ошибка API."
	}
}

// ClassifyError определяет тип ошибки по её содержимому.
//
// Порядок проверок:
//   - *openai.APIError: по HTTP статусу (401/403 → ErrAuth, 429 → ErrRateLimit)
//   - context deadline / сетевые ошибки → ErrNetwork
//   - ошибки декодирования ответа → ErrMalformed
//   - всё остальное → ErrUnknown
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return ErrUnknown
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrAuth
		case http.StatusTooManyRequests:
			return ErrRateLimit
		}
		if apiErr.HTTPStatusCode >= 500 {
			return ErrNetwork
		}
	}

	errMsg := err.Error()
	errMsgLower := strings.ToLower(errMsg)

	// Проверка ошибок авторизации
	if strings.Contains(errMsg, "401") ||
		strings.Contains(errMsgLower, "unauthorized") ||
		strings.Contains(errMsgLower, "invalid api key") {
		return ErrAuth
	}

	// Проверка rate limiting
	if strings.Contains(errMsg, "429") ||
		strings.Contains(errMsgLower, "too many requests") {
		return ErrRateLimit
	}

	// Проверка сетевых ошибок и таймаутов
	if errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(errMsgLower, "timeout") ||
		strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "no such host") ||
		strings.Contains(errMsgLower, "connection reset") {
		return ErrNetwork
	}

	// Проверка битых ответов (SSE/JSON декодирование)
	if strings.Contains(errMsgLower, "unmarshal") ||
		strings.Contains(errMsgLower, "invalid character") ||
		strings.Contains(errMsgLower, "unexpected eof") {
		return ErrMalformed
	}

	return ErrUnknown
}
