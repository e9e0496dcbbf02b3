package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Классы ошибок ответа сервера. Проверяются через errors.Is.
var (
	// ErrRejected сервер отклонил запрос как некорректный (4xx), повтор не поможет
	ErrRejected = errors.New("request rejected by server")
	// ErrNotFound запрошенная запись отсутствует на сервере
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized токен отсутствует или истек
	ErrUnauthorized = errors.New("unauthorized")
)

// StatusError неуспешный HTTP ответ сервера
type StatusError struct {
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Unwrap относит статус к одному из классов ошибок.
// 5xx, 408 и 429 считаются временными и ни к какому классу не относятся.
func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		return nil
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return ErrRejected
	default:
		return nil
	}
}

// IsTransient reports whether err is worth retrying on a later pass.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrRejected) && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrUnauthorized)
}
