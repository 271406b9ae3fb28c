// Пакет service — бизнес-логика picstore: загрузка изображений,
// постраничный обход, выдача ключей, генерация статей.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error — ошибка сервисного слоя с HTTP-кодом.
// Message — англоязычная строка публичного контракта API,
// отдаётся клиенту как есть.
type Error struct {
	Status  int
	Message string
	// Err — внутренняя причина. В ответ попадает только
	// при включённом debug-режиме.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// --- Конструкторы ---

func validationErr(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

func authErr(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

func notFoundErr(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

func unprocessableErr(message string) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Message: message}
}

func internalErr(message string, cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message, Err: cause}
}

// storeErr классифицирует ошибку обращения к хранилищу.
// Истечение дедлайна — отдельный класс (408): операция брошена,
// внешний вызов мог завершиться на стороне хранилища.
func storeErr(err error, message string) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{
			Status:  http.StatusRequestTimeout,
			Message: "Database query timed out. Please try again.",
			Err:     err,
		}
	}
	return &Error{Status: http.StatusInternalServerError, Message: message, Err: err}
}
