package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"autoref-server/pkg/api"
)

// ErrBadPayload - данные команды тренера не разобраны или не прошли проверку.
// Команда отклоняется до обращения к судье, тик продолжается без нее.
var ErrBadPayload = errors.New("bad trainer payload")

// TypedHandlerFunc - команда тренера с разобранными данными T (KickOffPayload, BeamPayload...).
type TypedHandlerFunc[T any] func(ctx Context, payload T) (Result, error)

// EmptyHandlerFunc - команда тренера без данных.
type EmptyHandlerFunc func(ctx Context) (Result, error)

// WithPayload разбирает JSON команды в T и проверяет его через api.Validator.
// Отсутствующие данные или null дают нулевое T: KICKOFF без стороны бьет по жребию.
func WithPayload[T any](handler TypedHandlerFunc[T]) HandlerFunc {
	return func(ctx Context, raw json.RawMessage) (Result, error) {
		var payload T
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &payload); err != nil {
				return Result{}, fmt.Errorf("%w: decode %T: %v", ErrBadPayload, payload, err)
			}
		}
		if v, ok := any(payload).(api.Validator); ok {
			if err := v.Validate(); err != nil {
				return Result{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
			}
		}
		return handler(ctx, payload)
	}
}

// WithEmptyPayload - для ABORT: лишние данные монитора игнорируются.
func WithEmptyPayload(handler EmptyHandlerFunc) HandlerFunc {
	return func(ctx Context, _ json.RawMessage) (Result, error) {
		return handler(ctx)
	}
}
