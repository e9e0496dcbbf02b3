package handlers

import "context"

// contextKey тип для ключей контекста
type contextKey string

const (
	// OperatorIDKey ключ для хранения operator_id в контексте
	OperatorIDKey contextKey = "operator_id"
	// UsernameKey ключ для хранения username в контексте
	UsernameKey contextKey = "username"
)

// GetOperatorID извлекает operator_id из контекста запроса
func GetOperatorID(ctx context.Context) (string, bool) {
	operatorID, ok := ctx.Value(OperatorIDKey).(string)
	return operatorID, ok
}

// GetUsername извлекает username из контекста запроса
func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

// WithOperator кладет данные оператора в контекст
func WithOperator(ctx context.Context, operatorID, username string) context.Context {
	ctx = context.WithValue(ctx, OperatorIDKey, operatorID)
	return context.WithValue(ctx, UsernameKey, username)
}
