package validation

import (
	"fmt"
	"regexp"
)

// OperatorNamePattern допустимый формат имени оператора:
// латинские буквы, цифры, точка и нижнее подчеркивание, 3-32 символа
var OperatorNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,32}$`)

const (
	MinOperatorNameLen = 3
	MaxOperatorNameLen = 32
	MinPasswordLen     = 10
)

// ValidateOperatorName проверяет имя оператора (логин регистратуры или врача)
func ValidateOperatorName(name string) error {
	if name == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if len(name) < MinOperatorNameLen {
		return fmt.Errorf("username must be at least %d characters long", MinOperatorNameLen)
	}
	if len(name) > MaxOperatorNameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxOperatorNameLen)
	}
	if !OperatorNamePattern.MatchString(name) {
		return fmt.Errorf("username can only contain letters, numbers, dots and underscores")
	}
	return nil
}

// ValidatePassword проверяет минимальные требования к паролю оператора
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}
	return nil
}
