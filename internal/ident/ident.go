// Package ident описывает идентификаторы записей, которые могут быть
// временными (созданы на клиенте до подтверждения сервером) или постоянными
// (выданы сервером).
package ident

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// TemporaryPrefix префикс строкового представления временного идентификатора
const TemporaryPrefix = "offline-"

// Kind тип идентификатора
type Kind int

const (
	// KindUnknown нулевое значение, ID не инициализирован
	KindUnknown Kind = iota
	// KindTemporary идентификатор, сгенерированный клиентом
	KindTemporary
	// KindPersisted идентификатор, выданный сервером
	KindPersisted
)

// ErrEmpty возвращается при разборе пустой строки
var ErrEmpty = errors.New("identifier is empty")

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// ID is either Temporary(token) or Persisted(value).
// The zero value is neither and reports IsZero.
type ID struct {
	value string
	kind  Kind
}

// Temporary создает временный идентификатор из токена
func Temporary(token string) ID {
	return ID{kind: KindTemporary, value: token}
}

// Persisted создает постоянный идентификатор
func Persisted(value string) ID {
	return ID{kind: KindPersisted, value: value}
}

// NewTemporary генерирует новый временный идентификатор
func NewTemporary() ID {
	return Temporary(uuid.NewString())
}

// Parse разбирает строковое представление идентификатора.
// Строки с префиксом "offline-" считаются временными.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ID{}, ErrEmpty
	}
	if token, ok := strings.CutPrefix(s, TemporaryPrefix); ok {
		if token == "" {
			return ID{}, fmt.Errorf("temporary identifier %q has no token", s)
		}
		return Temporary(token), nil
	}
	return Persisted(s), nil
}

// MustParse как Parse, но паникует при ошибке. Только для тестов и констант.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsUUID reports whether s is a well-formed server UUID.
func IsUUID(s string) bool {
	return uuidPattern.MatchString(s)
}

func (id ID) Kind() Kind        { return id.kind }
func (id ID) IsZero() bool      { return id.kind == KindUnknown }
func (id ID) IsTemporary() bool { return id.kind == KindTemporary }
func (id ID) IsPersisted() bool { return id.kind == KindPersisted }

// Token возвращает токен временного идентификатора (пусто для постоянного)
func (id ID) Token() string {
	if id.kind != KindTemporary {
		return ""
	}
	return id.value
}

// Value возвращает серверное значение постоянного идентификатора
func (id ID) Value() string {
	if id.kind != KindPersisted {
		return ""
	}
	return id.value
}

// String returns the form accepted by Parse.
func (id ID) String() string {
	switch id.kind {
	case KindTemporary:
		return TemporaryPrefix + id.value
	case KindPersisted:
		return id.value
	default:
		return ""
	}
}

// Equal сравнивает два идентификатора с учетом типа
func (id ID) Equal(other ID) bool {
	return id.kind == other.kind && id.value == other.value
}

// MarshalJSON кодирует ID как строку; нулевой ID кодируется как пустая строка
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON разбирает строку; пустая строка и null дают нулевой ID
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ID{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("identifier must be a string: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		*id = ID{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
