// Package crypto содержит деривацию ключа аутентификации оператора.
// Пароль никогда не покидает клиент: на сервер уходит только SHA256 от
// производного Argon2id ключа.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Параметры Argon2id
const (
	Argon2Time    = 1
	Argon2Memory  = 64 * 1024 // KB
	Argon2Threads = 4
	Argon2KeyLen  = 32
	SaltSize      = 32
)

// authContext отделяет ключ аутентификации от любых других ключей из того же пароля
const authContext = "clinicsync-auth"

// GenerateSalt генерирует криптографически случайную соль
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// GenerateSaltBase64 генерирует соль и возвращает ее в Base64
func GenerateSaltBase64() (string, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

// DeriveAuthKey вычисляет ключ аутентификации из пароля, username и соли
func DeriveAuthKey(password, username string, salt []byte) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("password cannot be empty")
	}
	if username == "" {
		return nil, fmt.Errorf("username cannot be empty")
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("salt must be %d bytes, got %d", SaltSize, len(salt))
	}

	input := []byte(password + username + authContext)
	return argon2.IDKey(input, salt, Argon2Time, Argon2Memory, Argon2Threads, Argon2KeyLen), nil
}

// AuthKeyHash выводит ключ из Base64 соли и возвращает его hex SHA256,
// то есть значение, которое клиент отправляет на сервер
func AuthKeyHash(password, username, saltBase64 string) (string, error) {
	salt, err := base64.StdEncoding.DecodeString(saltBase64)
	if err != nil {
		return "", fmt.Errorf("failed to decode salt: %w", err)
	}
	key, err := DeriveAuthKey(password, username, salt)
	if err != nil {
		return "", err
	}
	return HashAuthKey(key)
}

// HashAuthKey хеширует auth key через SHA256 (hex)
func HashAuthKey(authKey []byte) (string, error) {
	if len(authKey) == 0 {
		return "", fmt.Errorf("auth key cannot be empty")
	}
	sum := sha256.Sum256(authKey)
	return hex.EncodeToString(sum[:]), nil
}

// EqualHashes сравнивает два hex хеша за постоянное время
func EqualHashes(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
