package models

import "time"

// Operator представляет сотрудника регистратуры/врача, работающего с клиентом
type Operator struct {
	CreatedAt   time.Time  `json:"created_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	ID          string     `json:"id"`            // UUID оператора
	Username    string     `json:"username"`      // уникальный username
	AuthKeyHash string     `json:"auth_key_hash"` // SHA256 хеш auth_key
	PublicSalt  string     `json:"public_salt"`   // base64 encoded salt (32 bytes)
}

// RefreshToken представляет refresh token оператора
type RefreshToken struct {
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
	Token      string    `json:"token"`
	OperatorID string    `json:"operator_id"`
}
