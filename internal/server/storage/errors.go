package storage

import "errors"

// Common storage errors
var (
	// ErrOperatorNotFound indicates that operator was not found in storage
	ErrOperatorNotFound = errors.New("operator not found")

	// ErrOperatorAlreadyExists indicates that operator with this username already exists
	ErrOperatorAlreadyExists = errors.New("operator already exists")

	// ErrTokenNotFound indicates that refresh token was not found
	ErrTokenNotFound = errors.New("refresh token not found")

	ErrPatientNotFound      = errors.New("patient not found")
	ErrConsultationNotFound = errors.New("consultation not found")
	ErrMessageNotFound      = errors.New("message not found")
)
