package domain

import (
	"context"
	"errors"
)

type Service interface {
	Upsert(context.Context, Profile) (User, error)
}

var (
	ErrInvalidExternalID = errors.New("invalid_external_id")
	ErrInvalidEmail      = errors.New("invalid_email")
)
