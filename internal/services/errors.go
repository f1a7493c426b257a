// Package services implements the domain rules over the store layer.
package services

import (
	"errors"

	"github.com/IrishAnn-code/HomeLibrary/internal/store"
)

// ErrNotFound is re-exported so handlers depend on one error surface.
var ErrNotFound = store.ErrNotFound

var (
	ErrAlreadyExists      = errors.New("services: already exists")
	ErrInvalidCredentials = errors.New("services: invalid credentials")
	ErrForbidden          = errors.New("services: access denied")
	ErrNotMember          = errors.New("services: not a member of this library")
	ErrInvalidInput       = errors.New("services: invalid input")
)
