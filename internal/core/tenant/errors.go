package tenant

import (
	"errors"

	"contalink/internal/core/apperror"
)

var (
	// ErrNoTenantKey is returned when the backend is disabled and the request
	// carries no tenant key to synthesize a company from.
	ErrNoTenantKey = errors.New("no tenant key")

	// ErrCompanyNotFound is returned by directories when no company matches.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrInvalidCompany is returned by directories for records without an id.
	ErrInvalidCompany = errors.New("company record has no id")
)

// ToAppError maps a LoadTenant error for key to an application error.
func ToAppError(err error, key Key) error {
	if err == nil || apperror.IsAppError(err) {
		return err
	}
	switch {
	case errors.Is(err, ErrNoTenantKey):
		return apperror.NewTenantRequired("no tenant could be determined for this request")
	case errors.Is(err, ErrCompanyNotFound):
		return apperror.NewNotFound("company", key.String())
	}
	return apperror.NewLookupFailure(key.String(), err)
}
