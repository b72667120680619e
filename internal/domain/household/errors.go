package household

import "errors"

var (
	ErrHouseholdNotFound    = errors.New("household not found")
	ErrInviteCodeNotFound   = errors.New("invite code not found")
	ErrMemberNotFound       = errors.New("member not found")
	ErrAlreadyInHousehold   = errors.New("already in a household")
	ErrNotInHousehold       = errors.New("not in a household")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidValue         = errors.New("invalid value")
	ErrCodeGenerationFailed = errors.New("invite code generation failed")
)
