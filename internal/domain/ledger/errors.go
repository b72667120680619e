package ledger

import "errors"

var (
	ErrInvalidValue     = errors.New("invalid value")
	ErrForbidden        = errors.New("forbidden")
	ErrTemplateNotFound = errors.New("template not found")
	ErrChargeNotFound   = errors.New("charge not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrOverpayment      = errors.New("amount exceeds remaining balance")
	ErrAlreadySettled   = errors.New("charge already settled")
	ErrConflict         = errors.New("concurrent charge mutation")

	// ErrDuplicateCharge is returned by repositories when an insert hits
	// the generation idempotency index.
	ErrDuplicateCharge = errors.New("duplicate charge for period")
)
