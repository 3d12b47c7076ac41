package account

import "github.com/goliatone/go-errors"

const (
	TextCodeEmailTaken           = "account_email_taken"
	TextCodeRegistrationDisabled = "account_registration_disabled"
	TextCodePasswordMismatch     = "account_password_mismatch"
	TextCodeProtectedAccount     = "account_protected"
	TextCodePersistenceFailure   = "account_persistence_failure"
)

// ErrEmailTaken is returned when a user with the email already exists.
var ErrEmailTaken = errors.New("email already taken", errors.CategoryValidation).
	WithTextCode(TextCodeEmailTaken).
	WithCode(errors.CodeConflict)

// ErrRegistrationDisabled is returned when the deployment does not allow
// new accounts to be created during social resolution.
var ErrRegistrationDisabled = errors.New("registration disabled", errors.CategoryAuth).
	WithTextCode(TextCodeRegistrationDisabled).
	WithCode(errors.CodeForbidden)

// ErrPasswordMismatch is returned when the supplied old password does not
// match the stored hash.
var ErrPasswordMismatch = errors.New("password mismatch", errors.CategoryAuth).
	WithTextCode(TextCodePasswordMismatch).
	WithCode(errors.CodeUnauthorized)

// ErrProtectedAccount is returned when attempting to delete the super
// admin account.
var ErrProtectedAccount = errors.New("protected account cannot be deleted", errors.CategoryConflict).
	WithTextCode(TextCodeProtectedAccount).
	WithCode(errors.CodeForbidden)

// ErrNoEmptyString is the error for empty passwords
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the bcrypt comparison failure
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// wrapPersistence wraps a storage failure as a general account error.
func wrapPersistence(err error, msg string) error {
	return errors.Wrap(err, errors.CategoryInternal, msg).
		WithTextCode(TextCodePersistenceFailure)
}
