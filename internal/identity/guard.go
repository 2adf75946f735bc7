package identity

import "github.com/0xweirdlabs/fastapi.prod.starter/pkg/errors"

// RequireActive rejects identities whose account has been disabled.
func RequireActive(id *Identity) error {
	if id == nil {
		return errors.New(errors.CodeUnauthorized, "not authenticated")
	}
	if !id.IsActive {
		return errors.New(errors.CodeInactive, "inactive user")
	}
	return nil
}

// RequireSuperuser rejects identities without elevated privileges. The
// identity must also be active; a disabled superuser keeps nothing.
func RequireSuperuser(id *Identity) error {
	if err := RequireActive(id); err != nil {
		return err
	}
	if !id.IsSuperuser {
		return errors.New(errors.CodeForbidden, "the user doesn't have enough privileges")
	}
	return nil
}
