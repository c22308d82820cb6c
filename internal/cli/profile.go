package cli

import (
	"context"

	"github.com/selfserveid/portal/internal/api"
)

// Profile shows the session user's profile.
func (a *App) Profile(ctx context.Context) error {
	return a.profile.Load(ctx)
}

// UpdateProfile prompts for new values field by field; an empty answer
// keeps the current value. The flow drops no-op edits and edits to verified
// channels before anything is sent.
func (a *App) UpdateProfile(ctx context.Context) error {
	if err := a.profile.Load(ctx); err != nil {
		return err
	}

	var updates api.ProfileUpdate
	prompt := func(label string, dst **string) error {
		v, err := getSimpleText(a.reader, label+" (empty to keep)", a.out)
		if err != nil {
			return err
		}
		if v != "" {
			*dst = &v
		}
		return nil
	}

	if err := prompt("First name", &updates.FirstName); err != nil {
		return err
	}
	if err := prompt("Last name", &updates.LastName); err != nil {
		return err
	}
	if err := prompt("Email", &updates.Email); err != nil {
		return err
	}
	if err := prompt("Phone country code", &updates.PhoneCountryCode); err != nil {
		return err
	}
	if err := prompt("Phone number", &updates.PhoneNumber); err != nil {
		return err
	}

	return a.profile.Update(ctx, updates)
}
