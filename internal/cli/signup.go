package cli

import (
	"context"

	"github.com/selfserveid/portal/internal/api"
)

// Signup prompts for the registration fields and submits the signup. The
// password confirmation is checked by the flow before anything is sent.
func (a *App) Signup(ctx context.Context) error {
	if !a.smsEnabled {
		printlnFn("Note: SMS delivery is disabled on this server; expect email verification only.")
	}

	var req api.SignupRequest
	var err error

	if req.Username, err = getSimpleText(a.reader, "Username", a.out); err != nil {
		return err
	}
	if req.Email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	if req.FirstName, err = getSimpleText(a.reader, "First name", a.out); err != nil {
		return err
	}
	if req.LastName, err = getSimpleText(a.reader, "Last name", a.out); err != nil {
		return err
	}
	if req.PhoneCountryCode, err = getSimpleText(a.reader, "Phone country code (e.g. +1)", a.out); err != nil {
		return err
	}
	if req.PhoneNumber, err = getSimpleText(a.reader, "Phone number", a.out); err != nil {
		return err
	}
	if req.MFAMethod, err = getSimpleText(a.reader, "MFA method (totp/sms, default totp)", a.out); err != nil {
		return err
	}

	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer wipe(password)

	confirm, err := getPassword(a.out, "Confirm password")
	if err != nil {
		return err
	}
	defer wipe(confirm)

	req.Password = string(password)
	return a.verification.Signup(ctx, req, string(confirm))
}

// VerifyPhone prompts for the SMS code and submits it.
func (a *App) VerifyPhone(ctx context.Context) error {
	code, err := getSimpleText(a.reader, "6-digit code from SMS", a.out)
	if err != nil {
		return err
	}
	return a.verification.VerifyPhone(ctx, code)
}

// Resend requests a fresh verification message on the given channel.
func (a *App) Resend(ctx context.Context, channel string) error {
	return a.verification.Resend(ctx, channel)
}

// Status looks up the public verification status of a username.
func (a *App) Status(ctx context.Context, username string) error {
	var err error
	if username == "" {
		if username, err = getSimpleText(a.reader, "Username", a.out); err != nil {
			return err
		}
	}
	return a.profile.Status(ctx, username)
}
