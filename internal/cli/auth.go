package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/selfserveid/portal/internal/api"
	"github.com/selfserveid/portal/internal/flows"
)

// Enroll prompts for credentials and the MFA method and submits the
// enrollment. The method prompt lists what the server offers; the server may
// still enroll a different method than requested, and the flow renders
// whatever came back.
func (a *App) Enroll(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}

	offered := "totp/sms"
	if resp, merr := a.api.MFAMethods(ctx); merr != nil {
		a.log.Debug(ctx, "mfa methods lookup failed", "error", merr)
	} else if len(resp.Methods) > 0 {
		offered = strings.Join(resp.Methods, "/")
	}

	method, err := getSimpleText(a.reader, fmt.Sprintf("MFA method (%s, default totp)", offered), a.out)
	if err != nil {
		return err
	}
	if method == "" {
		method = api.MethodTOTP
	}

	var phone string
	if method == api.MethodSMS {
		if phone, err = getSimpleText(a.reader, "Phone number", a.out); err != nil {
			return err
		}
	}

	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer wipe(password)

	return a.enroll.Enroll(ctx, username, string(password), method, phone)
}

// Login drives the interactive user login.
func (a *App) Login(ctx context.Context) error {
	return a.runLogin(ctx, a.login)
}

// AdminLogin drives the interactive admin login against the admin endpoint.
func (a *App) AdminLogin(ctx context.Context) error {
	return a.runLogin(ctx, a.adminLogin)
}

func (a *App) runLogin(ctx context.Context, flow *flows.LoginFlow) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	// Entering the username is the blur event; the advisory MFA lookup runs
	// while the password is typed.
	flow.UsernameBlur(ctx, username)

	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer wipe(password)

	code, err := getSimpleText(a.reader, "6-digit code ('sms' to request one by SMS)", a.out)
	if err != nil {
		return err
	}
	if code == "sms" {
		if err := flow.SendSMSCode(ctx, username, string(password)); err != nil {
			return err
		}
		if code, err = getSimpleText(a.reader, "6-digit code", a.out); err != nil {
			return err
		}
	}

	return flow.Submit(ctx, username, string(password), code)
}
