package flows

import (
	"context"
	"strings"
	"sync"

	"github.com/selfserveid/portal/internal/api"
	"github.com/selfserveid/portal/internal/view"
)

// EnrollFlow drives MFA enrollment. The server decides the effective method;
// the flow branches on the response, never on what was requested.
type EnrollFlow struct {
	ctx *AppContext

	mu       sync.Mutex
	busy     bool
	username string
	method   string
}

func NewEnrollFlow(ctx *AppContext) *EnrollFlow {
	return &EnrollFlow{ctx: ctx}
}

// Enroll submits an enrollment. SMS enrollment requires a phone number; the
// check happens locally and an empty phone never produces a request. On
// failure the form keeps username and method so only the password needs
// re-entering.
func (f *EnrollFlow) Enroll(ctx context.Context, username, password, method, phoneNumber string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	phoneNumber = strings.TrimSpace(phoneNumber)

	f.mu.Lock()
	f.username = username
	f.method = method
	f.mu.Unlock()

	if method == api.MethodSMS && phoneNumber == "" {
		f.ctx.View.Notify(view.SeverityError, "Phone number is required for SMS enrollment")
		f.Render()
		return nil
	}

	f.setBusy(true)
	f.Render()

	resp, err := f.ctx.API.Enroll(ctx, api.EnrollRequest{
		Username:    username,
		Password:    password,
		MFAMethod:   method,
		PhoneNumber: phoneNumber,
	})
	f.setBusy(false)
	if err != nil {
		f.ctx.fail(ctx, "mfa enroll", err)
		f.Render()
		return err
	}

	m := view.EnrollModel{Username: username, Method: resp.MFAMethod, Done: true}
	switch resp.MFAMethod {
	case api.MethodSMS:
		m.PhoneNumber = resp.PhoneNumber
	default:
		m.Secret = resp.Secret
		m.OtpauthURI = resp.OtpauthURI
	}
	f.ctx.View.Render(m)

	msg := resp.Message
	if msg == "" {
		msg = "MFA enrollment complete"
	}
	f.ctx.View.Notify(view.SeveritySuccess, msg)
	return nil
}

// Render re-emits the enrollment form with the retained username and method.
func (f *EnrollFlow) Render() {
	f.mu.Lock()
	m := view.EnrollModel{Busy: f.busy, Username: f.username, Method: f.method}
	f.mu.Unlock()
	f.ctx.View.Render(m)
}

func (f *EnrollFlow) setBusy(b bool) {
	f.mu.Lock()
	f.busy = b
	f.mu.Unlock()
}

// Reset clears the retained form state.
func (f *EnrollFlow) Reset() {
	f.mu.Lock()
	f.busy = false
	f.username = ""
	f.method = ""
	f.mu.Unlock()
}
