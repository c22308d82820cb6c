package flows

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/selfserveid/portal/internal/api"
	"github.com/selfserveid/portal/internal/timex"
	"github.com/selfserveid/portal/internal/view"
)

// LoginFlow drives user and admin login, the advisory MFA-method lookup on
// username entry, and the SMS code request with its server-sized cooldown.
type LoginFlow struct {
	ctx   *AppContext
	admin bool

	lookup *timex.Debouncer

	mu           sync.Mutex
	smsAvailable bool
	smsHint      string
	sending      bool
	remaining    int
	cooldown     *timex.Countdown
	cooldownGen  uint64
	loggedIn     bool
}

func NewLoginFlow(ctx *AppContext, admin bool) *LoginFlow {
	return &LoginFlow{ctx: ctx, admin: admin, lookup: timex.NewDebouncer(usernameLookupDelay)}
}

// UsernameBlur records a username edit and schedules the debounced MFA
// lookup. The lookup is advisory: it shapes which controls are shown, its
// failure is silent, and it never gates submission. A burst of edits
// produces at most one request, and a response arriving after a newer edit
// is discarded.
func (f *LoginFlow) UsernameBlur(ctx context.Context, username string) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		f.lookup.Cancel()
		f.mu.Lock()
		f.smsAvailable = false
		f.smsHint = ""
		m := f.modelLocked()
		f.mu.Unlock()
		f.ctx.View.Render(m)
		return
	}

	f.lookup.Trigger(func(gen uint64) {
		resp, err := f.ctx.API.MFAStatus(ctx, username)
		if err != nil {
			f.ctx.Log.Debug(ctx, "mfa lookup failed", "username", username, "error", err)
			return
		}
		if f.lookup.Stale(gen) {
			return
		}

		f.mu.Lock()
		f.smsAvailable = resp.Enrolled && resp.MFAMethod == api.MethodSMS
		f.smsHint = resp.PhoneNumber
		m := f.modelLocked()
		f.mu.Unlock()
		f.ctx.View.Render(m)
	})
}

// SendSMSCode requests a login code. Both credentials are required before
// any request is made. A successful send starts a cooldown sized by the
// server's expires_in_seconds; a failed send starts none and restores the
// control immediately.
func (f *LoginFlow) SendSMSCode(ctx context.Context, username, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		f.ctx.View.Notify(view.SeverityError, "Username and password are required to send a code")
		return nil
	}

	f.mu.Lock()
	if f.sending || f.remaining > 0 {
		f.mu.Unlock()
		return nil
	}
	f.sending = true
	m := f.modelLocked()
	f.mu.Unlock()
	f.ctx.View.Render(m)

	resp, err := f.ctx.API.SendSMSCode(ctx, username, password)

	f.mu.Lock()
	f.sending = false
	if err != nil {
		m = f.modelLocked()
		f.mu.Unlock()
		f.ctx.View.Render(m)
		f.ctx.fail(ctx, "send sms code", err)
		return err
	}
	if resp.ExpiresInSeconds > 0 {
		f.startCooldownLocked(resp.ExpiresInSeconds)
	}
	m = f.modelLocked()
	f.mu.Unlock()

	f.ctx.View.Render(m)
	msg := resp.Message
	if msg == "" {
		msg = fmt.Sprintf("Code sent to %s", resp.PhoneNumber)
	}
	f.ctx.View.Notify(view.SeveritySuccess, msg)
	return nil
}

// Submit attempts the login. The code must be exactly six digits; anything
// else is rejected locally. A success without a token (legacy deployments)
// is reported but establishes no session. On failure the form stays as
// entered, including the code.
func (f *LoginFlow) Submit(ctx context.Context, username, password, code string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		f.ctx.View.Notify(view.SeverityError, "Username and password are required")
		return nil
	}
	if !sixDigits.MatchString(code) {
		f.ctx.View.Notify(view.SeverityError, "Enter the 6-digit code")
		return nil
	}

	login := f.ctx.API.Login
	if f.admin {
		login = f.ctx.API.AdminLogin
	}
	resp, err := login(ctx, username, password, code)
	if err != nil {
		f.ctx.fail(ctx, "login", err)
		return err
	}

	if resp.Token == "" {
		msg := resp.Message
		if msg == "" {
			msg = "Login successful"
		}
		f.ctx.View.Notify(view.SeveritySuccess, msg)
		return nil
	}

	sessionUser := resp.Username
	if sessionUser == "" {
		sessionUser = username
	}
	if err := f.ctx.Session.Establish(resp.Token, sessionUser, resp.IsAdmin); err != nil {
		f.ctx.fail(ctx, "establish session", err)
		return err
	}

	f.mu.Lock()
	f.stopCooldownLocked()
	f.loggedIn = true
	m := f.modelLocked()
	f.mu.Unlock()
	f.lookup.Cancel()

	f.ctx.View.Render(m)
	f.ctx.View.Notify(view.SeveritySuccess, fmt.Sprintf("Logged in as %s", sessionUser))
	return nil
}

// Render re-emits the current login form state.
func (f *LoginFlow) Render() {
	f.mu.Lock()
	m := f.modelLocked()
	f.mu.Unlock()
	f.ctx.View.Render(m)
}

// Reset clears the form state and disposes the debouncer and any cooldown.
func (f *LoginFlow) Reset() {
	f.lookup.Cancel()
	f.mu.Lock()
	f.stopCooldownLocked()
	f.smsAvailable = false
	f.smsHint = ""
	f.sending = false
	f.loggedIn = false
	f.mu.Unlock()
}

func (f *LoginFlow) startCooldownLocked(seconds int) {
	f.cooldownGen++
	gen := f.cooldownGen
	f.remaining = seconds
	f.cooldown = timex.StartCountdown(seconds,
		func(remaining int) { f.cooldownTick(gen, remaining) },
		func() { f.cooldownTick(gen, 0) },
	)
}

func (f *LoginFlow) cooldownTick(gen uint64, remaining int) {
	f.mu.Lock()
	if f.cooldownGen != gen {
		f.mu.Unlock()
		return
	}
	f.remaining = remaining
	m := f.modelLocked()
	f.mu.Unlock()
	f.ctx.View.Render(m)
}

func (f *LoginFlow) stopCooldownLocked() {
	if f.cooldown != nil {
		f.cooldown.Stop()
		f.cooldown = nil
	}
	f.cooldownGen++
	f.remaining = 0
}

func (f *LoginFlow) modelLocked() view.LoginModel {
	m := view.LoginModel{
		Admin:        f.admin,
		Busy:         f.sending,
		SMSAvailable: f.smsAvailable,
		SMSHint:      f.smsHint,
		LoggedIn:     f.loggedIn,
	}
	switch {
	case f.sending:
		m.SendSMS = view.Control{Label: "Sending..."}
	case f.remaining > 0:
		m.SendSMS = view.Control{Label: fmt.Sprintf("Resend (%ds)", f.remaining)}
	default:
		m.SendSMS = view.Control{Label: "Send code", Enabled: true}
	}
	return m
}
