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

// VerificationFlow drives signup and the two-channel verification that
// follows it. Channels verify independently; the flow only aggregates what
// the server reports and never decides completeness on its own.
type VerificationFlow struct {
	ctx *AppContext

	mu       sync.Mutex
	busy     bool
	username string
	pending  bool
	complete bool

	emailHint     string
	phoneHint     string
	emailVerified bool
	phoneVerified bool

	// Per-channel resend cooldowns. Callbacks carry the generation they were
	// started under and are discarded once it is superseded, so a countdown
	// surviving a Reset cannot touch the next signup's state.
	emailCooldown  *timex.Countdown
	phoneCooldown  *timex.Countdown
	emailGen       uint64
	phoneGen       uint64
	emailRemaining int
	phoneRemaining int
}

func NewVerificationFlow(ctx *AppContext) *VerificationFlow {
	return &VerificationFlow{ctx: ctx}
}

// Signup submits a new signup. The password confirmation is checked locally;
// a mismatch never reaches the server. Username and email are lowercased
// before submission.
func (f *VerificationFlow) Signup(ctx context.Context, req api.SignupRequest, confirmPassword string) error {
	if req.Password != confirmPassword {
		f.ctx.View.Notify(view.SeverityError, "Passwords do not match")
		return nil
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	f.setBusy()

	resp, err := f.ctx.API.Signup(ctx, req)
	if err != nil {
		f.clearBusy()
		f.ctx.fail(ctx, "signup", err)
		return err
	}

	f.mu.Lock()
	f.disposeLocked()
	f.username = req.Username
	f.pending = true
	f.emailHint = req.Email
	f.phoneHint = req.PhoneCountryCode + req.PhoneNumber
	m := f.modelLocked()
	f.mu.Unlock()

	f.ctx.View.Render(m)
	f.ctx.View.Notify(view.SeveritySuccess, signupMessage(resp))
	return nil
}

// signupMessage reflects which channels the server reports having messaged.
// A missing flag is not a failure; the resend controls stay available either
// way.
func signupMessage(resp *api.SignupResponse) string {
	if resp.Message != "" {
		return resp.Message
	}
	switch {
	case resp.EmailVerificationSent && resp.PhoneVerificationSent:
		return "Signup successful. Check your email and phone for verification."
	case resp.EmailVerificationSent:
		return "Signup successful. Check your email for verification."
	case resp.PhoneVerificationSent:
		return "Signup successful. Check your phone for verification."
	default:
		return "Signup successful."
	}
}

// Resend requests a fresh verification message on one channel. A successful
// request starts that channel's 60s cooldown; the other channel is not
// affected, and a failed request leaves the control immediately usable.
func (f *VerificationFlow) Resend(ctx context.Context, channel string) error {
	f.mu.Lock()
	if !f.pending || f.complete {
		f.mu.Unlock()
		return nil
	}
	if channel == api.ChannelEmail && f.emailCooldown != nil && f.emailCooldown.Active() {
		f.mu.Unlock()
		return nil
	}
	if channel == api.ChannelPhone && f.phoneCooldown != nil && f.phoneCooldown.Active() {
		f.mu.Unlock()
		return nil
	}
	username := f.username
	f.busy = true
	m := f.modelLocked()
	f.mu.Unlock()
	f.ctx.View.Render(m)

	if err := f.ctx.API.ResendVerification(ctx, username, channel); err != nil {
		f.clearBusy()
		f.ctx.fail(ctx, "resend verification", err)
		return err
	}

	f.mu.Lock()
	f.busy = false
	f.startCooldownLocked(channel, resendCooldownSeconds)
	m = f.modelLocked()
	f.mu.Unlock()

	f.ctx.View.Render(m)
	if channel == api.ChannelEmail {
		f.ctx.View.Notify(view.SeveritySuccess, "Verification email sent")
	} else {
		f.ctx.View.Notify(view.SeveritySuccess, "Verification code sent to your phone")
	}
	return nil
}

// VerifyPhone submits the six-digit SMS code. Anything that is not exactly
// six digits is rejected locally without a request.
func (f *VerificationFlow) VerifyPhone(ctx context.Context, code string) error {
	f.mu.Lock()
	if !f.pending || f.complete {
		f.mu.Unlock()
		return nil
	}
	username := f.username
	f.mu.Unlock()

	if !sixDigits.MatchString(code) {
		f.ctx.View.Notify(view.SeverityError, "Enter the 6-digit code")
		return nil
	}

	f.setBusy()

	resp, err := f.ctx.API.VerifyPhone(ctx, username, code)
	if err != nil {
		f.clearBusy()
		f.ctx.fail(ctx, "verify phone", err)
		return err
	}

	f.mu.Lock()
	f.busy = false
	f.phoneVerified = true
	f.applyStatusLocked(resp.ProfileStatus)
	m := f.modelLocked()
	f.mu.Unlock()

	f.ctx.View.Render(m)
	f.notifyVerification(resp, "Phone verified")
	return nil
}

// VerifyEmailToken redeems an email verification token. It also serves the
// launch-flag path, where no signup is pending in this process; state is
// only updated when the token belongs to the pending signup.
func (f *VerificationFlow) VerifyEmailToken(ctx context.Context, username, token string) error {
	f.setBusy()

	resp, err := f.ctx.API.VerifyEmail(ctx, username, token)
	if err != nil {
		f.clearBusy()
		f.ctx.fail(ctx, "verify email", err)
		return err
	}

	f.mu.Lock()
	f.busy = false
	if f.pending && f.username == username {
		f.emailVerified = true
		f.applyStatusLocked(resp.ProfileStatus)
	}
	m := f.modelLocked()
	f.mu.Unlock()
	f.ctx.View.Render(m)

	f.notifyVerification(resp, "Email verified")
	return nil
}

// Render re-emits the current verification state.
func (f *VerificationFlow) Render() {
	f.mu.Lock()
	m := f.modelLocked()
	f.mu.Unlock()
	f.ctx.View.Render(m)
}

// Reset abandons the pending signup and disposes any running cooldowns.
func (f *VerificationFlow) Reset() {
	f.mu.Lock()
	f.disposeLocked()
	m := f.modelLocked()
	f.mu.Unlock()
	f.ctx.View.Render(m)
}

// setBusy marks a dispatch in flight and re-renders. clearBusy is its
// completion counterpart for paths that do not otherwise render; every
// dispatch ends in exactly one of the two.
func (f *VerificationFlow) setBusy() {
	f.mu.Lock()
	f.busy = true
	m := f.modelLocked()
	f.mu.Unlock()
	f.ctx.View.Render(m)
}

func (f *VerificationFlow) clearBusy() {
	f.mu.Lock()
	f.busy = false
	m := f.modelLocked()
	f.mu.Unlock()
	f.ctx.View.Render(m)
}

func (f *VerificationFlow) notifyVerification(resp *api.VerificationResponse, fallback string) {
	msg := resp.Message
	if msg == "" {
		msg = fallback
	}
	f.ctx.View.Notify(view.SeveritySuccess, msg)
}

// applyStatusLocked folds the server-reported aggregate status in. Complete
// is monotonic: once reached, controls stay frozen and cooldowns stop.
func (f *VerificationFlow) applyStatusLocked(status string) {
	if status != api.StatusComplete {
		return
	}
	f.complete = true
	f.stopCooldownsLocked()
}

// stopCooldownsLocked stops both countdowns and supersedes their
// generations so ticks already in flight are discarded.
func (f *VerificationFlow) stopCooldownsLocked() {
	if f.emailCooldown != nil {
		f.emailCooldown.Stop()
	}
	if f.phoneCooldown != nil {
		f.phoneCooldown.Stop()
	}
	f.emailGen++
	f.phoneGen++
	f.emailCooldown = nil
	f.phoneCooldown = nil
	f.emailRemaining = 0
	f.phoneRemaining = 0
}

func (f *VerificationFlow) startCooldownLocked(channel string, seconds int) {
	if channel == api.ChannelEmail {
		f.emailGen++
		gen := f.emailGen
		f.emailRemaining = seconds
		f.emailCooldown = timex.StartCountdown(seconds,
			func(remaining int) { f.cooldownTick(channel, gen, remaining) },
			func() { f.cooldownTick(channel, gen, 0) },
		)
	} else {
		f.phoneGen++
		gen := f.phoneGen
		f.phoneRemaining = seconds
		f.phoneCooldown = timex.StartCountdown(seconds,
			func(remaining int) { f.cooldownTick(channel, gen, remaining) },
			func() { f.cooldownTick(channel, gen, 0) },
		)
	}
}

// cooldownTick runs on the countdown goroutine. The generation check
// discards ticks from a countdown that no longer owns its channel.
func (f *VerificationFlow) cooldownTick(channel string, gen uint64, remaining int) {
	f.mu.Lock()
	switch channel {
	case api.ChannelEmail:
		if f.emailGen != gen {
			f.mu.Unlock()
			return
		}
		f.emailRemaining = remaining
	case api.ChannelPhone:
		if f.phoneGen != gen {
			f.mu.Unlock()
			return
		}
		f.phoneRemaining = remaining
	}
	m := f.modelLocked()
	f.mu.Unlock()
	f.ctx.View.Render(m)
}

func (f *VerificationFlow) disposeLocked() {
	f.stopCooldownsLocked()
	f.busy = false
	f.username = ""
	f.pending = false
	f.complete = false
	f.emailHint = ""
	f.phoneHint = ""
	f.emailVerified = false
	f.phoneVerified = false
}

func (f *VerificationFlow) modelLocked() view.VerificationModel {
	active := f.pending && !f.complete
	return view.VerificationModel{
		Busy:             f.busy,
		HasPendingSignup: f.pending,
		Username:         f.username,
		EmailHint:        f.emailHint,
		PhoneHint:        f.phoneHint,
		EmailVerified:    f.emailVerified,
		PhoneVerified:    f.phoneVerified,
		EmailResend:      resendControl(active && !f.emailVerified, f.emailRemaining),
		PhoneResend:      resendControl(active && !f.phoneVerified, f.phoneRemaining),
		VerifyPhone: view.Control{
			Label:   "Verify",
			Enabled: active && !f.phoneVerified,
		},
		CodeEntryEnabled: active && !f.phoneVerified,
		Complete:         f.complete,
	}
}

func resendControl(usable bool, remaining int) view.Control {
	if remaining > 0 {
		return view.Control{Label: fmt.Sprintf("Resend (%ds)", remaining)}
	}
	return view.Control{Label: "Resend", Enabled: usable}
}
