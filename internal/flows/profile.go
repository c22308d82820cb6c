package flows

import (
	"context"
	"sync"

	"github.com/selfserveid/portal/internal/api"
	"github.com/selfserveid/portal/internal/view"
)

// ProfileFlow drives the authenticated profile surface and the public
// profile-status lookup. Verified channels are rendered read-only and edits
// to them are dropped before any request is built.
type ProfileFlow struct {
	ctx *AppContext

	mu      sync.Mutex
	busy    bool
	current *api.Profile
}

func NewProfileFlow(ctx *AppContext) *ProfileFlow {
	return &ProfileFlow{ctx: ctx}
}

// Load fetches the session user's profile.
func (f *ProfileFlow) Load(ctx context.Context) error {
	s := f.ctx.Session.Current()
	if s == nil {
		f.ctx.View.Notify(view.SeverityError, "Please log in first")
		return nil
	}

	f.mu.Lock()
	f.busy = true
	m := f.modelLocked()
	f.mu.Unlock()
	f.ctx.View.Render(m)

	p, err := f.ctx.API.GetProfile(ctx, s.Username)
	if err != nil {
		f.clearBusy()
		f.ctx.fail(ctx, "load profile", err)
		return err
	}

	f.mu.Lock()
	f.busy = false
	f.current = p
	m = f.modelLocked()
	f.mu.Unlock()
	f.ctx.View.Render(m)
	return nil
}

// Update submits the given edits. Fields equal to the loaded profile and
// edits to already-verified channels are dropped; if nothing remains, no
// request is made.
func (f *ProfileFlow) Update(ctx context.Context, updates api.ProfileUpdate) error {
	s := f.ctx.Session.Current()
	if s == nil {
		f.ctx.View.Notify(view.SeverityError, "Please log in first")
		return nil
	}

	f.mu.Lock()
	current := f.current
	f.mu.Unlock()
	if current == nil {
		f.ctx.View.Notify(view.SeverityError, "Load the profile before editing it")
		return nil
	}

	filtered, dropped := filterUpdates(current, updates)
	if dropped {
		f.ctx.View.Notify(view.SeverityWarning, "Verified contact details cannot be changed")
	}
	if filtered == (api.ProfileUpdate{}) {
		f.ctx.View.Notify(view.SeverityWarning, "Nothing to update")
		return nil
	}

	f.mu.Lock()
	f.busy = true
	m := f.modelLocked()
	f.mu.Unlock()
	f.ctx.View.Render(m)

	p, err := f.ctx.API.UpdateProfile(ctx, s.Username, filtered)
	if err != nil {
		f.clearBusy()
		f.ctx.fail(ctx, "update profile", err)
		return err
	}

	f.mu.Lock()
	f.busy = false
	f.current = p
	m = f.modelLocked()
	f.mu.Unlock()
	f.ctx.View.Render(m)
	f.ctx.View.Notify(view.SeveritySuccess, "Profile updated")
	return nil
}

// Status looks up the public verification status of any username. No
// session is required.
func (f *ProfileFlow) Status(ctx context.Context, username string) error {
	resp, err := f.ctx.API.ProfileStatus(ctx, username)
	if err != nil {
		f.ctx.fail(ctx, "profile status", err)
		return err
	}
	f.ctx.View.Render(view.ProfileStatusModel{Status: resp})
	return nil
}

// Reset drops the cached profile.
func (f *ProfileFlow) Reset() {
	f.mu.Lock()
	f.busy = false
	f.current = nil
	f.mu.Unlock()
}

func (f *ProfileFlow) clearBusy() {
	f.mu.Lock()
	f.busy = false
	m := f.modelLocked()
	f.mu.Unlock()
	f.ctx.View.Render(m)
}

func (f *ProfileFlow) modelLocked() view.ProfileModel {
	m := view.ProfileModel{Busy: f.busy, Profile: f.current}
	if f.current != nil {
		m.EmailReadOnly = f.current.EmailVerified
		m.PhoneReadOnly = f.current.PhoneVerified
	}
	return m
}

// filterUpdates drops no-op edits and edits to verified channels. The
// second result reports whether a verified-channel edit was dropped.
func filterUpdates(current *api.Profile, updates api.ProfileUpdate) (api.ProfileUpdate, bool) {
	var out api.ProfileUpdate
	dropped := false

	keep := func(v *string, cur string) *string {
		if v == nil || *v == cur {
			return nil
		}
		return v
	}

	out.FirstName = keep(updates.FirstName, current.FirstName)
	out.LastName = keep(updates.LastName, current.LastName)
	out.PhoneCountryCode = keep(updates.PhoneCountryCode, current.PhoneCountryCode)

	if v := keep(updates.Email, current.Email); v != nil {
		if current.EmailVerified {
			dropped = true
		} else {
			out.Email = v
		}
	}
	if v := keep(updates.PhoneNumber, current.PhoneNumber); v != nil {
		if current.PhoneVerified {
			dropped = true
		} else {
			out.PhoneNumber = v
		}
	}
	return out, dropped
}
