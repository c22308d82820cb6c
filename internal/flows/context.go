// Package flows holds the client-side controllers of the identity portal:
// signup/verification, MFA enrollment, login, profile, and administration.
// Each controller owns its surface state, talks to the backend through the
// api interfaces, and renders through a view.Port, so every transition is
// testable without a terminal attached.
package flows

import (
	"context"
	"regexp"
	"time"

	"github.com/selfserveid/portal/internal/api"
	"github.com/selfserveid/portal/internal/logging"
	"github.com/selfserveid/portal/internal/session"
	"github.com/selfserveid/portal/internal/view"
)

const (
	// resendCooldownSeconds is the fixed client-side cooldown after a
	// successful verification resend. SMS login codes use the server-sized
	// expires_in_seconds instead.
	resendCooldownSeconds = 60

	// usernameLookupDelay debounces the advisory MFA lookup on username
	// entry; searchDelay debounces admin list searches.
	usernameLookupDelay = 500 * time.Millisecond
	searchDelay         = 300 * time.Millisecond
)

// sixDigits gates one-time codes before any request is made.
var sixDigits = regexp.MustCompile(`^\d{6}$`)

// AppContext bundles the collaborators every flow controller needs.
type AppContext struct {
	API     api.Client
	Admin   api.AdminClient
	Session *session.Manager
	View    view.Port
	Log     logging.Logger
}

// fail logs the failure and surfaces its user-facing message. api.Error
// messages are shown as-is; anything else falls back to the error text.
func (c *AppContext) fail(ctx context.Context, op string, err error) {
	c.Log.Error(ctx, op+" failed", "error", err)
	if apiErr, ok := api.AsError(err); ok {
		c.View.Notify(view.SeverityError, apiErr.Message)
		return
	}
	c.View.Notify(view.SeverityError, err.Error())
}
