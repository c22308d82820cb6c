// Package view defines the rendering capability flow controllers depend on.
// Controllers never touch a concrete rendering surface; they emit view
// models through a Port, which the terminal front-end (or a test stub)
// implements. This keeps every state transition headless-testable.
package view

import "github.com/selfserveid/portal/internal/api"

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Port renders view models and surfaces transient notifications.
type Port interface {
	Render(m Model)

	// Notify surfaces a short-lived, auto-dismissing message. It must never
	// block the caller.
	Notify(severity Severity, message string)
}

// Model is the marker for renderable view models.
type Model interface {
	viewModel()
}

// Control models a single actionable affordance: its current label and
// whether it accepts input. Cooldown-bearing controls change label while
// counting down and restore the original label afterward.
type Control struct {
	Label   string
	Enabled bool
}

// SortState is the active sort of one admin table; exactly one field is
// active at a time.
type SortState struct {
	Field string
	Order string // "asc" or "desc"
}

type VerificationModel struct {
	Busy bool
	// HasPendingSignup distinguishes the empty state from an in-progress one.
	HasPendingSignup bool
	Username         string
	EmailHint        string
	PhoneHint        string
	EmailVerified    bool
	PhoneVerified    bool
	EmailResend      Control
	PhoneResend      Control
	VerifyPhone      Control
	// CodeEntryEnabled is false once verification is complete.
	CodeEntryEnabled bool
	Complete         bool
}

type EnrollModel struct {
	Busy     bool
	Username string
	// Method is the selected method, preserved across failures so only the
	// password needs re-entering.
	Method string
	// Fields below are set only after a successful enrollment, branching on
	// the server-declared method.
	Done        bool
	Secret      string
	OtpauthURI  string
	PhoneNumber string
}

type LoginModel struct {
	Busy  bool
	Admin bool
	// SMSAvailable controls whether the send-code affordance is shown; it is
	// advisory only and never gates submission.
	SMSAvailable bool
	SMSHint      string
	SendSMS      Control
	LoggedIn     bool
}

type ProfileModel struct {
	Busy    bool
	Profile *api.Profile
	// Verified channels cannot be edited anymore.
	EmailReadOnly bool
	PhoneReadOnly bool
}

type ProfileStatusModel struct {
	Status *api.ProfileStatusResponse
}

// UserAction is an admin action available for a listed user, derived from
// the user's status on the UI surface only; the server stays authoritative.
type UserAction string

const (
	ActionApprove UserAction = "approve"
	ActionReject  UserAction = "reject"
	ActionRevoke  UserAction = "revoke"
)

type AdminUsersModel struct {
	Busy    bool
	Users   []api.AdminUser
	Total   int
	Sort    SortState
	Empty   bool
	Actions map[string][]UserAction // keyed by user id
	// GroupOptions feeds the group-filter dropdown; refreshed on every load.
	GroupOptions []api.Group
}

type AdminGroupsModel struct {
	Busy   bool
	Groups []api.Group
	Sort   SortState
	Empty  bool
}

type GroupMembersModel struct {
	GroupName string
	Members   []api.GroupMember
}

// ApproveModel is the group-selection affordance opened for a user approval.
// Blocked is set when the system has no groups at all; Guidance then tells
// the operator to create one first.
type ApproveModel struct {
	UserID   string
	Username string
	Groups   []api.Group
	Blocked  bool
	Guidance string
}

func (VerificationModel) viewModel()  {}
func (EnrollModel) viewModel()        {}
func (LoginModel) viewModel()         {}
func (ProfileModel) viewModel()       {}
func (ProfileStatusModel) viewModel() {}
func (AdminUsersModel) viewModel()    {}
func (AdminGroupsModel) viewModel()   {}
func (GroupMembersModel) viewModel()  {}
func (ApproveModel) viewModel()       {}
