package flows

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/selfserveid/portal/internal/api"
	"github.com/selfserveid/portal/internal/logging"
	"github.com/selfserveid/portal/internal/session"
	"github.com/selfserveid/portal/internal/view"
)

// fakeAPI records every call and answers from scripted responses. Nil
// responses fall back to benign defaults so tests only script what they
// assert on.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	mfaStatusResp *api.MFAStatusResponse
	mfaStatusErr  error
	signupResp    *api.SignupResponse
	signupErr     error
	verifyResp    *api.VerificationResponse
	verifyErr     error
	resendErr     error
	enrollResp    *api.EnrollResponse
	enrollErr     error
	smsResp       *api.SendSMSCodeResponse
	smsErr        error
	loginResp     *api.LoginResponse
	loginErr      error
	profile       *api.Profile
	profileErr    error
	statusResp    *api.ProfileStatusResponse
	statusErr     error

	lastUpdate api.ProfileUpdate
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeAPI) countCalls(prefix string) int {
	n := 0
	for _, c := range f.recorded() {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (f *fakeAPI) Healthz(context.Context) (*api.HealthResponse, error) {
	f.record("healthz")
	return &api.HealthResponse{Status: "ok"}, nil
}

func (f *fakeAPI) MFAMethods(context.Context) (*api.MFAMethodsResponse, error) {
	f.record("mfa-methods")
	return &api.MFAMethodsResponse{Methods: []string{api.MethodTOTP}}, nil
}

func (f *fakeAPI) MFAStatus(_ context.Context, username string) (*api.MFAStatusResponse, error) {
	f.record("mfa-status:" + username)
	if f.mfaStatusErr != nil {
		return nil, f.mfaStatusErr
	}
	if f.mfaStatusResp != nil {
		return f.mfaStatusResp, nil
	}
	return &api.MFAStatusResponse{}, nil
}

func (f *fakeAPI) Signup(_ context.Context, req api.SignupRequest) (*api.SignupResponse, error) {
	f.record(fmt.Sprintf("signup:%s:%s", req.Username, req.Email))
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	if f.signupResp != nil {
		return f.signupResp, nil
	}
	return &api.SignupResponse{Success: true}, nil
}

func (f *fakeAPI) VerifyEmail(_ context.Context, username, token string) (*api.VerificationResponse, error) {
	f.record("verify-email:" + username + ":" + token)
	return f.verification()
}

func (f *fakeAPI) VerifyPhone(_ context.Context, username, code string) (*api.VerificationResponse, error) {
	f.record("verify-phone:" + username + ":" + code)
	return f.verification()
}

func (f *fakeAPI) verification() (*api.VerificationResponse, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	if f.verifyResp != nil {
		return f.verifyResp, nil
	}
	return &api.VerificationResponse{Success: true, ProfileStatus: api.StatusPending}, nil
}

func (f *fakeAPI) ResendVerification(_ context.Context, username, channel string) error {
	f.record("resend:" + username + ":" + channel)
	return f.resendErr
}

func (f *fakeAPI) Enroll(_ context.Context, req api.EnrollRequest) (*api.EnrollResponse, error) {
	f.record(fmt.Sprintf("enroll:%s:%s", req.Username, req.MFAMethod))
	if f.enrollErr != nil {
		return nil, f.enrollErr
	}
	if f.enrollResp != nil {
		return f.enrollResp, nil
	}
	return &api.EnrollResponse{Success: true, MFAMethod: api.MethodTOTP, Secret: "SECRET", OtpauthURI: "otpauth://totp/x"}, nil
}

func (f *fakeAPI) SendSMSCode(_ context.Context, username, _ string) (*api.SendSMSCodeResponse, error) {
	f.record("send-sms:" + username)
	if f.smsErr != nil {
		return nil, f.smsErr
	}
	if f.smsResp != nil {
		return f.smsResp, nil
	}
	return &api.SendSMSCodeResponse{Success: true, ExpiresInSeconds: 60}, nil
}

func (f *fakeAPI) Login(_ context.Context, username, _, _ string) (*api.LoginResponse, error) {
	f.record("login:" + username)
	return f.loginResult()
}

func (f *fakeAPI) AdminLogin(_ context.Context, username, _, _ string) (*api.LoginResponse, error) {
	f.record("admin-login:" + username)
	return f.loginResult()
}

func (f *fakeAPI) loginResult() (*api.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if f.loginResp != nil {
		return f.loginResp, nil
	}
	return &api.LoginResponse{Success: true}, nil
}

func (f *fakeAPI) ProfileStatus(_ context.Context, username string) (*api.ProfileStatusResponse, error) {
	f.record("profile-status:" + username)
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	if f.statusResp != nil {
		return f.statusResp, nil
	}
	return &api.ProfileStatusResponse{Username: username}, nil
}

func (f *fakeAPI) GetProfile(_ context.Context, username string) (*api.Profile, error) {
	f.record("get-profile:" + username)
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	if f.profile != nil {
		return f.profile, nil
	}
	return &api.Profile{Username: username}, nil
}

func (f *fakeAPI) UpdateProfile(_ context.Context, username string, updates api.ProfileUpdate) (*api.Profile, error) {
	f.record("update-profile:" + username)
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	f.mu.Lock()
	f.lastUpdate = updates
	f.mu.Unlock()
	if f.profile != nil {
		return f.profile, nil
	}
	return &api.Profile{Username: username}, nil
}

// fakeAdmin records admin calls and answers from scripted responses.
type fakeAdmin struct {
	mu    sync.Mutex
	calls []string

	users       []api.AdminUser
	total       int
	usersErr    error
	// listUsersFn, when set, answers ListUsers instead of the fields above.
	// It runs outside the fake's lock so tests can block a call in flight.
	listUsersFn func(api.UserListParams) ([]api.AdminUser, int, error)
	groups      []api.Group
	groupsErr   error
	group       *api.Group
	groupErr    error
	mutationErr error

	lastUserParams  api.UserListParams
	lastGroupParams api.GroupListParams
	lastGroupIDs    []string
}

func (f *fakeAdmin) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAdmin) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeAdmin) countCalls(prefix string) int {
	n := 0
	for _, c := range f.recorded() {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (f *fakeAdmin) ListUsers(_ context.Context, params api.UserListParams) ([]api.AdminUser, int, error) {
	f.record("list-users")
	f.mu.Lock()
	f.lastUserParams = params
	fn := f.listUsersFn
	f.mu.Unlock()
	if fn != nil {
		return fn(params)
	}
	if f.usersErr != nil {
		return nil, 0, f.usersErr
	}
	return f.users, f.total, nil
}

func (f *fakeAdmin) ActivateUser(_ context.Context, userID string, groupIDs []string) error {
	f.record("activate:" + userID)
	f.mu.Lock()
	f.lastGroupIDs = groupIDs
	f.mu.Unlock()
	return f.mutationErr
}

func (f *fakeAdmin) RejectUser(_ context.Context, userID string) error {
	f.record("reject:" + userID)
	return f.mutationErr
}

func (f *fakeAdmin) RevokeUser(_ context.Context, userID string) error {
	f.record("revoke:" + userID)
	return f.mutationErr
}

func (f *fakeAdmin) ListGroups(_ context.Context, params api.GroupListParams) ([]api.Group, error) {
	f.record("list-groups")
	f.mu.Lock()
	f.lastGroupParams = params
	f.mu.Unlock()
	if f.groupsErr != nil {
		return nil, f.groupsErr
	}
	return f.groups, nil
}

func (f *fakeAdmin) CreateGroup(_ context.Context, name, _ string) (*api.Group, error) {
	f.record("create-group:" + name)
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	return &api.Group{ID: "g-new", Name: name}, nil
}

func (f *fakeAdmin) GetGroup(_ context.Context, groupID string) (*api.Group, error) {
	f.record("get-group:" + groupID)
	if f.groupErr != nil {
		return nil, f.groupErr
	}
	if f.group != nil {
		return f.group, nil
	}
	return &api.Group{ID: groupID}, nil
}

func (f *fakeAdmin) UpdateGroup(_ context.Context, groupID, name, _ string) (*api.Group, error) {
	f.record("update-group:" + groupID)
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	return &api.Group{ID: groupID, Name: name}, nil
}

func (f *fakeAdmin) DeleteGroup(_ context.Context, groupID string) error {
	f.record("delete-group:" + groupID)
	return f.mutationErr
}

func (f *fakeAdmin) UserGroups(_ context.Context, userID string) ([]api.Group, error) {
	f.record("user-groups:" + userID)
	return f.groups, f.groupsErr
}

func (f *fakeAdmin) AssignUserGroups(_ context.Context, userID string, groupIDs []string) error {
	f.record("assign-groups:" + userID)
	f.mu.Lock()
	f.lastGroupIDs = groupIDs
	f.mu.Unlock()
	return f.mutationErr
}

func (f *fakeAdmin) ReplaceUserGroups(_ context.Context, userID string, groupIDs []string) error {
	f.record("replace-groups:" + userID)
	f.mu.Lock()
	f.lastGroupIDs = groupIDs
	f.mu.Unlock()
	return f.mutationErr
}

func (f *fakeAdmin) RemoveUserFromGroup(_ context.Context, userID, groupID string) error {
	f.record("remove-group:" + userID + ":" + groupID)
	return f.mutationErr
}

type notification struct {
	severity view.Severity
	message  string
}

// fakePort records rendered models and notifications.
type fakePort struct {
	mu     sync.Mutex
	models []view.Model
	notes  []notification
}

func (p *fakePort) Render(m view.Model) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.models = append(p.models, m)
}

func (p *fakePort) Notify(severity view.Severity, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notes = append(p.notes, notification{severity: severity, message: message})
}

func (p *fakePort) allModels() []view.Model {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]view.Model, len(p.models))
	copy(out, p.models)
	return out
}

func (p *fakePort) lastModel() view.Model {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.models) == 0 {
		return nil
	}
	return p.models[len(p.models)-1]
}

func (p *fakePort) notifications() []notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notification, len(p.notes))
	copy(out, p.notes)
	return out
}

func (p *fakePort) lastNote() notification {
	notes := p.notifications()
	if len(notes) == 0 {
		return notification{}
	}
	return notes[len(notes)-1]
}

func newTestApp(t *testing.T) (*AppContext, *fakeAPI, *fakeAdmin, *fakePort) {
	t.Helper()
	fa := &fakeAPI{}
	fad := &fakeAdmin{}
	fp := &fakePort{}
	ctx := &AppContext{
		API:     fa,
		Admin:   fad,
		Session: session.NewManager(session.NewInMemoryTokenStore()),
		View:    fp,
		Log:     logging.NewTextLogger(io.Discard, slog.LevelDebug),
	}
	return ctx, fa, fad, fp
}

// loginAs establishes a session directly, bypassing the login flow.
func loginAs(t *testing.T, app *AppContext, username string, isAdmin bool) {
	t.Helper()
	if err := app.Session.Establish("tok", username, isAdmin); err != nil {
		t.Fatalf("establish session: %v", err)
	}
}
