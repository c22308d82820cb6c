package flows

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/selfserveid/portal/internal/api"
	"github.com/selfserveid/portal/internal/view"
)

func TestUsernameBlur_BurstProducesSingleLookup(t *testing.T) {
	app, fa, _, fp := newTestApp(t)
	f := NewLoginFlow(app, false)

	fa.mfaStatusResp = &api.MFAStatusResponse{Enrolled: true, MFAMethod: api.MethodSMS, PhoneNumber: "+1*******567"}

	f.UsernameBlur(context.Background(), "a")
	f.UsernameBlur(context.Background(), "al")
	f.UsernameBlur(context.Background(), "alice")

	require.Eventually(t, func() bool {
		return fa.countCalls("mfa-status:") == 1
	}, 3*time.Second, 10*time.Millisecond)

	// Only the final username was looked up.
	require.Equal(t, []string{"mfa-status:alice"}, fa.recorded())

	require.Eventually(t, func() bool {
		m, ok := fp.lastModel().(view.LoginModel)
		return ok && m.SMSAvailable && m.SMSHint == "+1*******567"
	}, time.Second, 10*time.Millisecond)

	// No further lookup fires later.
	time.Sleep(700 * time.Millisecond)
	require.Equal(t, 1, fa.countCalls("mfa-status:"))
}

func TestUsernameBlur_EmptyCancelsAndClears(t *testing.T) {
	app, fa, _, fp := newTestApp(t)
	f := NewLoginFlow(app, false)

	f.UsernameBlur(context.Background(), "alice")
	f.UsernameBlur(context.Background(), "")

	m := fp.lastModel().(view.LoginModel)
	require.False(t, m.SMSAvailable)

	time.Sleep(700 * time.Millisecond)
	require.Equal(t, 0, fa.countCalls("mfa-status:"))
}

func TestUsernameBlur_LookupFailureIsSilent(t *testing.T) {
	app, fa, _, fp := newTestApp(t)
	f := NewLoginFlow(app, false)

	fa.mfaStatusErr = &api.Error{Message: "boom", StatusCode: 500}
	f.UsernameBlur(context.Background(), "alice")

	require.Eventually(t, func() bool {
		return fa.countCalls("mfa-status:") == 1
	}, 3*time.Second, 10*time.Millisecond)
	require.Empty(t, fp.notifications())
}

func TestSendSMSCode_RequiresBothCredentials(t *testing.T) {
	app, fa, _, fp := newTestApp(t)
	f := NewLoginFlow(app, false)

	require.NoError(t, f.SendSMSCode(context.Background(), "alice", ""))
	require.NoError(t, f.SendSMSCode(context.Background(), "", "pw"))
	require.Empty(t, fa.recorded())
	require.Equal(t, view.SeverityError, fp.lastNote().severity)
}

func TestSendSMSCode_CooldownSizedByServer(t *testing.T) {
	app, fa, _, fp := newTestApp(t)
	f := NewLoginFlow(app, false)

	fa.smsResp = &api.SendSMSCodeResponse{Success: true, PhoneNumber: "+1*******567", ExpiresInSeconds: 90}
	require.NoError(t, f.SendSMSCode(context.Background(), "alice", "pw"))
	require.Equal(t, 1, fa.countCalls("send-sms:alice"))

	m := fp.lastModel().(view.LoginModel)
	require.False(t, m.SendSMS.Enabled)
	require.Equal(t, "Resend (90s)", m.SendSMS.Label)

	// Second request during the cooldown never goes out.
	require.NoError(t, f.SendSMSCode(context.Background(), "alice", "pw"))
	require.Equal(t, 1, fa.countCalls("send-sms:alice"))
}

func TestSendSMSCode_FailureStartsNoCooldown(t *testing.T) {
	app, fa, _, fp := newTestApp(t)
	f := NewLoginFlow(app, false)

	fa.smsErr = &api.Error{Message: "Account not active", StatusCode: 403}
	require.Error(t, f.SendSMSCode(context.Background(), "alice", "pw"))
	require.Equal(t, "Account not active", fp.lastNote().message)

	m := fp.lastModel().(view.LoginModel)
	require.True(t, m.SendSMS.Enabled)

	fa.smsErr = nil
	require.NoError(t, f.SendSMSCode(context.Background(), "alice", "pw"))
	require.Equal(t, 2, fa.countCalls("send-sms:alice"))
}

func TestSubmit_RejectsNonSixDigitCode(t *testing.T) {
	app, fa, _, fp := newTestApp(t)
	f := NewLoginFlow(app, false)

	for _, code := range []string{"", "12345", "abcdef"} {
		require.NoError(t, f.Submit(context.Background(), "alice", "pw", code))
	}
	require.Empty(t, fa.recorded())
	require.Equal(t, view.SeverityError, fp.lastNote().severity)
}

func TestSubmit_TokenEstablishesSession(t *testing.T) {
	app, fa, _, fp := newTestApp(t)
	f := NewLoginFlow(app, false)

	fa.loginResp = &api.LoginResponse{Success: true, Token: "tok-1", Username: "alice", IsAdmin: true}
	require.NoError(t, f.Submit(context.Background(), "ALICE", "pw", "123456"))

	s := app.Session.Current()
	require.NotNil(t, s)
	require.Equal(t, "alice", s.Username)
	require.True(t, s.IsAdmin)
	require.Equal(t, "tok-1", app.Session.Token())

	m := fp.lastModel().(view.LoginModel)
	require.True(t, m.LoggedIn)
}

func TestSubmit_FallsBackToSubmittedUsername(t *testing.T) {
	app, fa, _, _ := newTestApp(t)
	f := NewLoginFlow(app, false)

	fa.loginResp = &api.LoginResponse{Success: true, Token: "tok-1"}
	require.NoError(t, f.Submit(context.Background(), "alice", "pw", "123456"))
	require.Equal(t, "alice", app.Session.Current().Username)
}

func TestSubmit_LegacySuccessWithoutToken(t *testing.T) {
	app, fa, _, fp := newTestApp(t)
	f := NewLoginFlow(app, false)

	fa.loginResp = &api.LoginResponse{Success: true, Message: "Login successful"}
	require.NoError(t, f.Submit(context.Background(), "alice", "pw", "123456"))

	require.Nil(t, app.Session.Current())
	require.Equal(t, view.SeveritySuccess, fp.lastNote().severity)
}

func TestSubmit_FailureEstablishesNoSession(t *testing.T) {
	app, fa, _, fp := newTestApp(t)
	f := NewLoginFlow(app, false)

	fa.loginErr = &api.Error{Message: "Invalid credentials or MFA code", StatusCode: 401}
	require.Error(t, f.Submit(context.Background(), "alice", "pw", "123456"))

	require.Nil(t, app.Session.Current())
	require.Equal(t, "Invalid credentials or MFA code", fp.lastNote().message)
}

func TestSubmit_AdminFlowUsesAdminEndpoint(t *testing.T) {
	app, fa, _, _ := newTestApp(t)
	f := NewLoginFlow(app, true)

	fa.loginResp = &api.LoginResponse{Success: true, Token: "tok-1", Username: "root", IsAdmin: true}
	require.NoError(t, f.Submit(context.Background(), "root", "pw", "123456"))
	require.Equal(t, []string{"admin-login:root"}, fa.recorded())
}
