// Package cli is the terminal front-end of the portal client: an App that
// wires the flow controllers together, interactive prompts, a plain-text
// view.Port implementation, and a REPL dispatching commands to the App.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/selfserveid/portal/internal/api"
	"github.com/selfserveid/portal/internal/config"
	"github.com/selfserveid/portal/internal/flows"
	"github.com/selfserveid/portal/internal/logging"
	"github.com/selfserveid/portal/internal/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

type App struct {
	config  *config.Config
	log     logging.Logger
	session *session.Manager
	api     api.Client

	verification *flows.VerificationFlow
	enroll       *flows.EnrollFlow
	login        *flows.LoginFlow
	adminLogin   *flows.LoginFlow
	profile      *flows.ProfileFlow
	admin        *flows.AdminFlow

	reader *bufio.Reader
	out    io.Writer

	smsEnabled bool
}

func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	tokenPath, err := session.DefaultTokenPath()
	if err != nil {
		return nil, err
	}

	mgr := session.NewManager(session.NewFileTokenStore(tokenPath))
	httpClient := api.NewHTTPClient(cfg.APIBaseURL, cfg.RequestTimeout, mgr)
	port := NewTerminalPort(os.Stdout)

	appCtx := &flows.AppContext{
		API:     httpClient,
		Admin:   api.NewTokenAdminClient(httpClient),
		Session: mgr,
		View:    port,
		Log:     log,
	}

	return &App{
		config:       cfg,
		log:          log,
		session:      mgr,
		api:          httpClient,
		verification: flows.NewVerificationFlow(appCtx),
		enroll:       flows.NewEnrollFlow(appCtx),
		login:        flows.NewLoginFlow(appCtx, false),
		adminLogin:   flows.NewLoginFlow(appCtx, true),
		profile:      flows.NewProfileFlow(appCtx),
		admin:        flows.NewAdminFlow(appCtx),
		reader:       bufio.NewReader(os.Stdin),
		out:          os.Stdout,
	}, nil
}

// Run settles the session, consumes any one-shot verification parameters,
// probes the backend, and enters the REPL. The session restore completes
// before any command can run.
func (a *App) Run(ctx context.Context) {
	if s := a.session.Restore(); s != nil {
		a.log.Info(ctx, "session restored", "username", s.Username, "admin", s.IsAdmin)
		printlnFn("Welcome back,", s.Username)
	}

	// Launch verification parameters are consumed exactly once and never
	// persisted.
	if a.config.VerifyUsername != "" && a.config.VerifyToken != "" {
		_ = a.verification.VerifyEmailToken(ctx, a.config.VerifyUsername, a.config.VerifyToken)
		a.config.VerifyUsername = ""
		a.config.VerifyToken = ""
	}

	a.probe(ctx)

	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

// probe checks backend reachability and records whether SMS delivery is
// enabled. The result only shapes hints; it never gates any operation.
func (a *App) probe(ctx context.Context) {
	resp, err := a.api.Healthz(ctx)
	if err != nil {
		a.log.Warn(ctx, "backend health probe failed", "error", err)
		printlnFn("Warning: backend is not reachable at", a.config.APIBaseURL)
		return
	}
	a.smsEnabled = resp.SMSEnabled
}

func (a *App) isLoggedIn() bool {
	return a.session.Current() != nil
}

func (a *App) isAdmin() bool {
	s := a.session.Current()
	return s != nil && s.IsAdmin
}

func (a *App) status() string {
	s := a.session.Current()
	if s == nil {
		return "guest"
	}
	if s.IsAdmin {
		return s.Username + " (admin)"
	}
	return s.Username
}

// Logout tears the session down and resets every flow's surface state,
// including any pending signup and its cooldown timers.
func (a *App) Logout(context.Context) error {
	a.session.Teardown()
	a.verification.Reset()
	a.enroll.Reset()
	a.login.Reset()
	a.adminLogin.Reset()
	a.profile.Reset()
	a.admin.Reset()
	printlnFn("Logged out")
	return nil
}
