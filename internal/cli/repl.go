package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool

	Signup(ctx context.Context) error
	VerifyPhone(ctx context.Context) error
	Resend(ctx context.Context, channel string) error
	Status(ctx context.Context, username string) error
	Enroll(ctx context.Context) error
	Login(ctx context.Context) error
	AdminLogin(ctx context.Context) error

	Profile(ctx context.Context) error
	UpdateProfile(ctx context.Context) error
	Logout(ctx context.Context) error

	Users(ctx context.Context, term string) error
	Groups(ctx context.Context) error
	SortUsers(ctx context.Context, field string) error
	SortGroups(ctx context.Context, field string) error
	Approve(ctx context.Context, userID string) error
	Reject(ctx context.Context, userID string) error
	Revoke(ctx context.Context, userID string) error
	CreateGroup(ctx context.Context) error
	DeleteGroup(ctx context.Context, groupID string) error
	Members(ctx context.Context, groupID string) error
}

// runREPL starts a simple read–eval–print loop for the portal CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help             — show available commands
//	  - signup           — create an account
//	  - verify           — enter the SMS verification code
//	  - resend <ch>      — resend verification (email or phone)
//	  - status [user]    — look up a profile's verification status
//	  - enroll           — enroll in MFA
//	  - login            — authenticate
//	  - admin            — authenticate against the admin endpoint
//	  - exit | quit      — leave the program
//
//	Logged in:
//	  - profile, update, status, logout — plus, for admins:
//	  - users [term], groups, sort users|groups <field>,
//	    approve|reject|revoke <id>, newgroup, delgroup <id>, members <id>
//
// Any errors returned by command handlers are ignored here; handlers notify
// the user through the view port. This keeps the REPL loop resilient and
// focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("portal> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printHelp(a)

		case "signup":
			_ = a.Signup(ctx)

		case "verify":
			_ = a.VerifyPhone(ctx)

		case "resend":
			if len(args) == 0 || (args[0] != "email" && args[0] != "phone") {
				printlnFn("Usage: resend email|phone")
				continue
			}
			_ = a.Resend(ctx, args[0])

		case "status":
			username := ""
			if len(args) > 0 {
				username = args[0]
			}
			_ = a.Status(ctx, username)

		case "enroll":
			_ = a.Enroll(ctx)

		case "login":
			_ = a.Login(ctx)

		case "admin":
			_ = a.AdminLogin(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "update":
			_ = a.UpdateProfile(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "u", "users":
			term := ""
			if len(args) > 0 {
				term = strings.Join(args, " ")
			}
			_ = a.Users(ctx, term)

		case "g", "groups":
			_ = a.Groups(ctx)

		case "sort":
			if len(args) < 2 {
				printlnFn("Usage: sort users|groups <field>")
				continue
			}
			switch args[0] {
			case "users":
				_ = a.SortUsers(ctx, args[1])
			case "groups":
				_ = a.SortGroups(ctx, args[1])
			default:
				printlnFn("Usage: sort users|groups <field>")
			}

		case "approve":
			if len(args) == 0 {
				printlnFn("Usage: approve <user-id>")
				continue
			}
			_ = a.Approve(ctx, args[0])

		case "reject":
			if len(args) == 0 {
				printlnFn("Usage: reject <user-id>")
				continue
			}
			_ = a.Reject(ctx, args[0])

		case "revoke":
			if len(args) == 0 {
				printlnFn("Usage: revoke <user-id>")
				continue
			}
			_ = a.Revoke(ctx, args[0])

		case "newgroup":
			_ = a.CreateGroup(ctx)

		case "delgroup":
			if len(args) == 0 {
				printlnFn("Usage: delgroup <group-id>")
				continue
			}
			_ = a.DeleteGroup(ctx, args[0])

		case "members":
			if len(args) == 0 {
				printlnFn("Usage: members <group-id>")
				continue
			}
			_ = a.Members(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func printHelp(a execIface) {
	if !a.isLoggedIn() {
		printlnFn("Available commands: signup, verify, resend email|phone, status [user], enroll, login, admin, exit")
		return
	}
	if a.isAdmin() {
		printlnFn("Available commands: profile, update, status [user], (u)sers [term], (g)roups, sort users|groups <field>, approve|reject|revoke <id>, newgroup, delgroup <id>, members <id>, logout, exit")
		return
	}
	printlnFn("Available commands: profile, update, status [user], logout, exit")
}
