package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/atotto/clipboard"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/selfserveid/portal/internal/view"
)

// clipboardWrite is a test seam for clipboard access; copying is best-effort
// and failures are never surfaced as errors.
var clipboardWrite = clipboard.WriteAll

// TerminalPort renders view models as plain text. It is the only view.Port
// implementation shipped with the CLI; flows stay unaware of it.
type TerminalPort struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTerminalPort(w io.Writer) *TerminalPort {
	return &TerminalPort{w: w}
}

func (p *TerminalPort) Notify(severity view.Severity, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch severity {
	case view.SeveritySuccess:
		fmt.Fprintf(p.w, "[OK] %s\n", message)
	case view.SeverityWarning:
		fmt.Fprintf(p.w, "[WARN] %s\n", message)
	default:
		fmt.Fprintf(p.w, "[ERR] %s\n", message)
	}
}

func (p *TerminalPort) Render(m view.Model) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch v := m.(type) {
	case view.VerificationModel:
		p.renderVerification(v)
	case view.EnrollModel:
		p.renderEnroll(v)
	case view.LoginModel:
		p.renderLogin(v)
	case view.ProfileModel:
		p.renderProfile(v)
	case view.ProfileStatusModel:
		p.renderProfileStatus(v)
	case view.AdminUsersModel:
		p.renderAdminUsers(v)
	case view.AdminGroupsModel:
		p.renderAdminGroups(v)
	case view.GroupMembersModel:
		p.renderGroupMembers(v)
	case view.ApproveModel:
		p.renderApprove(v)
	}
}

func checkmark(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func controlLabel(c view.Control) string {
	if c.Enabled {
		return c.Label
	}
	return c.Label + " (unavailable)"
}

func (p *TerminalPort) renderVerification(m view.VerificationModel) {
	// A terminal cannot repaint: in-flight states are skipped here and in
	// the table renderers below; the completion render is what gets shown.
	if m.Busy {
		return
	}
	if !m.HasPendingSignup {
		fmt.Fprintln(p.w, "No signup in progress.")
		return
	}
	if m.Complete {
		fmt.Fprintf(p.w, "Verification complete for %s. You can now enroll in MFA.\n", m.Username)
		return
	}
	fmt.Fprintf(p.w, "Verifying %s\n", m.Username)
	fmt.Fprintf(p.w, "  email %-30s verified: %-3s  [%s]\n", m.EmailHint, checkmark(m.EmailVerified), controlLabel(m.EmailResend))
	fmt.Fprintf(p.w, "  phone %-30s verified: %-3s  [%s]\n", m.PhoneHint, checkmark(m.PhoneVerified), controlLabel(m.PhoneResend))
}

func (p *TerminalPort) renderEnroll(m view.EnrollModel) {
	if !m.Done {
		return
	}
	if m.PhoneNumber != "" {
		fmt.Fprintf(p.w, "SMS codes will be sent to %s at login.\n", m.PhoneNumber)
		return
	}

	fmt.Fprintln(p.w, "Scan this code with your authenticator app:")
	if qr, err := qrcode.New(m.OtpauthURI, qrcode.Medium); err == nil {
		fmt.Fprintln(p.w, qr.ToSmallString(false))
	} else {
		fmt.Fprintln(p.w, m.OtpauthURI)
	}
	fmt.Fprintf(p.w, "Secret: %s\n", m.Secret)
	if err := clipboardWrite(m.Secret); err == nil {
		fmt.Fprintln(p.w, "(secret copied to clipboard)")
	}
}

func (p *TerminalPort) renderLogin(m view.LoginModel) {
	if m.LoggedIn {
		return
	}
	if m.SMSAvailable {
		fmt.Fprintf(p.w, "SMS codes go to %s  [%s]\n", m.SMSHint, controlLabel(m.SendSMS))
	}
}

func (p *TerminalPort) renderProfile(m view.ProfileModel) {
	if m.Busy || m.Profile == nil {
		return
	}
	pr := m.Profile
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "username\t%s\n", pr.Username)
	fmt.Fprintf(tw, "name\t%s %s\n", pr.FirstName, pr.LastName)
	email := pr.Email
	if m.EmailReadOnly {
		email += " (verified, read-only)"
	}
	fmt.Fprintf(tw, "email\t%s\n", email)
	phone := pr.PhoneCountryCode + pr.PhoneNumber
	if m.PhoneReadOnly {
		phone += " (verified, read-only)"
	}
	fmt.Fprintf(tw, "phone\t%s\n", phone)
	fmt.Fprintf(tw, "mfa\t%s\n", pr.MFAMethod)
	fmt.Fprintf(tw, "status\t%s\n", pr.Status)
	if len(pr.Groups) > 0 {
		names := make([]string, len(pr.Groups))
		for i, g := range pr.Groups {
			names[i] = g.Name
		}
		fmt.Fprintf(tw, "groups\t%s\n", strings.Join(names, ", "))
	}
	tw.Flush()
}

func (p *TerminalPort) renderProfileStatus(m view.ProfileStatusModel) {
	s := m.Status
	if s == nil {
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "username\t%s\n", s.Username)
	fmt.Fprintf(tw, "status\t%s\n", s.Status)
	fmt.Fprintf(tw, "email\t%s\tverified: %s\n", s.Email, checkmark(s.EmailVerified))
	fmt.Fprintf(tw, "phone\t%s\tverified: %s\n", s.Phone, checkmark(s.PhoneVerified))
	tw.Flush()
}

func (p *TerminalPort) renderAdminUsers(m view.AdminUsersModel) {
	if m.Busy {
		return
	}
	if m.Empty {
		fmt.Fprintln(p.w, "No users match the current filters.")
		return
	}
	fmt.Fprintf(p.w, "%d users (sorted by %s %s)\n", m.Total, m.Sort.Field, m.Sort.Order)
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tSTATUS\tEMAIL\tGROUPS\tACTIONS")
	for _, u := range m.Users {
		names := make([]string, len(u.Groups))
		for i, g := range u.Groups {
			names[i] = g.Name
		}
		actions := make([]string, len(m.Actions[u.ID]))
		for i, a := range m.Actions[u.ID] {
			actions[i] = string(a)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Username, u.Status, u.Email,
			strings.Join(names, ","), strings.Join(actions, ","))
	}
	tw.Flush()
}

func (p *TerminalPort) renderAdminGroups(m view.AdminGroupsModel) {
	if m.Busy {
		return
	}
	if m.Empty {
		fmt.Fprintln(p.w, "No groups defined.")
		return
	}
	fmt.Fprintf(p.w, "groups (sorted by %s %s)\n", m.Sort.Field, m.Sort.Order)
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMEMBERS\tDESCRIPTION")
	for _, g := range m.Groups {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", g.ID, g.Name, g.MemberCount, g.Description)
	}
	tw.Flush()
}

func (p *TerminalPort) renderGroupMembers(m view.GroupMembersModel) {
	fmt.Fprintf(p.w, "members of %s:\n", m.GroupName)
	if len(m.Members) == 0 {
		fmt.Fprintln(p.w, "  (none)")
		return
	}
	for _, member := range m.Members {
		fmt.Fprintf(p.w, "  %s\t%s\n", member.Username, member.FullName)
	}
}

func (p *TerminalPort) renderApprove(m view.ApproveModel) {
	if m.Blocked {
		fmt.Fprintf(p.w, "Cannot approve %s: %s\n", m.Username, m.Guidance)
		return
	}
	fmt.Fprintf(p.w, "Approving %s. Available groups:\n", m.Username)
	for _, g := range m.Groups {
		fmt.Fprintf(p.w, "  %s\t%s\n", g.ID, g.Name)
	}
}
