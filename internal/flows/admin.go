package flows

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/selfserveid/portal/internal/api"
	"github.com/selfserveid/portal/internal/timex"
	"github.com/selfserveid/portal/internal/view"
)

// AdminFlow drives the user and group administration tables: filtering,
// per-table sorting, debounced search, the approve-with-groups gate, and
// group CRUD. Every mutation is followed by a full re-fetch; the tables
// never patch rows locally.
type AdminFlow struct {
	ctx *AppContext

	search *timex.Debouncer

	mu           sync.Mutex
	usersSort    view.SortState
	groupsSort   view.SortState
	statusFilter string
	groupFilter  string
	searchTerm   string
}

func NewAdminFlow(ctx *AppContext) *AdminFlow {
	return &AdminFlow{
		ctx:        ctx,
		search:     timex.NewDebouncer(searchDelay),
		usersSort:  view.SortState{Field: "created_at", Order: "desc"},
		groupsSort: view.SortState{Field: "name", Order: "asc"},
	}
}

// requireAdmin gates every admin operation on the local session role. The
// server still enforces authorization; this only avoids doomed requests.
func (f *AdminFlow) requireAdmin() bool {
	s := f.ctx.Session.Current()
	if s == nil || !s.IsAdmin {
		f.ctx.View.Notify(view.SeverityError, "Admin access required")
		return false
	}
	return true
}

// fail handles an admin operation failure. A 401 means the session token is
// no longer accepted, so the session is torn down.
func (f *AdminFlow) fail(ctx context.Context, op string, err error) {
	if apiErr, ok := api.AsError(err); ok && apiErr.IsAuth() {
		f.ctx.Session.Teardown()
		f.ctx.Log.Warn(ctx, op+" rejected, session torn down", "error", err)
		f.ctx.View.Notify(view.SeverityError, "Session expired. Please log in again.")
		return
	}
	f.ctx.fail(ctx, op, err)
}

// LoadUsers fetches the user table with the active filters and sort, and
// refreshes the group list feeding the filter dropdown.
func (f *AdminFlow) LoadUsers(ctx context.Context) error {
	return f.loadUsers(ctx, nil)
}

// loadUsers is the staleness-aware load behind LoadUsers. A non-nil stale
// check is consulted after each response; a completion that has been
// superseded renders nothing.
func (f *AdminFlow) loadUsers(ctx context.Context, stale func() bool) error {
	if !f.requireAdmin() {
		return nil
	}

	f.mu.Lock()
	params := api.UserListParams{
		StatusFilter: f.statusFilter,
		GroupFilter:  f.groupFilter,
		Search:       f.searchTerm,
		SortField:    f.usersSort.Field,
		SortOrder:    f.usersSort.Order,
	}
	sort := f.usersSort
	f.mu.Unlock()

	f.ctx.View.Render(view.AdminUsersModel{Busy: true, Sort: sort})

	users, total, err := f.ctx.Admin.ListUsers(ctx, params)
	if err != nil {
		if stale == nil || !stale() {
			f.ctx.View.Render(view.AdminUsersModel{Sort: sort, Empty: true})
		}
		f.fail(ctx, "list users", err)
		return err
	}
	if stale != nil && stale() {
		return nil
	}

	groups, err := f.ctx.Admin.ListGroups(ctx, api.GroupListParams{})
	if err != nil {
		// The dropdown is secondary; the table still renders.
		f.ctx.Log.Warn(ctx, "group dropdown refresh failed", "error", err)
		groups = nil
	}
	if stale != nil && stale() {
		return nil
	}

	f.ctx.View.Render(view.AdminUsersModel{
		Users:        users,
		Total:        total,
		Sort:         sort,
		Empty:        len(users) == 0,
		Actions:      availableActions(users),
		GroupOptions: groups,
	})
	return nil
}

// SetFilters applies the status and group filters and reloads.
func (f *AdminFlow) SetFilters(ctx context.Context, status, groupID string) error {
	f.mu.Lock()
	f.statusFilter = status
	f.groupFilter = groupID
	f.mu.Unlock()
	return f.LoadUsers(ctx)
}

// SetSearch records the search term and schedules a debounced reload. A
// burst of keystrokes produces at most one request, and a response arriving
// after a newer term has fired is discarded before it can render.
func (f *AdminFlow) SetSearch(ctx context.Context, term string) {
	f.mu.Lock()
	f.searchTerm = strings.TrimSpace(term)
	f.mu.Unlock()

	f.search.Trigger(func(gen uint64) {
		_ = f.loadUsers(ctx, func() bool { return f.search.Stale(gen) })
	})
}

// ToggleUsersSort flips the order when the field is already active and
// otherwise switches to the field ascending, then reloads.
func (f *AdminFlow) ToggleUsersSort(ctx context.Context, field string) error {
	f.mu.Lock()
	f.usersSort = toggleSort(f.usersSort, field)
	f.mu.Unlock()
	return f.LoadUsers(ctx)
}

// ToggleGroupsSort is the group-table counterpart of ToggleUsersSort.
func (f *AdminFlow) ToggleGroupsSort(ctx context.Context, field string) error {
	f.mu.Lock()
	f.groupsSort = toggleSort(f.groupsSort, field)
	f.mu.Unlock()
	return f.LoadGroups(ctx)
}

// OpenApprove prepares the approval of a user. The group list is fetched
// fresh every time; when the system has no groups the approval is blocked
// with guidance instead of offering an empty selection.
func (f *AdminFlow) OpenApprove(ctx context.Context, userID, username string) error {
	if !f.requireAdmin() {
		return nil
	}

	groups, err := f.ctx.Admin.ListGroups(ctx, api.GroupListParams{})
	if err != nil {
		f.fail(ctx, "load groups for approval", err)
		return err
	}

	m := view.ApproveModel{UserID: userID, Username: username, Groups: groups}
	if len(groups) == 0 {
		m.Blocked = true
		m.Guidance = "No groups exist yet. Create a group before approving users."
	}
	f.ctx.View.Render(m)
	return nil
}

// ConfirmApprove activates the user into the selected groups. Approval
// without at least one group is rejected locally; a confirmed approval
// issues exactly one activation request followed by a reload.
func (f *AdminFlow) ConfirmApprove(ctx context.Context, userID string, groupIDs []string) error {
	if !f.requireAdmin() {
		return nil
	}
	if len(groupIDs) == 0 {
		f.ctx.View.Notify(view.SeverityError, "Select at least one group to approve this user")
		return nil
	}

	if err := f.ctx.Admin.ActivateUser(ctx, userID, groupIDs); err != nil {
		f.fail(ctx, "activate user", err)
		return err
	}
	f.ctx.View.Notify(view.SeveritySuccess, "User approved")
	return f.LoadUsers(ctx)
}

// Reject declines a pending-approval user. confirmed reflects an explicit
// operator confirmation; without it nothing happens.
func (f *AdminFlow) Reject(ctx context.Context, userID string, confirmed bool) error {
	if !confirmed || !f.requireAdmin() {
		return nil
	}
	if err := f.ctx.Admin.RejectUser(ctx, userID); err != nil {
		f.fail(ctx, "reject user", err)
		return err
	}
	f.ctx.View.Notify(view.SeveritySuccess, "User rejected")
	return f.LoadUsers(ctx)
}

// Revoke deactivates an active user. Same confirmation contract as Reject.
func (f *AdminFlow) Revoke(ctx context.Context, userID string, confirmed bool) error {
	if !confirmed || !f.requireAdmin() {
		return nil
	}
	if err := f.ctx.Admin.RevokeUser(ctx, userID); err != nil {
		f.fail(ctx, "revoke user", err)
		return err
	}
	f.ctx.View.Notify(view.SeveritySuccess, "User access revoked")
	return f.LoadUsers(ctx)
}

// LoadGroups fetches the group table with the active sort.
func (f *AdminFlow) LoadGroups(ctx context.Context) error {
	if !f.requireAdmin() {
		return nil
	}

	f.mu.Lock()
	params := api.GroupListParams{
		Search:    f.searchTerm,
		SortField: f.groupsSort.Field,
		SortOrder: f.groupsSort.Order,
	}
	sort := f.groupsSort
	f.mu.Unlock()

	f.ctx.View.Render(view.AdminGroupsModel{Busy: true, Sort: sort})

	groups, err := f.ctx.Admin.ListGroups(ctx, params)
	if err != nil {
		f.ctx.View.Render(view.AdminGroupsModel{Sort: sort, Empty: true})
		f.fail(ctx, "list groups", err)
		return err
	}

	f.ctx.View.Render(view.AdminGroupsModel{
		Groups: groups,
		Sort:   sort,
		Empty:  len(groups) == 0,
	})
	return nil
}

// CreateGroup creates a group. The name is trimmed and must be non-empty;
// an empty name never produces a request.
func (f *AdminFlow) CreateGroup(ctx context.Context, name, description string) error {
	if !f.requireAdmin() {
		return nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		f.ctx.View.Notify(view.SeverityError, "Group name is required")
		return nil
	}

	if _, err := f.ctx.Admin.CreateGroup(ctx, name, strings.TrimSpace(description)); err != nil {
		f.fail(ctx, "create group", err)
		return err
	}
	f.ctx.View.Notify(view.SeveritySuccess, "Group created")
	return f.LoadGroups(ctx)
}

// UpdateGroup renames or re-describes a group under the same name rule as
// CreateGroup.
func (f *AdminFlow) UpdateGroup(ctx context.Context, groupID, name, description string) error {
	if !f.requireAdmin() {
		return nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		f.ctx.View.Notify(view.SeverityError, "Group name is required")
		return nil
	}

	if _, err := f.ctx.Admin.UpdateGroup(ctx, groupID, name, strings.TrimSpace(description)); err != nil {
		f.fail(ctx, "update group", err)
		return err
	}
	f.ctx.View.Notify(view.SeveritySuccess, "Group updated")
	return f.LoadGroups(ctx)
}

// DeleteGroup removes a group after explicit confirmation.
func (f *AdminFlow) DeleteGroup(ctx context.Context, groupID string, confirmed bool) error {
	if !confirmed || !f.requireAdmin() {
		return nil
	}
	if err := f.ctx.Admin.DeleteGroup(ctx, groupID); err != nil {
		f.fail(ctx, "delete group", err)
		return err
	}
	f.ctx.View.Notify(view.SeveritySuccess, "Group deleted")
	return f.LoadGroups(ctx)
}

// GroupMembers shows the member list of one group.
func (f *AdminFlow) GroupMembers(ctx context.Context, groupID string) error {
	if !f.requireAdmin() {
		return nil
	}
	g, err := f.ctx.Admin.GetGroup(ctx, groupID)
	if err != nil {
		f.fail(ctx, "load group members", err)
		return err
	}
	f.ctx.View.Render(view.GroupMembersModel{GroupName: g.Name, Members: g.Members})
	return nil
}

// AssignUserGroups adds a user to the given groups and reloads the user
// table. Deployments on the legacy credential scheme do not support this;
// the limitation is surfaced rather than treated as a failure.
func (f *AdminFlow) AssignUserGroups(ctx context.Context, userID string, groupIDs []string) error {
	if !f.requireAdmin() {
		return nil
	}
	if len(groupIDs) == 0 {
		return nil
	}
	if err := f.ctx.Admin.AssignUserGroups(ctx, userID, groupIDs); err != nil {
		if errors.Is(err, api.ErrUnsupported) {
			f.ctx.View.Notify(view.SeverityWarning, "Group management is not supported by this server")
			return nil
		}
		f.fail(ctx, "assign user groups", err)
		return err
	}
	f.ctx.View.Notify(view.SeveritySuccess, "Groups updated")
	return f.LoadUsers(ctx)
}

// RemoveUserFromGroup removes a single membership and reloads.
func (f *AdminFlow) RemoveUserFromGroup(ctx context.Context, userID, groupID string) error {
	if !f.requireAdmin() {
		return nil
	}
	if err := f.ctx.Admin.RemoveUserFromGroup(ctx, userID, groupID); err != nil {
		if errors.Is(err, api.ErrUnsupported) {
			f.ctx.View.Notify(view.SeverityWarning, "Group management is not supported by this server")
			return nil
		}
		f.fail(ctx, "remove user from group", err)
		return err
	}
	f.ctx.View.Notify(view.SeveritySuccess, "Groups updated")
	return f.LoadUsers(ctx)
}

// Reset cancels any pending debounced search and restores default sorts and
// filters.
func (f *AdminFlow) Reset() {
	f.search.Cancel()
	f.mu.Lock()
	f.usersSort = view.SortState{Field: "created_at", Order: "desc"}
	f.groupsSort = view.SortState{Field: "name", Order: "asc"}
	f.statusFilter = ""
	f.groupFilter = ""
	f.searchTerm = ""
	f.mu.Unlock()
}

func toggleSort(s view.SortState, field string) view.SortState {
	if s.Field == field {
		if s.Order == "asc" {
			s.Order = "desc"
		} else {
			s.Order = "asc"
		}
		return s
	}
	return view.SortState{Field: field, Order: "asc"}
}

// availableActions maps each user's status to the admin actions the surface
// offers. The server remains authoritative; this only shapes the UI.
func availableActions(users []api.AdminUser) map[string][]view.UserAction {
	actions := make(map[string][]view.UserAction, len(users))
	for _, u := range users {
		switch u.Status {
		case api.StatusComplete:
			actions[u.ID] = []view.UserAction{view.ActionApprove, view.ActionReject}
		case api.StatusActive:
			actions[u.ID] = []view.UserAction{view.ActionRevoke}
		}
	}
	return actions
}
