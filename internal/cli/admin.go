package cli

import (
	"context"
	"strings"
)

// Users loads the admin user table; a non-empty term schedules the
// debounced search instead.
func (a *App) Users(ctx context.Context, term string) error {
	if term != "" {
		a.admin.SetSearch(ctx, term)
		return nil
	}
	return a.admin.LoadUsers(ctx)
}

// Groups loads the admin group table.
func (a *App) Groups(ctx context.Context) error {
	return a.admin.LoadGroups(ctx)
}

// SortUsers toggles the user table sort on the given field and reloads.
func (a *App) SortUsers(ctx context.Context, field string) error {
	return a.admin.ToggleUsersSort(ctx, field)
}

// SortGroups toggles the group table sort on the given field and reloads.
func (a *App) SortGroups(ctx context.Context, field string) error {
	return a.admin.ToggleGroupsSort(ctx, field)
}

// Approve shows the available groups for a user approval, prompts for the
// group selection, and confirms. An empty selection never activates.
func (a *App) Approve(ctx context.Context, userID string) error {
	if err := a.admin.OpenApprove(ctx, userID, userID); err != nil {
		return err
	}

	line, err := getSimpleText(a.reader, "Group IDs to assign (comma-separated)", a.out)
	if err != nil {
		return err
	}
	return a.admin.ConfirmApprove(ctx, userID, splitIDs(line))
}

// Reject declines a user after an explicit confirmation prompt.
func (a *App) Reject(ctx context.Context, userID string) error {
	ok, err := a.confirm("Reject user " + userID + "?")
	if err != nil {
		return err
	}
	return a.admin.Reject(ctx, userID, ok)
}

// Revoke deactivates a user after an explicit confirmation prompt.
func (a *App) Revoke(ctx context.Context, userID string) error {
	ok, err := a.confirm("Revoke access for user " + userID + "?")
	if err != nil {
		return err
	}
	return a.admin.Revoke(ctx, userID, ok)
}

// CreateGroup prompts for the group fields and creates it.
func (a *App) CreateGroup(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Group name", a.out)
	if err != nil {
		return err
	}
	description, err := getSimpleText(a.reader, "Description", a.out)
	if err != nil {
		return err
	}
	return a.admin.CreateGroup(ctx, name, description)
}

// DeleteGroup removes a group after an explicit confirmation prompt.
func (a *App) DeleteGroup(ctx context.Context, groupID string) error {
	ok, err := a.confirm("Delete group " + groupID + "?")
	if err != nil {
		return err
	}
	return a.admin.DeleteGroup(ctx, groupID, ok)
}

// Members shows the member list of a group.
func (a *App) Members(ctx context.Context, groupID string) error {
	return a.admin.GroupMembers(ctx, groupID)
}

func (a *App) confirm(question string) (bool, error) {
	answer, err := getSimpleText(a.reader, question+" Type 'yes' to confirm", a.out)
	if err != nil {
		return false, err
	}
	return answer == "yes", nil
}

func splitIDs(line string) []string {
	var ids []string
	for _, part := range strings.Split(line, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}
