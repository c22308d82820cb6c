package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenAdmin_ListUsersBuildsQuery(t *testing.T) {
	var gotQuery url.Values
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/users/enhanced", r.URL.Path)
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"users": []AdminUser{{ID: "u1", Username: "alice", Status: StatusComplete}},
			"total": 1,
		})
	}, "tok")
	admin := NewTokenAdminClient(c)

	users, total, err := admin.ListUsers(context.Background(), UserListParams{
		StatusFilter: StatusComplete,
		Search:       "ali",
		SortField:    "created_at",
		SortOrder:    "desc",
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, users, 1)
	require.Equal(t, "Bearer tok", gotAuth)
	require.Equal(t, "complete", gotQuery.Get("status_filter"))
	require.Equal(t, "ali", gotQuery.Get("search"))
	require.Equal(t, "created_at", gotQuery.Get("sort_by"))
	require.Equal(t, "desc", gotQuery.Get("sort_order"))
	require.False(t, gotQuery.Has("group_filter"))
}

func TestTokenAdmin_ActivateCarriesGroupIDs(t *testing.T) {
	var gotPath string
	var gotBody map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"success":true}`))
	}, "tok")
	admin := NewTokenAdminClient(c)

	require.NoError(t, admin.ActivateUser(context.Background(), "u1", []string{"g1", "g2"}))
	require.Equal(t, "/admin/users/u1/activate", gotPath)
	require.Equal(t, []string{"g1", "g2"}, gotBody["group_ids"])
}

func TestTokenAdmin_GroupCRUDPathsAndMethods(t *testing.T) {
	type call struct{ method, path string }
	var calls []call
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.Path})
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/admin/groups":
			json.NewEncoder(w).Encode(map[string]any{"groups": []Group{{ID: "g1", Name: "staff"}}})
		default:
			json.NewEncoder(w).Encode(Group{ID: "g1", Name: "staff"})
		}
	}, "tok")
	admin := NewTokenAdminClient(c)
	ctx := context.Background()

	groups, err := admin.ListGroups(ctx, GroupListParams{})
	require.NoError(t, err)
	require.Len(t, groups, 1)

	_, err = admin.CreateGroup(ctx, "staff", "Staff users")
	require.NoError(t, err)
	_, err = admin.GetGroup(ctx, "g1")
	require.NoError(t, err)
	_, err = admin.UpdateGroup(ctx, "g1", "staff", "updated")
	require.NoError(t, err)
	require.NoError(t, admin.DeleteGroup(ctx, "g1"))

	require.Equal(t, []call{
		{http.MethodGet, "/admin/groups"},
		{http.MethodPost, "/admin/groups"},
		{http.MethodGet, "/admin/groups/g1"},
		{http.MethodPut, "/admin/groups/g1"},
		{http.MethodDelete, "/admin/groups/g1"},
	}, calls)
}

func TestTokenAdmin_UserGroupAssignment(t *testing.T) {
	type call struct{ method, path string }
	var calls []call
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.Path})
		json.NewEncoder(w).Encode(map[string]any{"groups": []Group{}})
	}, "tok")
	admin := NewTokenAdminClient(c)
	ctx := context.Background()

	_, err := admin.UserGroups(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, admin.AssignUserGroups(ctx, "u1", []string{"g1"}))
	require.NoError(t, admin.ReplaceUserGroups(ctx, "u1", []string{"g2"}))
	require.NoError(t, admin.RemoveUserFromGroup(ctx, "u1", "g1"))

	require.Equal(t, []call{
		{http.MethodGet, "/admin/users/u1/groups"},
		{http.MethodPost, "/admin/users/u1/groups"},
		{http.MethodPut, "/admin/users/u1/groups"},
		{http.MethodDelete, "/admin/users/u1/groups/g1"},
	}, calls)
}

func TestLegacyAdmin_CredentialsInQuery(t *testing.T) {
	var gotQuery url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/users", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]any{"users": []AdminUser{}, "total": 0})
	}, "tok")
	admin := NewLegacyAdminClient(c, func() (string, string) { return "root", "hunter2" })

	_, _, err := admin.ListUsers(context.Background(), UserListParams{StatusFilter: StatusPending})
	require.NoError(t, err)
	require.Equal(t, "root", gotQuery.Get("admin_username"))
	require.Equal(t, "hunter2", gotQuery.Get("admin_password"))
	require.Equal(t, "pending", gotQuery.Get("status_filter"))
}

func TestLegacyAdmin_UnsupportedOperations(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}, "")
	admin := NewLegacyAdminClient(c, func() (string, string) { return "root", "pw" })
	ctx := context.Background()

	require.ErrorIs(t, admin.ActivateUser(ctx, "u1", []string{"g1"}), ErrUnsupported)
	require.ErrorIs(t, admin.RevokeUser(ctx, "u1"), ErrUnsupported)
	_, err := admin.ListGroups(ctx, GroupListParams{})
	require.ErrorIs(t, err, ErrUnsupported)
	require.ErrorIs(t, admin.DeleteGroup(ctx, "g1"), ErrUnsupported)
}

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		status int
		check  func(*Error) bool
	}{
		{0, (*Error).IsNetwork},
		{401, (*Error).IsAuth},
		{403, (*Error).IsForbidden},
		{404, (*Error).IsNotFound},
		{400, (*Error).IsValidation},
		{422, (*Error).IsValidation},
		{500, (*Error).IsServer},
		{503, (*Error).IsServer},
	}
	for _, tc := range cases {
		e := &Error{Message: "m", StatusCode: tc.status}
		require.True(t, tc.check(e), "status %d", tc.status)
	}

	e := &Error{Message: "boom", StatusCode: 403}
	require.Equal(t, "boom (HTTP 403)", e.Error())
	require.Equal(t, "just boom", (&Error{Message: "just boom"}).Error())
}
