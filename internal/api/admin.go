package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// ErrUnsupported is returned by the legacy admin adapter for operations the
// credential-pair API never offered.
var ErrUnsupported = errors.New("operation not supported by the credential-pair admin API")

// TokenAdminClient is the bearer-token AdminClient. It is the scheme all
// admin flows use; the credential-pair variant survives only as the
// deprecated LegacyAdminClient adapter.
type TokenAdminClient struct {
	c *HTTPClient
}

func NewTokenAdminClient(c *HTTPClient) *TokenAdminClient {
	return &TokenAdminClient{c: c}
}

func (a *TokenAdminClient) ListUsers(ctx context.Context, params UserListParams) ([]AdminUser, int, error) {
	q := url.Values{}
	setIfPresent(q, "status_filter", params.StatusFilter)
	setIfPresent(q, "group_filter", params.GroupFilter)
	setIfPresent(q, "search", params.Search)
	setIfPresent(q, "sort_by", params.SortField)
	setIfPresent(q, "sort_order", params.SortOrder)

	var resp usersResponse
	if err := a.c.do(ctx, http.MethodGet, withQuery("/admin/users/enhanced", q), nil, &resp, true); err != nil {
		return nil, 0, err
	}
	return resp.Users, resp.Total, nil
}

func (a *TokenAdminClient) ActivateUser(ctx context.Context, userID string, groupIDs []string) error {
	body := map[string]any{"group_ids": groupIDs}
	return a.c.do(ctx, http.MethodPost, "/admin/users/"+url.PathEscape(userID)+"/activate", body, nil, true)
}

func (a *TokenAdminClient) RejectUser(ctx context.Context, userID string) error {
	return a.c.do(ctx, http.MethodPost, "/admin/users/"+url.PathEscape(userID)+"/reject", nil, nil, true)
}

func (a *TokenAdminClient) RevokeUser(ctx context.Context, userID string) error {
	return a.c.do(ctx, http.MethodPost, "/admin/users/"+url.PathEscape(userID)+"/revoke", nil, nil, true)
}

func (a *TokenAdminClient) ListGroups(ctx context.Context, params GroupListParams) ([]Group, error) {
	q := url.Values{}
	setIfPresent(q, "search", params.Search)
	setIfPresent(q, "sort_by", params.SortField)
	setIfPresent(q, "sort_order", params.SortOrder)

	var resp groupsResponse
	if err := a.c.do(ctx, http.MethodGet, withQuery("/admin/groups", q), nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Groups, nil
}

func (a *TokenAdminClient) CreateGroup(ctx context.Context, name, description string) (*Group, error) {
	body := map[string]string{"name": name, "description": description}
	var resp Group
	if err := a.c.do(ctx, http.MethodPost, "/admin/groups", body, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *TokenAdminClient) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	var resp Group
	if err := a.c.do(ctx, http.MethodGet, "/admin/groups/"+url.PathEscape(groupID), nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *TokenAdminClient) UpdateGroup(ctx context.Context, groupID, name, description string) (*Group, error) {
	body := map[string]string{"name": name, "description": description}
	var resp Group
	if err := a.c.do(ctx, http.MethodPut, "/admin/groups/"+url.PathEscape(groupID), body, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *TokenAdminClient) DeleteGroup(ctx context.Context, groupID string) error {
	return a.c.do(ctx, http.MethodDelete, "/admin/groups/"+url.PathEscape(groupID), nil, nil, true)
}

func (a *TokenAdminClient) UserGroups(ctx context.Context, userID string) ([]Group, error) {
	var resp groupsResponse
	if err := a.c.do(ctx, http.MethodGet, "/admin/users/"+url.PathEscape(userID)+"/groups", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Groups, nil
}

func (a *TokenAdminClient) AssignUserGroups(ctx context.Context, userID string, groupIDs []string) error {
	body := map[string]any{"group_ids": groupIDs}
	return a.c.do(ctx, http.MethodPost, "/admin/users/"+url.PathEscape(userID)+"/groups", body, nil, true)
}

func (a *TokenAdminClient) ReplaceUserGroups(ctx context.Context, userID string, groupIDs []string) error {
	body := map[string]any{"group_ids": groupIDs}
	return a.c.do(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(userID)+"/groups", body, nil, true)
}

func (a *TokenAdminClient) RemoveUserFromGroup(ctx context.Context, userID, groupID string) error {
	path := "/admin/users/" + url.PathEscape(userID) + "/groups/" + url.PathEscape(groupID)
	return a.c.do(ctx, http.MethodDelete, path, nil, nil, true)
}

var _ AdminClient = (*TokenAdminClient)(nil)

// AdminCredentials supplies the admin username/password pair for the legacy
// scheme at request time.
type AdminCredentials func() (username, password string)

// LegacyAdminClient adapts the credential-pair admin API to the AdminClient
// interface.
//
// Deprecated: the credential-pair scheme passes admin credentials on every
// request and predates group management. Only listing (status filter only),
// activation without group assignment, and rejection are available; all
// other operations return ErrUnsupported. Use TokenAdminClient.
type LegacyAdminClient struct {
	c     *HTTPClient
	creds AdminCredentials
}

func NewLegacyAdminClient(c *HTTPClient, creds AdminCredentials) *LegacyAdminClient {
	return &LegacyAdminClient{c: c, creds: creds}
}

func (a *LegacyAdminClient) ListUsers(ctx context.Context, params UserListParams) ([]AdminUser, int, error) {
	username, password := a.creds()
	q := url.Values{}
	q.Set("admin_username", username)
	q.Set("admin_password", password)
	setIfPresent(q, "status_filter", params.StatusFilter)

	var resp usersResponse
	if err := a.c.do(ctx, http.MethodGet, withQuery("/admin/users", q), nil, &resp, false); err != nil {
		return nil, 0, err
	}
	return resp.Users, resp.Total, nil
}

func (a *LegacyAdminClient) ActivateUser(ctx context.Context, userID string, groupIDs []string) error {
	if len(groupIDs) > 0 {
		return ErrUnsupported
	}
	username, password := a.creds()
	body := map[string]string{"admin_username": username, "admin_password": password}
	return a.c.do(ctx, http.MethodPost, "/admin/users/"+url.PathEscape(userID)+"/activate", body, nil, false)
}

func (a *LegacyAdminClient) RejectUser(ctx context.Context, userID string) error {
	username, password := a.creds()
	body := map[string]string{"admin_username": username, "admin_password": password}
	return a.c.do(ctx, http.MethodPost, "/admin/users/"+url.PathEscape(userID)+"/reject", body, nil, false)
}

func (a *LegacyAdminClient) RevokeUser(ctx context.Context, userID string) error {
	return ErrUnsupported
}

func (a *LegacyAdminClient) ListGroups(ctx context.Context, params GroupListParams) ([]Group, error) {
	return nil, ErrUnsupported
}

func (a *LegacyAdminClient) CreateGroup(ctx context.Context, name, description string) (*Group, error) {
	return nil, ErrUnsupported
}

func (a *LegacyAdminClient) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	return nil, ErrUnsupported
}

func (a *LegacyAdminClient) UpdateGroup(ctx context.Context, groupID, name, description string) (*Group, error) {
	return nil, ErrUnsupported
}

func (a *LegacyAdminClient) DeleteGroup(ctx context.Context, groupID string) error {
	return ErrUnsupported
}

func (a *LegacyAdminClient) UserGroups(ctx context.Context, userID string) ([]Group, error) {
	return nil, ErrUnsupported
}

func (a *LegacyAdminClient) AssignUserGroups(ctx context.Context, userID string, groupIDs []string) error {
	return ErrUnsupported
}

func (a *LegacyAdminClient) ReplaceUserGroups(ctx context.Context, userID string, groupIDs []string) error {
	return ErrUnsupported
}

func (a *LegacyAdminClient) RemoveUserFromGroup(ctx context.Context, userID, groupID string) error {
	return ErrUnsupported
}

var _ AdminClient = (*LegacyAdminClient)(nil)

func setIfPresent(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func withQuery(path string, q url.Values) string {
	if encoded := q.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}
