// Package api implements the client side of the identity backend's REST
// contract. A single request primitive handles JSON defaults, bearer
// authentication, and failure normalization; every typed operation is a thin
// request-shape builder over it.
package api

import "context"

// Client defines the non-admin operations the flow controllers consume.
//
// Contract:
//   - Every method returns either a decoded response or a *Error; callers
//     never observe raw transport errors.
//   - All methods honor context cancellation/timeouts.
type Client interface {
	Healthz(ctx context.Context) (*HealthResponse, error)
	MFAMethods(ctx context.Context) (*MFAMethodsResponse, error)
	MFAStatus(ctx context.Context, username string) (*MFAStatusResponse, error)

	Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error)
	VerifyEmail(ctx context.Context, username, token string) (*VerificationResponse, error)
	VerifyPhone(ctx context.Context, username, code string) (*VerificationResponse, error)
	ResendVerification(ctx context.Context, username, channel string) error

	Enroll(ctx context.Context, req EnrollRequest) (*EnrollResponse, error)
	SendSMSCode(ctx context.Context, username, password string) (*SendSMSCodeResponse, error)
	Login(ctx context.Context, username, password, code string) (*LoginResponse, error)
	AdminLogin(ctx context.Context, username, password, code string) (*LoginResponse, error)

	ProfileStatus(ctx context.Context, username string) (*ProfileStatusResponse, error)
	GetProfile(ctx context.Context, username string) (*Profile, error)
	UpdateProfile(ctx context.Context, username string, updates ProfileUpdate) (*Profile, error)
}

// AdminClient defines the token-authenticated admin operations. The legacy
// credential-pair scheme is available as a deprecated adapter implementing
// the same interface; see LegacyAdminClient.
type AdminClient interface {
	ListUsers(ctx context.Context, params UserListParams) ([]AdminUser, int, error)
	ActivateUser(ctx context.Context, userID string, groupIDs []string) error
	RejectUser(ctx context.Context, userID string) error
	RevokeUser(ctx context.Context, userID string) error

	ListGroups(ctx context.Context, params GroupListParams) ([]Group, error)
	CreateGroup(ctx context.Context, name, description string) (*Group, error)
	GetGroup(ctx context.Context, groupID string) (*Group, error)
	UpdateGroup(ctx context.Context, groupID, name, description string) (*Group, error)
	DeleteGroup(ctx context.Context, groupID string) error

	UserGroups(ctx context.Context, userID string) ([]Group, error)
	AssignUserGroups(ctx context.Context, userID string, groupIDs []string) error
	ReplaceUserGroups(ctx context.Context, userID string, groupIDs []string) error
	RemoveUserFromGroup(ctx context.Context, userID, groupID string) error
}

// TokenProvider supplies the current session token, or "" when logged out.
// The session manager satisfies this.
type TokenProvider interface {
	Token() string
}
