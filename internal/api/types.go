package api

// MFA methods understood by the backend.
const (
	MethodTOTP = "totp"
	MethodSMS  = "sms"
)

// Profile statuses reported by the backend. The server is the source of
// truth; the client only uses these to decide which controls to surface.
const (
	StatusPending  = "pending"
	StatusComplete = "complete"
	StatusActive   = "active"
	StatusRejected = "rejected"
	StatusRevoked  = "revoked"
)

// Verification channels for resend requests.
const (
	ChannelEmail = "email"
	ChannelPhone = "phone"
)

type HealthResponse struct {
	Status     string `json:"status"`
	Service    string `json:"service"`
	SMSEnabled bool   `json:"sms_enabled"`
}

type MFAMethodsResponse struct {
	Methods    []string `json:"methods"`
	SMSEnabled bool     `json:"sms_enabled"`
}

type MFAStatusResponse struct {
	Enrolled    bool   `json:"enrolled"`
	MFAMethod   string `json:"mfa_method"`
	PhoneNumber string `json:"phone_number"`
}

type SignupRequest struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	PhoneCountryCode string `json:"phone_country_code"`
	PhoneNumber      string `json:"phone_number"`
	Password         string `json:"password"`
	MFAMethod        string `json:"mfa_method"`
}

type SignupResponse struct {
	Success               bool   `json:"success"`
	Message               string `json:"message"`
	UserID                string `json:"user_id"`
	EmailVerificationSent bool   `json:"email_verification_sent"`
	PhoneVerificationSent bool   `json:"phone_verification_sent"`
}

type VerificationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// ProfileStatus is the aggregate status after this verification,
	// e.g. "pending" or "complete".
	ProfileStatus string `json:"profile_status"`
}

type ProfileStatusResponse struct {
	Username string `json:"username"`
	// Email and Phone are masked by the server.
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Status        string `json:"status"`
	EmailVerified bool   `json:"email_verified"`
	PhoneVerified bool   `json:"phone_verified"`
	MFAMethod     string `json:"mfa_method"`
	CreatedAt     string `json:"created_at"`
}

type EnrollRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	MFAMethod   string `json:"mfa_method"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

type EnrollResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// MFAMethod is the server-declared enrolled method, which callers must
	// branch on instead of the requested one.
	MFAMethod  string `json:"mfa_method"`
	OtpauthURI string `json:"otpauth_uri"`
	Secret     string `json:"secret"`
	// PhoneNumber is masked.
	PhoneNumber string `json:"phone_number"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	IsAdmin bool   `json:"is_admin"`
	// Token is the signed session token. Legacy deployments respond without
	// one; such a success does not establish a session.
	Token    string `json:"token"`
	Username string `json:"username"`
}

type SendSMSCodeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// PhoneNumber is masked.
	PhoneNumber      string `json:"phone_number"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

type GroupRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type GroupMember struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type Group struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	MemberCount int           `json:"member_count"`
	Members     []GroupMember `json:"members,omitempty"`
	CreatedAt   string        `json:"created_at"`
}

type Profile struct {
	Username         string     `json:"username"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Email            string     `json:"email"`
	PhoneCountryCode string     `json:"phone_country_code"`
	PhoneNumber      string     `json:"phone_number"`
	MFAMethod        string     `json:"mfa_method"`
	Status           string     `json:"status"`
	EmailVerified    bool       `json:"email_verified"`
	PhoneVerified    bool       `json:"phone_verified"`
	Groups           []GroupRef `json:"groups"`
}

// ProfileUpdate carries only the fields being changed; nil pointers are
// omitted from the request body.
type ProfileUpdate struct {
	FirstName        *string `json:"first_name,omitempty"`
	LastName         *string `json:"last_name,omitempty"`
	Email            *string `json:"email,omitempty"`
	PhoneCountryCode *string `json:"phone_country_code,omitempty"`
	PhoneNumber      *string `json:"phone_number,omitempty"`
}

type AdminUser struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Phone         string     `json:"phone"`
	Status        string     `json:"status"`
	EmailVerified bool       `json:"email_verified"`
	PhoneVerified bool       `json:"phone_verified"`
	MFAMethod     string     `json:"mfa_method"`
	Groups        []GroupRef `json:"groups"`
	CreatedAt     string     `json:"created_at"`
	ActivatedAt   string     `json:"activated_at"`
	ActivatedBy   string     `json:"activated_by"`
}

// UserListParams are the filter/sort/search parameters of the enhanced user
// listing. Zero values are omitted from the query string.
type UserListParams struct {
	StatusFilter string
	GroupFilter  string
	Search       string
	SortField    string
	SortOrder    string
}

// GroupListParams are the search/sort parameters of the group listing.
type GroupListParams struct {
	Search    string
	SortField string
	SortOrder string
}

type usersResponse struct {
	Users []AdminUser `json:"users"`
	Total int         `json:"total"`
}

type groupsResponse struct {
	Groups []Group `json:"groups"`
}
