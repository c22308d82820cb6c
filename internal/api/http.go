package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newRequestID is a test seam for the correlation id attached to every
// outbound request.
var newRequestID = uuid.NewString

// HTTPClient implements Client over the backend's REST surface. All typed
// operations are thin request-shape builders over the do primitive.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenProvider
}

// NewHTTPClient builds a client rooted at baseURL (e.g.
// "http://127.0.0.1:8000/api"). tokens supplies the bearer token for
// authenticated requests and may be nil for unauthenticated use.
func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenProvider) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// do performs a single JSON request. body is marshalled when non-nil; the
// response is decoded into out when non-nil. When requiresAuth is set and a
// token is available, an Authorization: Bearer header is attached.
//
// Every failure path returns a *Error: transport failures (and undecodable
// responses) carry StatusCode 0, non-2xx statuses carry the server's detail
// message and the parsed body.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any, requiresAuth bool) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: err.Error()}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", newRequestID())
	if requiresAuth && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Message: networkErrorMessage}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Message: networkErrorMessage}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var parsed map[string]any
		_ = json.Unmarshal(raw, &parsed)
		msg := genericErrorMessage
		if detail, ok := parsed["detail"].(string); ok && detail != "" {
			msg = detail
		}
		return &Error{Message: msg, StatusCode: resp.StatusCode, Body: parsed}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &Error{Message: networkErrorMessage}
		}
	}
	return nil
}

func (c *HTTPClient) Healthz(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) MFAMethods(ctx context.Context) (*MFAMethodsResponse, error) {
	var resp MFAMethodsResponse
	if err := c.do(ctx, http.MethodGet, "/mfa/methods", nil, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) MFAStatus(ctx context.Context, username string) (*MFAStatusResponse, error) {
	var resp MFAStatusResponse
	if err := c.do(ctx, http.MethodGet, "/mfa/status/"+url.PathEscape(username), nil, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	if req.MFAMethod == "" {
		req.MFAMethod = MethodTOTP
	}
	var resp SignupResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) VerifyEmail(ctx context.Context, username, token string) (*VerificationResponse, error) {
	body := map[string]string{"username": username, "token": token}
	var resp VerificationResponse
	if err := c.do(ctx, http.MethodPost, "/auth/verify-email", body, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) VerifyPhone(ctx context.Context, username, code string) (*VerificationResponse, error) {
	body := map[string]string{"username": username, "code": code}
	var resp VerificationResponse
	if err := c.do(ctx, http.MethodPost, "/auth/verify-phone", body, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ResendVerification(ctx context.Context, username, channel string) error {
	body := map[string]string{"username": username, "verification_type": channel}
	return c.do(ctx, http.MethodPost, "/auth/resend-verification", body, nil, false)
}

func (c *HTTPClient) Enroll(ctx context.Context, req EnrollRequest) (*EnrollResponse, error) {
	if req.MFAMethod == "" {
		req.MFAMethod = MethodTOTP
	}
	var resp EnrollResponse
	if err := c.do(ctx, http.MethodPost, "/auth/enroll", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) SendSMSCode(ctx context.Context, username, password string) (*SendSMSCodeResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var resp SendSMSCodeResponse
	if err := c.do(ctx, http.MethodPost, "/auth/sms/send-code", body, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Login(ctx context.Context, username, password, code string) (*LoginResponse, error) {
	return c.login(ctx, "/auth/login", username, password, code)
}

func (c *HTTPClient) AdminLogin(ctx context.Context, username, password, code string) (*LoginResponse, error) {
	return c.login(ctx, "/admin/login", username, password, code)
}

func (c *HTTPClient) login(ctx context.Context, path, username, password, code string) (*LoginResponse, error) {
	body := map[string]string{
		"username":          username,
		"password":          password,
		"verification_code": code,
	}
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, path, body, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ProfileStatus(ctx context.Context, username string) (*ProfileStatusResponse, error) {
	var resp ProfileStatusResponse
	if err := c.do(ctx, http.MethodGet, "/profile/status/"+url.PathEscape(username), nil, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetProfile(ctx context.Context, username string) (*Profile, error) {
	var resp Profile
	if err := c.do(ctx, http.MethodGet, "/profile/"+url.PathEscape(username), nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, username string, updates ProfileUpdate) (*Profile, error) {
	var resp Profile
	if err := c.do(ctx, http.MethodPut, "/profile/"+url.PathEscape(username), updates, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

var _ Client = (*HTTPClient)(nil)
