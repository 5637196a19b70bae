// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	errs "housing-portal/internal/common/errors"
	"housing-portal/internal/common/logger"
	"housing-portal/internal/common/metrics"
	"housing-portal/internal/models"
)

// Backend endpoint paths. Trailing slashes are significant to the server.
const (
	loginPath                = "/api/auth/login/"
	logoutPath               = "/api/auth/logout/"
	registrationPath         = "/api/auth/registration/"
	passwordResetPath        = "/api/auth/password/reset/"
	passwordResetConfirmPath = "/api/auth/password/reset/confirm/"
	tokenRefreshPath         = "/api/auth/token/refresh/"
	currentUserPath          = "/api/auth/user/"
	dashboardPath            = "/api/student-dashboard/"
	roomTypesPath            = "/api/room-types/"
	applicationCreatePath    = "/api/application/create/"
	applicationCancelPath    = "/api/application/cancel/"
	applicationDocumentPath  = "/api/application/upload-document/"
	applicationPoDPath       = "/api/application/upload-pod/"
	tenantLeasePath          = "/api/tenant/upload-lease/"
	maintenancePath          = "/api/maintenance-requests/"
	contactPath              = "/api/contact/"
	statementPath            = "/api/tenant/download-statement/"
)

// Client is the configured portal backend client. All methods are safe for
// concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	transport *authTransport
	cache     *responseCache
	logger    logger.Logger

	now func() time.Time
}

// Options configures a Client.
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
	Tokens   TokenSource
	Logger   logger.Logger

	// Transport overrides the underlying round tripper, used in tests.
	Transport http.RoundTripper
}

func NewClient(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	transport := newAuthTransport(opts.Transport, opts.Tokens, baseURL+tokenRefreshPath, log)

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		transport: transport,
		cache:     newResponseCache(opts.CacheTTL),
		logger:    log,
		now:       time.Now,
	}
}

// OnSessionExpired registers the callback invoked when a token refresh fails
// and the session must end.
func (c *Client) OnSessionExpired(fn func()) {
	c.transport.onExpired = fn
}

// RefreshAccessToken forces a token refresh, sharing any refresh already in
// flight. Used by the idle monitor's stay-signed-in path.
func (c *Client) RefreshAccessToken(ctx context.Context) error {
	_, err := c.transport.refreshShared(ctx)
	return err
}

// FlushCache drops all cached GET responses.
func (c *Client) FlushCache() {
	c.cache.Flush()
}

// InvalidateDashboard drops the cached dashboard payload so the next read
// hits the backend.
func (c *Client) InvalidateDashboard() {
	c.cache.Invalidate(dashboardPath)
}

// ---- authentication ----

// LoginResponse is the token pair and account returned by a successful login.
type LoginResponse struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    models.User `json:"user"`
}

// Login exchanges credentials for a session. The response must carry both the
// access token and the user record; anything less is rejected so no partial
// session can be persisted.
func (c *Client) Login(ctx context.Context, email, password, captchaToken string) (models.Session, error) {
	payload := map[string]string{
		"email":           email,
		"password":        password,
		"recaptcha_token": captchaToken,
	}
	body, _ := json.Marshal(payload)

	status, respBody, err := c.do(ctx, http.MethodPost, loginPath, "application/json", body)
	if err != nil {
		return models.Session{}, err
	}
	if status != http.StatusOK {
		msg := decodeErrorPayload(respBody).firstMessage()
		if msg == "" {
			msg = "Login failed. Please check your credentials."
		}
		return models.Session{}, errs.NewAuthenticationError(msg)
	}

	var lr LoginResponse
	if err := json.Unmarshal(respBody, &lr); err != nil {
		return models.Session{}, errs.NewResponseMalformedError(err)
	}

	session := models.Session{
		AccessToken:  lr.Access,
		RefreshToken: lr.Refresh,
		User:         lr.User,
	}
	if !session.Valid() {
		return models.Session{}, errs.NewResponseMalformedError(
			fmt.Errorf("login response missing token or user"))
	}
	return session, nil
}

// Logout invalidates the refresh token server-side. Local state is cleared by
// the caller before this is attempted, so failures here are non-fatal.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	body, _ := json.Marshal(map[string]string{"refresh": refreshToken})
	status, respBody, err := c.do(ctx, http.MethodPost, logoutPath, "application/json", body)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return errorFromResponse(status, respBody)
	}
	return nil
}

// RegisterRequest is the account-creation payload.
type RegisterRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	Password     string `json:"password"`
	CaptchaToken string `json:"recaptcha_token"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	body, _ := json.Marshal(req)
	status, respBody, err := c.do(ctx, http.MethodPost, registrationPath, "application/json", body)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		msg := decodeErrorPayload(respBody).firstMessage()
		if msg == "" {
			msg = "An unknown registration error occurred."
		}
		return errs.NewRequestRejectedError(msg, fmt.Sprintf("status %d", status))
	}
	return nil
}

// RequestPasswordReset asks the backend to email a reset link. Returns the
// server's confirmation message.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	body, _ := json.Marshal(map[string]string{"email": email})
	status, respBody, err := c.do(ctx, http.MethodPost, passwordResetPath, "application/json", body)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", errorFromResponse(status, respBody)
	}
	return decodeErrorPayload(respBody).detail(), nil
}

// ConfirmPasswordReset completes a reset started from an emailed link.
func (c *Client) ConfirmPasswordReset(ctx context.Context, uid, token, password1, password2 string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"new_password1": password1,
		"new_password2": password2,
		"uid":           uid,
		"token":         token,
	})
	status, respBody, err := c.do(ctx, http.MethodPost, passwordResetConfirmPath, "application/json", body)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		detail := decodeErrorPayload(respBody).detail()
		if detail == "" {
			detail = "An error occurred. The link may be invalid or expired."
		}
		return "", errs.NewRequestRejectedError(detail, fmt.Sprintf("status %d", status))
	}
	return decodeErrorPayload(respBody).detail(), nil
}

// CurrentUser fetches the account attached to the current token.
func (c *Client) CurrentUser(ctx context.Context) (models.User, error) {
	var user models.User
	if err := c.getJSON(ctx, currentUserPath, &user, false); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ---- dashboard ----

// Dashboard fetches the combined dashboard snapshot. The response is cached
// briefly; use InvalidateDashboard to force a fresh read.
func (c *Client) Dashboard(ctx context.Context) (*models.DashboardSnapshot, error) {
	var snapshot models.DashboardSnapshot
	if err := c.getJSON(ctx, dashboardPath, &snapshot, true); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// RoomTypes lists the bookable room categories with rates.
func (c *Client) RoomTypes(ctx context.Context) ([]models.RoomType, error) {
	var rooms []models.RoomType
	if err := c.getJSON(ctx, roomTypesPath, &rooms, true); err != nil {
		return nil, err
	}
	return rooms, nil
}

// ---- application ----

// ApplicationSubmission is the wire shape of a wizard submission: flat scalar
// fields, exactly one funding sub-document, and the attached files.
type ApplicationSubmission struct {
	Fields     map[string]string
	SubDocName string
	SubDoc     interface{}
	Files      map[string]models.Attachment
}

// CreateApplication submits a completed application form. A 201 means
// accepted; a 400 carries field-level errors mapped into the returned error.
func (c *Client) CreateApplication(ctx context.Context, sub ApplicationSubmission) error {
	body, contentType, err := encodeMultipart(sub)
	if err != nil {
		return errs.NewFileUploadFailedError(err.Error(), false)
	}

	status, respBody, err := c.do(ctx, http.MethodPost, applicationCreatePath, contentType, body)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return errorFromResponse(status, respBody)
	}
	c.InvalidateDashboard()
	return nil
}

// CancelApplication withdraws a pending application.
func (c *Client) CancelApplication(ctx context.Context) error {
	status, respBody, err := c.do(ctx, http.MethodPost, applicationCancelPath, "application/json", []byte("{}"))
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return errorFromResponse(status, respBody)
	}
	c.InvalidateDashboard()
	return nil
}

// UploadApplicationDocument uploads one outstanding required document.
func (c *Client) UploadApplicationDocument(ctx context.Context, documentName string, file models.Attachment) error {
	return c.uploadFile(ctx, http.MethodPost, applicationDocumentPath, "document", file,
		map[string]string{"document_name": documentName})
}

// UploadProofOfPayment attaches the admin-fee proof to a provisionally
// approved application.
func (c *Client) UploadProofOfPayment(ctx context.Context, file models.Attachment) error {
	return c.uploadFile(ctx, http.MethodPatch, applicationPoDPath, "proof_of_deposit", file, nil)
}

// ---- tenant ----

// UploadLease attaches the signed lease to the tenancy record.
func (c *Client) UploadLease(ctx context.Context, file models.Attachment) error {
	return c.uploadFile(ctx, http.MethodPatch, tenantLeasePath, "signed_lease", file, nil)
}

// MaintenanceRequestInput is a new maintenance ticket.
type MaintenanceRequestInput struct {
	Title       string
	Description string
	Category    models.MaintenanceCategory
	Priority    models.MaintenancePriority
	Photo       models.Attachment
}

func (c *Client) CreateMaintenanceRequest(ctx context.Context, in MaintenanceRequestInput) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("title", in.Title)
	w.WriteField("description", in.Description)
	w.WriteField("category", string(in.Category))
	w.WriteField("priority", string(in.Priority))
	if !in.Photo.IsZero() {
		if err := writeFilePart(w, "photo", in.Photo); err != nil {
			return errs.NewFileUploadFailedError(err.Error(), false)
		}
	}
	if err := w.Close(); err != nil {
		return errs.NewFileUploadFailedError(err.Error(), false)
	}

	status, respBody, err := c.do(ctx, http.MethodPost, maintenancePath, w.FormDataContentType(), buf.Bytes())
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return errorFromResponse(status, respBody)
	}
	c.InvalidateDashboard()
	return nil
}

// SubmitMaintenanceFeedback rates a resolved maintenance request.
func (c *Client) SubmitMaintenanceFeedback(ctx context.Context, requestID, rating int, feedback string) error {
	path := fmt.Sprintf("%s%d/feedback/", maintenancePath, requestID)
	body, _ := json.Marshal(map[string]interface{}{
		"tenant_rating":   rating,
		"tenant_feedback": feedback,
	})
	status, respBody, err := c.do(ctx, http.MethodPatch, path, "application/json", body)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return errorFromResponse(status, respBody)
	}
	c.InvalidateDashboard()
	return nil
}

// DownloadStatement fetches the account statement. The filename comes from
// Content-Disposition, with a generated fallback when the server omits it.
func (c *Client) DownloadStatement(ctx context.Context, lastName string) (Statement, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+statementPath, nil)
	if err != nil {
		return Statement{}, err
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.instrument(statementPath, 0, start)
		return Statement{}, c.transportError(err)
	}
	defer resp.Body.Close()
	c.instrument(statementPath, resp.StatusCode, start)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return Statement{}, errs.NewDownloadFailedError(
			fmt.Errorf("statement endpoint returned %d: %s", resp.StatusCode, string(body)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Statement{}, errs.NewDownloadFailedError(err)
	}

	filename := filenameFromDisposition(resp.Header.Get("Content-Disposition"))
	if filename == "" {
		filename = fallbackStatementName(lastName, c.now())
	}
	return Statement{Filename: filename, Data: data}, nil
}

// ---- contact ----

// ContactMessage is a public enquiry form submission. The backend expects the
// camelCase keys the public site sends.
type ContactMessage struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
}

func (c *Client) SendContactMessage(ctx context.Context, msg ContactMessage) error {
	body, _ := json.Marshal(msg)
	status, respBody, err := c.do(ctx, http.MethodPost, contactPath, "application/json", body)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return errorFromResponse(status, respBody)
	}
	return nil
}

// ---- helpers ----

func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.instrument(path, 0, start)
		return 0, nil, c.transportError(err)
	}
	defer resp.Body.Close()
	c.instrument(path, resp.StatusCode, start)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errs.NewServiceUnavailableError(err)
	}
	return resp.StatusCode, respBody, nil
}

// transportError keeps session-expiry signals intact and folds everything
// else into a retryable connectivity error.
func (c *Client) transportError(err error) error {
	if errs.HasCode(err, errs.ErrCodeSessionExpired) {
		if se, ok := errs.AsStandard(err); ok {
			return se
		}
	}
	return errs.NewServiceUnavailableError(err)
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}, cacheable bool) error {
	if cacheable {
		if body, ok := c.cache.Get(path); ok {
			return json.Unmarshal(body, out)
		}
	}

	status, body, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return errorFromResponse(status, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errs.NewResponseMalformedError(err)
	}
	if cacheable {
		c.cache.Set(path, body)
	}
	return nil
}

func (c *Client) uploadFile(ctx context.Context, method, path, field string, file models.Attachment, extra map[string]string) error {
	if file.IsZero() {
		return errs.NewFileUploadFailedError("no file selected", false)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range extra {
		w.WriteField(k, v)
	}
	if err := writeFilePart(w, field, file); err != nil {
		return errs.NewFileUploadFailedError(err.Error(), false)
	}
	if err := w.Close(); err != nil {
		return errs.NewFileUploadFailedError(err.Error(), false)
	}

	status, respBody, err := c.do(ctx, method, path, w.FormDataContentType(), buf.Bytes())
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return errorFromResponse(status, respBody)
	}
	c.InvalidateDashboard()
	return nil
}

// encodeMultipart flattens a submission into multipart form data: scalar
// fields first, then the funding sub-document as a JSON part, then files.
func encodeMultipart(sub ApplicationSubmission) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, value := range sub.Fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}

	if sub.SubDocName != "" {
		doc, err := json.Marshal(sub.SubDoc)
		if err != nil {
			return nil, "", err
		}
		if err := w.WriteField(sub.SubDocName, string(doc)); err != nil {
			return nil, "", err
		}
	}

	for field, file := range sub.Files {
		if file.IsZero() {
			continue
		}
		if err := writeFilePart(w, field, file); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, field string, file models.Attachment) error {
	part, err := w.CreateFormFile(field, file.Filename)
	if err != nil {
		return err
	}
	_, err = part.Write(file.Content)
	return err
}

func (c *Client) instrument(endpoint string, status int, start time.Time) {
	metrics.APIRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
