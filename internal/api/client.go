package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"buyer-lead-console/internal/models"
)

// Credential is a browser session's view of its stored token. Clear removes
// the persisted token; it is invoked by the gateway on authentication
// failures outside the exempt endpoints.
type Credential interface {
	Token() string
	Clear()
}

// anonymous is the credential used for requests issued before login
type anonymous struct{}

func (anonymous) Token() string { return "" }
func (anonymous) Clear()        {}

// Anonymous returns a credential with no token attached
func Anonymous() Credential { return anonymous{} }

// authExemptSuffixes lists the request paths whose 401 responses must NOT
// clear the stored token: clearing during the login/verification calls
// themselves would drop a token mid-check and cause redirect loops.
var authExemptSuffixes = []string{
	"/auth/login",
	"/auth/register",
	"/auth/demo-login",
	"/auth/me",
}

// Client is a thin HTTP gateway to the remote buyer-leads API. It attaches
// the credential token to every request and normalizes failure responses.
// It never retries and never queues requests.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a gateway for the given base URL, e.g.
// "http://localhost:4000/api"
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// do issues one request. A 401 response clears the credential unless the
// path is auth-exempt.
func (c *Client) do(cred Credential, method, path string, query url.Values, body io.Reader, contentType string) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequest(method, u, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := cred.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{StatusCode: 0, Message: GenericErrorMessage}
	}

	if resp.StatusCode == http.StatusUnauthorized && !isAuthExempt(path) {
		cred.Clear()
	}
	return resp, nil
}

func isAuthExempt(path string) bool {
	for _, suffix := range authExemptSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// doJSON issues a request with an optional JSON body and decodes a JSON
// response into out (when out is non-nil)
func (c *Client) doJSON(cred Credential, method, path string, query url.Values, payload, out interface{}) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	resp, err := c.do(cred, method, path, query, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeError extracts a best-effort message and any field errors from a
// failure response body
func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	var body struct {
		Error   string              `json:"error"`
		Message string              `json:"message"`
		Fields  map[string][]string `json:"fields"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		switch {
		case body.Error != "":
			apiErr.Message = body.Error
		case body.Message != "":
			apiErr.Message = body.Message
		}
		apiErr.Fields = body.Fields
	}
	if apiErr.Message == "" {
		apiErr.Message = GenericErrorMessage
	}
	return apiErr
}

// ---- Auth endpoints ----

// AuthResult is the payload of a successful login/registration
type AuthResult struct {
	Token string          `json:"token"`
	User  models.Identity `json:"user"`
}

// Login exchanges credentials for a token and identity
func (c *Client) Login(email, password string) (*AuthResult, error) {
	payload := map[string]string{"email": email, "password": password}
	var out AuthResult
	if err := c.doJSON(Anonymous(), http.MethodPost, "/auth/login", nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DemoLogin logs in as a shared demo account for the given role
func (c *Client) DemoLogin(role string) (*AuthResult, error) {
	payload := map[string]string{"role": role}
	var out AuthResult
	if err := c.doJSON(Anonymous(), http.MethodPost, "/auth/demo-login", nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a new account
func (c *Client) Register(email, password, role string) (*AuthResult, error) {
	payload := map[string]string{"email": email, "password": password, "role": role}
	var out AuthResult
	if err := c.doJSON(Anonymous(), http.MethodPost, "/auth/register", nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me validates the stored token against the profile endpoint
func (c *Client) Me(cred Credential) (*models.Identity, error) {
	var out struct {
		User models.Identity `json:"user"`
	}
	if err := c.doJSON(cred, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ---- Buyer endpoints ----

// ListBuyers fetches one page of leads matching the filter query
func (c *Client) ListBuyers(cred Credential, query url.Values) (*models.LeadPage, error) {
	var out models.LeadPage
	if err := c.doJSON(cred, http.MethodGet, "/buyers", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBuyer fetches a single lead with its recent change history
func (c *Client) GetBuyer(cred Credential, id string) (*models.BuyerLead, []models.ChangeEntry, error) {
	var out struct {
		Buyer   models.BuyerLead     `json:"buyer"`
		History []models.ChangeEntry `json:"history"`
	}
	if err := c.doJSON(cred, http.MethodGet, "/buyers/"+id, nil, nil, &out); err != nil {
		return nil, nil, err
	}
	return &out.Buyer, out.History, nil
}

// CreateBuyer submits a validated lead
func (c *Client) CreateBuyer(cred Credential, lead *models.BuyerLead) (*models.BuyerLead, error) {
	var out struct {
		Buyer models.BuyerLead `json:"buyer"`
	}
	if err := c.doJSON(cred, http.MethodPost, "/buyers", nil, lead, &out); err != nil {
		return nil, err
	}
	return &out.Buyer, nil
}

// UpdateBuyer submits an update. The lead must carry the last-known
// updatedAt: the server rejects with 409 when it no longer matches.
func (c *Client) UpdateBuyer(cred Credential, lead *models.BuyerLead) (*models.BuyerLead, error) {
	var out struct {
		Buyer models.BuyerLead `json:"buyer"`
	}
	if err := c.doJSON(cred, http.MethodPut, "/buyers/"+lead.ID, nil, lead, &out); err != nil {
		return nil, err
	}
	return &out.Buyer, nil
}

// DeleteBuyer removes a lead
func (c *Client) DeleteBuyer(cred Credential, id string) error {
	return c.doJSON(cred, http.MethodDelete, "/buyers/"+id, nil, nil, nil)
}

// ---- CSV import/export ----

// RowError is one rejected CSV row, with a 1-based data row number
type RowError struct {
	Row    int      `json:"row"`
	Errors []string `json:"errors"`
}

// ImportResult reports the outcome of an accepted import request. The server
// may insert some rows and reject others; both counts are visible.
type ImportResult struct {
	Inserted  int        `json:"inserted"`
	RowErrors []RowError `json:"rowErrors"`
}

// ImportCSV uploads a CSV file as multipart form data under the field name
// "csvFile"
func (c *Client) ImportCSV(cred Credential, filename string, file io.Reader) (*ImportResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("csvFile", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	resp, err := c.do(cred, http.MethodPost, "/buyers/import", nil, &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}

	var out ImportResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode import result: %w", err)
	}
	return &out, nil
}

// ExportCSV requests a CSV export of the leads matching the filter query.
// The payload is opaque bytes streamed straight to the browser.
func (c *Client) ExportCSV(cred Credential, query url.Values) ([]byte, error) {
	resp, err := c.do(cred, http.MethodGet, "/buyers/export", query, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}
	return io.ReadAll(resp.Body)
}
