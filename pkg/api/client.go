// Package api implements the HTTP JSON client for the remote Research
// Assistant service. Every call validates the response shape at the boundary
// and maps failures onto the AuthError / RemoteError / TransportError
// taxonomy instead of trusting ad hoc success fields upstream.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"research-assistant-cli/internal/dto"
	"research-assistant-cli/internal/entity"

	"github.com/google/uuid"
)

type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Hello probes the service. Purely informational; callers log and move on.
func (c *Client) Hello(ctx context.Context) (string, error) {
	var res dto.HelloResponse
	if err := c.getJSON(ctx, "/hello", &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *Client) Login(ctx context.Context, req *dto.LoginRequest) (*entity.Session, error) {
	var res dto.LoginResponse
	if err := c.postJSON(ctx, "/auth/login", req, &res); err != nil {
		if remoteErr, ok := err.(*RemoteError); ok {
			return nil, &AuthError{Message: remoteErr.Message}
		}
		return nil, err
	}
	if !res.Success {
		return nil, &AuthError{Message: res.Error}
	}
	return &entity.Session{
		UserId:      res.User.Id,
		Email:       res.User.Email,
		AccessToken: res.AccessToken,
		SavedAt:     time.Now(),
	}, nil
}

func (c *Client) Signup(ctx context.Context, req *dto.SignupRequest) error {
	var res dto.SignupResponse
	if err := c.postJSON(ctx, "/auth/signup", req, &res); err != nil {
		if remoteErr, ok := err.(*RemoteError); ok {
			return &AuthError{Message: remoteErr.Message}
		}
		return err
	}
	if !res.Success {
		return &AuthError{Message: res.Error}
	}
	return nil
}

func (c *Client) ListReferenceSets(ctx context.Context) ([]entity.ReferenceSet, error) {
	var res dto.ReferenceSetsResponse
	if err := c.getJSON(ctx, "/reference-sets", &res); err != nil {
		return nil, err
	}
	return res.ReferenceSets, nil
}

func (c *Client) CreateReferenceSet(ctx context.Context, req *dto.CreateReferenceSetRequest) (uuid.UUID, error) {
	var res dto.CreateReferenceSetResponse
	if err := c.postJSON(ctx, "/reference-sets", req, &res); err != nil {
		return uuid.Nil, err
	}
	if !res.Success {
		return uuid.Nil, &RemoteError{Message: res.Error}
	}
	return res.Id, nil
}

func (c *Client) DeleteReferenceSet(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, "/reference-sets/"+id.String())
}

func (c *Client) ListInquiries(ctx context.Context) ([]entity.Inquiry, error) {
	var res dto.InquiriesResponse
	if err := c.getJSON(ctx, "/inquiries", &res); err != nil {
		return nil, err
	}
	return res.Inquiries, nil
}

func (c *Client) CreateInquiry(ctx context.Context, req *dto.CreateInquiryRequest) (uuid.UUID, error) {
	var res dto.CreateInquiryResponse
	if err := c.postJSON(ctx, "/inquiries", req, &res); err != nil {
		return uuid.Nil, err
	}
	if !res.Success {
		return uuid.Nil, &RemoteError{Message: res.Error}
	}
	return res.InquiryId, nil
}

func (c *Client) DeleteInquiry(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, "/inquiries/"+id.String())
}

// UploadDocument streams one file into a reference set as multipart form
// data. The remote service owns format validation and chunking; stats come
// back informational only.
func (c *Client) UploadDocument(ctx context.Context, refSetId uuid.UUID, domain, filename string, file io.Reader) (*entity.IngestionStats, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file payload: %w", err)
	}
	if err := writer.WriteField("domain", domain); err != nil {
		return nil, fmt.Errorf("write domain field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	url := c.BaseURL + "/reference-sets/" + refSetId.String() + "/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "upload document", Err: err}
	}
	defer resp.Body.Close()

	var res dto.UploadResponse
	if err := decodeBody(resp, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: res.Error}
	}
	return &res.Stats, nil
}

// TestSearch exercises the retrieval path without ingesting or persisting
// anything. TopK and MinScore are applied server-side.
func (c *Client) TestSearch(ctx context.Context, req *dto.TestSearchRequest) (*dto.TestSearchResponse, error) {
	var res dto.TestSearchResponse
	if err := c.postJSON(ctx, "/test-search", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	var res dto.ChatResponse
	if err := c.postJSON(ctx, "/chat", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// --- transport helpers ---

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	var res dto.DeleteResponse
	if err := c.do(req, &res); err != nil {
		return err
	}
	if !res.Success {
		return &RemoteError{Message: res.Error}
	}
	return nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.Client.Do(req)
	if err != nil {
		return &TransportError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	defer resp.Body.Close()
	return decodeBody(resp, out)
}

// decodeBody maps non-2xx statuses onto RemoteError, surfacing the service's
// own error message verbatim when the body carries one.
func decodeBody(resp *http.Response, out interface{}) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &payload)
		return &RemoteError{StatusCode: resp.StatusCode, Message: payload.Error}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
