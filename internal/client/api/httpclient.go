package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/vizzyhq/vizzy/internal/common"
)

// HTTPClient is the concrete Client speaking the backend's JSON REST
// surface. It holds no session state of its own; the credential comes from
// the TokenSource on every call.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a gateway bound to baseURL (e.g. "http://127.0.0.1:8000").
// Timeouts are left to httpClient; pass nil to use http.DefaultClient.
func NewHTTPClient(baseURL string, tokens TokenSource, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
	}
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Detail string `json:"detail"`
}

// do executes one JSON request. in may be nil (no body); out may be nil
// (response body discarded). When authed is true the current token is
// attached; an absent token fails fast with ErrUnauthorized without a
// round-trip.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authed {
		if err := c.attachToken(ctx, req); err != nil {
			return err
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return mapStatus(resp.StatusCode, resp.Body, authed)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) attachToken(ctx context.Context, req *http.Request) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("reading credential: %w", err)
	}
	if token == "" {
		return common.ErrUnauthorized
	}
	req.Header.Set(common.AuthHeaderName, common.BearerPrefix+token)
	return nil
}

// mapStatus translates an HTTP failure into the shared error taxonomy. The
// server's "detail" message, when present, rides along on validation errors.
// A 401 means a rejected credential only on authed calls; on the auth
// endpoints themselves it is a rejection of the submitted email/password,
// reported with the server's reason so the user sees what went wrong.
func mapStatus(status int, body io.Reader, authed bool) error {
	var eb errorBody
	_ = json.NewDecoder(body).Decode(&eb)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		if !authed {
			if eb.Detail == "" {
				eb.Detail = "Invalid email or password."
			}
			return common.NewValidationError(eb.Detail)
		}
		return common.ErrUnauthorized
	case status >= 400 && status < 500:
		return common.NewValidationError(eb.Detail)
	default:
		if eb.Detail != "" {
			return fmt.Errorf("%w: %s", common.ErrUnavailable, eb.Detail)
		}
		return fmt.Errorf("%w: status %d", common.ErrUnavailable, status)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &resp, false)
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

func (c *HTTPClient) Signup(ctx context.Context, email, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/signup", loginRequest{Email: email, Password: password}, nil, false)
}

func (c *HTTPClient) ListConversations(ctx context.Context) ([]Conversation, error) {
	var list []Conversation
	if err := c.do(ctx, http.MethodGet, "/conversations", nil, &list, true); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) GetConversation(ctx context.Context, id string) (*ConversationDetail, error) {
	var detail ConversationDetail
	if err := c.do(ctx, http.MethodGet, "/conversations/"+url.PathEscape(id), nil, &detail, true); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *HTTPClient) SendChat(ctx context.Context, req SendRequest) (*SendResult, error) {
	var result SendResult
	if err := c.do(ctx, http.MethodPost, "/chat/send", req, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) DeleteConversation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/conversations/"+url.PathEscape(id), nil, nil, true)
}

func (c *HTTPClient) ResetMemory(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/memory/reset", nil, nil, true)
}

type uploadResponse struct {
	ImageURL string `json:"image_url"`
}

// UploadImage posts the file as multipart form data and returns the stored
// image's URL. The binder, not this client, keeps track of the result.
func (c *HTTPClient) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("building upload form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("building upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/image", &buf)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := c.attachToken(ctx, req); err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return "", mapStatus(resp.StatusCode, resp.Body, true)
	}

	var ur uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return ur.ImageURL, nil
}
