package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vizzyhq/vizzy/internal/common"
)

// staticTokens is a TokenSource whose value can be flipped between calls.
type staticTokens struct {
	token string
}

func (s *staticTokens) Token(ctx context.Context) (string, error) { return s.token, nil }

func TestHTTPClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123", "token_type": "bearer"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &staticTokens{}, nil)

	token, err := c.Login(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	_, err = c.Login(context.Background(), "a@x.com", "wrong")
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))
	assert.NotErrorIs(t, err, common.ErrUnauthorized,
		"rejected login credentials must not read as an expired session")
}

func TestHTTPClient_LoginRejectionCarriesServerReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid email or password."})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &staticTokens{}, nil)

	_, err := c.Login(context.Background(), "a@x.com", "wrong")
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))
	assert.Equal(t, "Invalid email or password.", common.ValidationReason(err))
}

func TestHTTPClient_AuthedUnauthorizedStaysUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated."})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &staticTokens{token: "stale"}, nil)

	_, err := c.ListConversations(context.Background())
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestHTTPClient_AttachesFreshToken(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get(common.AuthHeaderName))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tokens := &staticTokens{token: "first"}
	c := NewHTTPClient(srv.URL, tokens, nil)

	_, err := c.ListConversations(context.Background())
	require.NoError(t, err)

	// The store changed between calls; the header must follow it.
	tokens.token = "second"
	_, err = c.ListConversations(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer first", "Bearer second"}, seen)
}

func TestHTTPClient_MissingTokenFailsWithoutRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &staticTokens{token: ""}, nil)

	_, err := c.ListConversations(context.Background())
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.False(t, called, "no request should be made without a credential")
}

func TestHTTPClient_ValidationErrorCarriesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Please write a proper creative prompt."})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &staticTokens{token: "tok"}, nil)

	_, err := c.SendChat(context.Background(), SendRequest{Text: "hi"})
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))
	assert.Equal(t, "Please write a proper creative prompt.", common.ValidationReason(err))
}

func TestHTTPClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewHTTPClient(srv.URL, &staticTokens{token: "tok"}, nil)

	_, err := c.ListConversations(context.Background())
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestHTTPClient_SendChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/send", r.URL.Path)

		var req SendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hi", req.Text)
		assert.Empty(t, req.ConversationID)

		_ = json.NewEncoder(w).Encode(SendResult{
			ConversationID:   "c1",
			UserMessage:      Message{Role: common.RoleUser, Text: "hi"},
			AssistantMessage: Message{Role: common.RoleAssistant, Text: "Generated successfully."},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &staticTokens{token: "tok"}, nil)

	res, err := c.SendChat(context.Background(), SendRequest{Text: "hi", UsePreferences: true})
	require.NoError(t, err)
	assert.Equal(t, "c1", res.ConversationID)
	assert.Equal(t, common.RoleUser, res.UserMessage.Role)
	assert.Equal(t, common.RoleAssistant, res.AssistantMessage.Role)
}

func TestHTTPClient_UploadImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/upload/image", r.URL.Path)
		require.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "cat.png", header.Filename)

		_ = json.NewEncoder(w).Encode(map[string]string{"image_url": "http://files/cat.png"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &staticTokens{token: "tok"}, nil)

	url, err := c.UploadImage(context.Background(), "cat.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://files/cat.png", url)
}

func TestHTTPClient_DeleteAndReset(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &staticTokens{token: "tok"}, nil)

	require.NoError(t, c.DeleteConversation(context.Background(), "c9"))
	require.NoError(t, c.ResetMemory(context.Background()))
	assert.Equal(t, []string{"DELETE /conversations/c9", "POST /memory/reset"}, paths)
}
