package session

import (
	"context"
	"io"
	"sync"

	"github.com/vizzyhq/vizzy/internal/client/api"
	"github.com/vizzyhq/vizzy/internal/logging"
)

// fakeAPI is a scriptable api.Client. Each hook defaults to a benign
// success; tests override only what they exercise. calls records method
// names in invocation order.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	loginFn  func(ctx context.Context, email, password string) (string, error)
	signupFn func(ctx context.Context, email, password string) error
	listFn   func(ctx context.Context) ([]api.Conversation, error)
	getFn    func(ctx context.Context, id string) (*api.ConversationDetail, error)
	sendFn   func(ctx context.Context, req api.SendRequest) (*api.SendResult, error)
	uploadFn func(ctx context.Context, filename string, r io.Reader) (string, error)
	deleteFn func(ctx context.Context, id string) error
	resetFn  func(ctx context.Context) error
}

var _ api.Client = (*fakeAPI)(nil)

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeAPI) callList() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (string, error) {
	f.record("Login")
	if f.loginFn != nil {
		return f.loginFn(ctx, email, password)
	}
	return "tok", nil
}

func (f *fakeAPI) Signup(ctx context.Context, email, password string) error {
	f.record("Signup")
	if f.signupFn != nil {
		return f.signupFn(ctx, email, password)
	}
	return nil
}

func (f *fakeAPI) ListConversations(ctx context.Context) ([]api.Conversation, error) {
	f.record("ListConversations")
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeAPI) GetConversation(ctx context.Context, id string) (*api.ConversationDetail, error) {
	f.record("GetConversation")
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return &api.ConversationDetail{ID: id}, nil
}

func (f *fakeAPI) SendChat(ctx context.Context, req api.SendRequest) (*api.SendResult, error) {
	f.record("SendChat")
	if f.sendFn != nil {
		return f.sendFn(ctx, req)
	}
	return &api.SendResult{ConversationID: "c1"}, nil
}

func (f *fakeAPI) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	f.record("UploadImage")
	if f.uploadFn != nil {
		return f.uploadFn(ctx, filename, r)
	}
	return "http://files/" + filename, nil
}

func (f *fakeAPI) DeleteConversation(ctx context.Context, id string) error {
	f.record("DeleteConversation")
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeAPI) ResetMemory(ctx context.Context) error {
	f.record("ResetMemory")
	if f.resetFn != nil {
		return f.resetFn(ctx)
	}
	return nil
}

// memStore is an in-memory creds.Store.
type memStore struct {
	mu    sync.Mutex
	token string
}

func (s *memStore) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *memStore) Save(ctx context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *memStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (nopLogger) With(args ...any) logging.Logger                    { return nopLogger{} }
