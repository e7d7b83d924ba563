package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vizzyhq/vizzy/internal/client/api"
	"github.com/vizzyhq/vizzy/internal/common"
)

type phaseRecorder struct {
	mu     sync.Mutex
	phases []Phase
	msgs   []string
}

func (r *phaseRecorder) notify(phase Phase, msg string) {
	r.mu.Lock()
	r.phases = append(r.phases, phase)
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

func (r *phaseRecorder) seen() []Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Phase, len(r.phases))
	copy(out, r.phases)
	return out
}

func newTestController(f *fakeAPI) (*Controller, *memStore, *phaseRecorder) {
	store := &memStore{}
	rec := &phaseRecorder{}
	cache := NewCache(f)
	binder := NewBinder()
	ctrl := NewController(f, store, cache, binder, nopLogger{}, rec.notify)
	return ctrl, store, rec
}

func TestSend_EmptyDraftNeverReachesNetwork(t *testing.T) {
	f := &fakeAPI{}
	ctrl, _, _ := newTestController(f)

	ctrl.SetDraft("   \t  ")
	_, err := ctrl.Send(context.Background())

	assert.ErrorIs(t, err, common.ErrEmptyMessage)
	assert.Empty(t, f.callList(), "no backend call expected")
}

func TestSend_AttachmentAloneIsEnough(t *testing.T) {
	f := &fakeAPI{}
	var got api.SendRequest
	f.sendFn = func(ctx context.Context, req api.SendRequest) (*api.SendResult, error) {
		got = req
		return &api.SendResult{ConversationID: "c1"}, nil
	}
	ctrl, _, _ := newTestController(f)

	_, err := ctrl.Upload(context.Background(), "cat.png", strings.NewReader("x"))
	require.NoError(t, err)

	_, err = ctrl.Send(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Text)
	assert.Equal(t, "http://files/cat.png", got.ImageURL)
}

func TestSend_SecondSendWhileInFlightIsRejected(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	f := &fakeAPI{}
	f.sendFn = func(ctx context.Context, req api.SendRequest) (*api.SendResult, error) {
		close(started)
		<-release
		return &api.SendResult{ConversationID: "c1"}, nil
	}
	ctrl, _, _ := newTestController(f)
	ctrl.SetDraft("hello")

	done := make(chan struct{})
	go func() {
		_, _ = ctrl.Send(context.Background())
		close(done)
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first send never started")
	}

	_, err := ctrl.Send(context.Background())
	assert.ErrorIs(t, err, common.ErrBusy)

	close(release)
	<-done
}

func TestSend_SuccessClearsDraftKeepsAttachment(t *testing.T) {
	f := &fakeAPI{}
	ctrl, _, rec := newTestController(f)

	_, err := ctrl.Upload(context.Background(), "dog.png", strings.NewReader("x"))
	require.NoError(t, err)
	ctrl.SetDraft("make it bigger")

	res, err := ctrl.Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "c1", res.ConversationID)

	assert.Empty(t, ctrl.Draft())
	assert.Equal(t, "http://files/dog.png", ctrl.Attachment(), "attachment survives a send")

	assert.Equal(t, []Phase{PhaseValidating, PhaseSending, PhaseReconciling, PhaseIdle}, rec.seen())
	assert.Equal(t, []string{"UploadImage", "SendChat", "ListConversations"}, f.callList())
}

func TestSend_TargetsOpenConversation(t *testing.T) {
	f := &fakeAPI{}
	var got api.SendRequest
	f.sendFn = func(ctx context.Context, req api.SendRequest) (*api.SendResult, error) {
		got = req
		return &api.SendResult{ConversationID: req.ConversationID}, nil
	}
	ctrl, _, _ := newTestController(f)

	_, err := ctrl.Open(context.Background(), "c42")
	require.NoError(t, err)

	ctrl.SetDraft("continue")
	ctrl.SetUsePreferences(true)
	_, err = ctrl.Send(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "c42", got.ConversationID)
	assert.True(t, got.UsePreferences)
}

func TestSend_ValidationFailureKeepsDraft(t *testing.T) {
	f := &fakeAPI{}
	f.sendFn = func(ctx context.Context, req api.SendRequest) (*api.SendResult, error) {
		return nil, common.NewValidationError("Please write a proper creative prompt.")
	}
	ctrl, _, rec := newTestController(f)
	ctrl.SetDraft("hm")

	_, err := ctrl.Send(context.Background())
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))

	assert.Equal(t, "hm", ctrl.Draft(), "failed send must not lose the draft")

	phases := rec.seen()
	require.NotEmpty(t, phases)
	assert.Equal(t, PhaseFailed, phases[len(phases)-1])
	assert.Equal(t, "Please write a proper creative prompt.", rec.msgs[len(rec.msgs)-1])
}

func TestSend_RejectedCredentialForcesLogout(t *testing.T) {
	f := &fakeAPI{}
	f.sendFn = func(ctx context.Context, req api.SendRequest) (*api.SendResult, error) {
		return nil, common.ErrUnauthorized
	}
	ctrl, store, rec := newTestController(f)

	require.NoError(t, ctrl.Login(context.Background(), "a@x.com", "pw"))
	require.True(t, ctrl.Authenticated())

	ctrl.SetDraft("hello")
	_, err := ctrl.Send(context.Background())
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	assert.False(t, ctrl.Authenticated())
	token, _ := store.Token(context.Background())
	assert.Empty(t, token, "rejected credential must be cleared")

	last := rec.msgs[len(rec.msgs)-1]
	assert.Equal(t, "Your session has expired. Please log in again.", last)
}

func TestLogin_SavesTokenAndLoadsList(t *testing.T) {
	f := &fakeAPI{}
	f.listFn = func(ctx context.Context) ([]api.Conversation, error) {
		return []api.Conversation{{ID: "a", Title: "First"}}, nil
	}
	ctrl, store, _ := newTestController(f)

	require.NoError(t, ctrl.Login(context.Background(), "a@x.com", "pw"))

	assert.True(t, ctrl.Authenticated())
	token, _ := store.Token(context.Background())
	assert.Equal(t, "tok", token)
	assert.Equal(t, []string{"Login", "ListConversations"}, f.callList())
}

func TestSignup_DoesNotAuthenticate(t *testing.T) {
	f := &fakeAPI{}
	ctrl, store, _ := newTestController(f)

	require.NoError(t, ctrl.Signup(context.Background(), "a@x.com", "pw"))

	assert.False(t, ctrl.Authenticated())
	token, _ := store.Token(context.Background())
	assert.Empty(t, token)
}

func TestLogout_ClearsEverything(t *testing.T) {
	f := &fakeAPI{}
	ctrl, store, _ := newTestController(f)

	require.NoError(t, ctrl.Login(context.Background(), "a@x.com", "pw"))
	_, err := ctrl.Upload(context.Background(), "cat.png", strings.NewReader("x"))
	require.NoError(t, err)
	ctrl.SetDraft("in progress")

	require.NoError(t, ctrl.Logout(context.Background()))

	assert.False(t, ctrl.Authenticated())
	assert.Empty(t, ctrl.Draft())
	assert.Empty(t, ctrl.Attachment())
	token, _ := store.Token(context.Background())
	assert.Empty(t, token)
}

func TestDelete_CurrentConversationSwitchesToNewChat(t *testing.T) {
	f := &fakeAPI{}
	ctrl, _, _ := newTestController(f)
	ctx := context.Background()

	_, err := ctrl.Open(ctx, "c1")
	require.NoError(t, err)

	require.NoError(t, ctrl.Delete(ctx, "c1"))
	assert.Empty(t, ctrl.cache.CurrentID())
}

func TestDelete_OtherConversationKeepsCurrent(t *testing.T) {
	f := &fakeAPI{}
	ctrl, _, _ := newTestController(f)
	ctx := context.Background()

	_, err := ctrl.Open(ctx, "c1")
	require.NoError(t, err)

	require.NoError(t, ctrl.Delete(ctx, "c2"))
	assert.Equal(t, "c1", ctrl.cache.CurrentID())
}

func TestRestore_ResumesSavedSession(t *testing.T) {
	f := &fakeAPI{}
	ctrl, store, _ := newTestController(f)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "saved-token"))
	require.NoError(t, ctrl.Restore(ctx))

	assert.True(t, ctrl.Authenticated())
	assert.Equal(t, []string{"ListConversations"}, f.callList())
}

func TestRestore_StaleCredentialClearedSilently(t *testing.T) {
	f := &fakeAPI{}
	f.listFn = func(ctx context.Context) ([]api.Conversation, error) {
		return nil, common.ErrUnauthorized
	}
	ctrl, store, _ := newTestController(f)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "stale"))
	require.NoError(t, ctrl.Restore(ctx))

	assert.False(t, ctrl.Authenticated())
	token, _ := store.Token(ctx)
	assert.Empty(t, token)
}

func TestRestore_NoSavedCredentialIsNoop(t *testing.T) {
	f := &fakeAPI{}
	ctrl, _, _ := newTestController(f)

	require.NoError(t, ctrl.Restore(context.Background()))
	assert.False(t, ctrl.Authenticated())
	assert.Empty(t, f.callList())
}

func TestAppendDraft(t *testing.T) {
	ctrl, _, _ := newTestController(&fakeAPI{})

	ctrl.AppendDraft("a castle")
	ctrl.AppendDraft("  at sunset ")
	ctrl.AppendDraft("")

	assert.Equal(t, "a castle at sunset", ctrl.Draft())
}

func TestUserMessage_NeverLeaksTransportDetail(t *testing.T) {
	raw := common.ErrUnavailable
	msg := UserMessage(raw)
	assert.NotContains(t, msg, "dial tcp")
	assert.Equal(t, "The server is unavailable. Please try again.", msg)
}

func TestSession_LoginSendListScenario(t *testing.T) {
	var (
		mu   sync.Mutex
		list []api.Conversation
	)

	f := &fakeAPI{}
	f.listFn = func(ctx context.Context) ([]api.Conversation, error) {
		mu.Lock()
		defer mu.Unlock()
		out := make([]api.Conversation, len(list))
		copy(out, list)
		return out, nil
	}
	f.sendFn = func(ctx context.Context, req api.SendRequest) (*api.SendResult, error) {
		require.Empty(t, req.ConversationID, "first send targets a new chat")
		mu.Lock()
		list = []api.Conversation{{ID: "c1", Title: req.Text}}
		mu.Unlock()
		return &api.SendResult{
			ConversationID:   "c1",
			UserMessage:      api.Message{ID: "m1", Role: common.RoleUser, Text: req.Text},
			AssistantMessage: api.Message{ID: "m2", Role: common.RoleAssistant, Text: "Generated successfully."},
		}, nil
	}

	ctrl, store, _ := newTestController(f)
	ctx := context.Background()

	require.NoError(t, ctrl.Login(ctx, "a@x.com", "pw"))
	assert.True(t, ctrl.Authenticated())
	token, _ := store.Token(ctx)
	assert.Equal(t, "tok", token)
	assert.Empty(t, ctrl.Conversations(), "fresh account starts with no conversations")

	ctrl.SetDraft("a cat surfing")
	res, err := ctrl.Send(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c1", res.ConversationID)

	assert.Equal(t, "c1", ctrl.CurrentConversation(), "send adopts the created conversation")
	convs := ctrl.Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, "c1", convs[0].ID)

	detail := ctrl.CurrentDetail()
	require.NotNil(t, detail)
	require.Len(t, detail.Messages, 2)
	assert.Equal(t, common.RoleUser, detail.Messages[0].Role)
	assert.Equal(t, common.RoleAssistant, detail.Messages[1].Role)

	assert.Equal(t,
		[]string{"Login", "ListConversations", "SendChat", "ListConversations"},
		f.callList())
}
