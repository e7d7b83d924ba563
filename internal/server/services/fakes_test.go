package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/vizzyhq/vizzy/internal/dbx"
	"github.com/vizzyhq/vizzy/internal/logging"
	"github.com/vizzyhq/vizzy/internal/server/models"
	conversationsrepo "github.com/vizzyhq/vizzy/internal/server/repositories/conversations"
	memoryrepo "github.com/vizzyhq/vizzy/internal/server/repositories/memory"
	"github.com/vizzyhq/vizzy/internal/server/repositories/repomanager"
	usersrepo "github.com/vizzyhq/vizzy/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	byEmailOut *models.User
	byEmailErr error

	byIDOut *models.User
	byIDErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.byEmailErr != nil {
		return nil, f.byEmailErr
	}
	return f.byEmailOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byIDOut, nil
}

type fakeConvRepo struct {
	createErr error
	created   []*models.Conversation

	listOut []models.Conversation
	listErr error

	getOut *models.Conversation
	getErr error

	delErr error
	delIDs []string

	addMsgErr error
	messages  []*models.Message

	addAssetErr error
	assets      []*models.Asset

	listMsgsOut []models.Message
	listMsgsErr error

	listAssetsOut []models.Asset
	listAssetsErr error
}

func (f *fakeConvRepo) Create(ctx context.Context, conv *models.Conversation) (*models.Conversation, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := *conv
	out.ID = fmt.Sprintf("conv-%d", len(f.created)+1)
	f.created = append(f.created, &out)
	return &out, nil
}

func (f *fakeConvRepo) ListByUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

func (f *fakeConvRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeConvRepo) Delete(ctx context.Context, id string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.delIDs = append(f.delIDs, id)
	return nil
}

func (f *fakeConvRepo) AddMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	if f.addMsgErr != nil {
		return nil, f.addMsgErr
	}
	out := *msg
	out.ID = fmt.Sprintf("msg-%d", len(f.messages)+1)
	f.messages = append(f.messages, &out)
	return &out, nil
}

func (f *fakeConvRepo) AddAsset(ctx context.Context, asset *models.Asset) (*models.Asset, error) {
	if f.addAssetErr != nil {
		return nil, f.addAssetErr
	}
	out := *asset
	out.ID = fmt.Sprintf("asset-%d", len(f.assets)+1)
	f.assets = append(f.assets, &out)
	return &out, nil
}

func (f *fakeConvRepo) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	if f.listMsgsErr != nil {
		return nil, f.listMsgsErr
	}
	return f.listMsgsOut, nil
}

func (f *fakeConvRepo) ListAssets(ctx context.Context, conversationID string) ([]models.Asset, error) {
	if f.listAssetsErr != nil {
		return nil, f.listAssetsErr
	}
	return f.listAssetsOut, nil
}

type fakeMemoryRepo struct {
	addErr error
	added  []string

	lastNOut []models.MemoryItem
	lastNErr error

	trimErr   error
	trimCalls int

	clearErr   error
	clearCalls int
}

func (f *fakeMemoryRepo) Add(ctx context.Context, userID, content string) (*models.MemoryItem, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.added = append(f.added, content)
	return &models.MemoryItem{ID: fmt.Sprintf("mem-%d", len(f.added)), UserID: userID, Content: content}, nil
}

func (f *fakeMemoryRepo) LastN(ctx context.Context, userID string, n int) ([]models.MemoryItem, error) {
	if f.lastNErr != nil {
		return nil, f.lastNErr
	}
	return f.lastNOut, nil
}

func (f *fakeMemoryRepo) Trim(ctx context.Context, userID string, keep int) error {
	if f.trimErr != nil {
		return f.trimErr
	}
	f.trimCalls++
	return nil
}

func (f *fakeMemoryRepo) Clear(ctx context.Context, userID string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.clearCalls++
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	c *fakeConvRepo
	m *fakeMemoryRepo
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return f.u }
func (f *fakeRepoManager) Conversations(db dbx.DBTX) conversationsrepo.Repository {
	return f.c
}
func (f *fakeRepoManager) Memory(db dbx.DBTX) memoryrepo.Repository { return f.m }

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)
