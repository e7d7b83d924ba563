package repomanager

import (
	"context"
	"database/sql"

	"github.com/vizzyhq/vizzy/internal/dbx"
	"github.com/vizzyhq/vizzy/internal/server/repositories/conversations"
	"github.com/vizzyhq/vizzy/internal/server/repositories/memory"
	"github.com/vizzyhq/vizzy/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Conversations(db dbx.DBTX) conversations.Repository
	Memory(db dbx.DBTX) memory.Repository
}
