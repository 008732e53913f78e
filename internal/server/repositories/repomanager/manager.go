package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/claimdesk/internal/dbx"
	"github.com/dmitrijs2005/claimdesk/internal/server/repositories/analysts"
	"github.com/dmitrijs2005/claimdesk/internal/server/repositories/claims"
	"github.com/dmitrijs2005/claimdesk/internal/server/repositories/documents"
	"github.com/dmitrijs2005/claimdesk/internal/server/repositories/statusupdates"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// several of them inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	SchemaVersion(context.Context, *sql.DB) (int64, error)
	Claims(db dbx.DBTX) claims.Repository
	Documents(db dbx.DBTX) documents.Repository
	StatusUpdates(db dbx.DBTX) statusupdates.Repository
	Analysts(db dbx.DBTX) analysts.Repository
}
