package specification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type row struct {
	Id string
}

// dryRun builds SQL without a live database.
func dryRun(t *testing.T, specs ...Specification) string {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost"}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}

	q := db.Table("usage_records")
	for _, s := range specs {
		q = s.Apply(q)
	}
	var rows []row
	stmt := q.Find(&rows).Statement
	return stmt.SQL.String()
}

func TestSpecifications_BuildSQL(t *testing.T) {
	sql := dryRun(t,
		ByAccountID{AccountID: uuid.New()},
		OrderBy{Field: "answered_at", Desc: true},
		Pagination{Limit: 10, Offset: 20},
	)

	assert.Contains(t, sql, "account_id = $1")
	assert.Contains(t, sql, "ORDER BY answered_at DESC")
	assert.Contains(t, sql, "LIMIT")
	assert.Contains(t, sql, "OFFSET")
}

func TestForUpdate_AddsLockingClause(t *testing.T) {
	sql := dryRun(t, ByOrderID{OrderID: "DOCQA-1"}, ForUpdate{})
	assert.Contains(t, sql, "FOR UPDATE")
}
