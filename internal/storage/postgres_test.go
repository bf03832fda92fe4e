package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/apperrors"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/tenant"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/logger"
)

// Note on SQL Query Matching in Tests:
// ----------------------------------
// GORM generates SQL with additional clauses like ORDER BY and LIMIT that can
// make exact string matching brittle, and INSERTs add RETURNING clauses for
// columns with database defaults. To handle this we:
//
// 1. Use sqlmock.QueryMatcherEqual where the generated SQL is stable
//    (single-table First/UpdateColumn queries)
// 2. Use the default regexp matcher with a partial pattern for INSERT and
//    multi-column UPDATE statements
// 3. Use sqlmock.AnyArg() / AnyTime{} for parameters that vary

const testOrganizationID = "org-test-123"

// AnyTime matches any time.Time argument.
type AnyTime struct{}

// Match satisfies sqlmock.Argument interface
func (a AnyTime) Match(v driver.Value) bool {
	_, ok := v.(time.Time)
	return ok
}

func newTestRepoWithMatcher(t *testing.T, matcher sqlmock.QueryMatcher) (*PostgresRepo, sqlmock.Sqlmock) {
	t.Helper()
	logger.Log = zaptest.NewLogger(t).Named("test")
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(matcher))
	assert.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger:                 gormLogger.Default.LogMode(gormLogger.Silent),
		SkipDefaultTransaction: true,
	})
	assert.NoError(t, err)
	return &PostgresRepo{db: gormDB}, mock
}

func newTestRepo(t *testing.T) (*PostgresRepo, sqlmock.Sqlmock) {
	t.Helper()
	return newTestRepoWithMatcher(t, sqlmock.QueryMatcherEqual)
}

func contextWithOrganization() context.Context {
	return tenant.WithOrganizationID(context.Background(), testOrganizationID)
}

func TestIsTransientError(t *testing.T) {
	testCases := []struct {
		name      string
		err       error
		transient bool
	}{
		{"nil error", nil, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"connection exception class", &pgconn.PgError{Code: "08006"}, true},
		{"insufficient resources class", &pgconn.PgError{Code: "53300"}, true},
		{"deadlock detected", &pgconn.PgError{Code: "40P01"}, true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"connection refused string", errors.New("dial tcp: connection refused"), true},
		{"broken pipe string", errors.New("write: broken pipe"), true},
		{"plain error", errors.New("syntax error near SELECT"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.transient, isTransientError(tc.err))
		})
	}
}

func TestCheckConstraintViolation(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"record not found", gorm.ErrRecordNotFound, apperrors.ErrNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, apperrors.ErrDuplicate},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "idx_contacts_org_phone"}, apperrors.ErrDuplicate},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, apperrors.ErrBadRequest},
		{"not null violation", &pgconn.PgError{Code: "23502", ColumnName: "phone"}, apperrors.ErrBadRequest},
		{"value too long", &pgconn.PgError{Code: "22001", ColumnName: "body"}, apperrors.ErrBadRequest},
		{"unhandled pg code", &pgconn.PgError{Code: "42P01"}, apperrors.ErrDatabase},
		{"generic error", fmt.Errorf("boom"), apperrors.ErrDatabase},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := checkConstraintViolation(tc.err)
			assert.ErrorIs(t, mapped, tc.sentinel)
		})
	}

	assert.NoError(t, checkConstraintViolation(nil))
}
