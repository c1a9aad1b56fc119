package service

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/RodrigoTechieX/MedCore-Sistema/internal/audit"
)

const (
	validCPF      = "52998224725"
	validCPFMask  = "529.982.247-25"
	otherValidCPF = "11144477735"
)

type spyAuditor struct {
	entries []audit.Entry
	err     error
}

func (s *spyAuditor) Record(_ context.Context, entry audit.Entry) audit.Outcome {
	s.entries = append(s.entries, entry)
	if s.err != nil {
		return audit.Outcome{Err: s.err}
	}
	return audit.Outcome{ID: uint(len(s.entries))}
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	return gdb, mock
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code, Message: "constraint violated"}
}

func idRows(id int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id"}).AddRow(id)
}

func requireSingleEntry(t *testing.T, spy *spyAuditor, module, action string) audit.Entry {
	t.Helper()
	require.Len(t, spy.entries, 1)
	require.Equal(t, module, spy.entries[0].Module)
	require.Equal(t, action, spy.entries[0].Action)
	return spy.entries[0]
}

var errStoreDown = errors.New("connection reset by peer")
