package postgres

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"

	"go-autofill-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	t.Run("Unique violation maps to duplicate key", func(t *testing.T) {
		err := mapError(fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_email_key"}))
		assert.ErrorIs(t, err, domain.ErrDuplicateKey)
		assert.Contains(t, err.Error(), "users_email_key")
	})

	t.Run("Other server errors pass through", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23503"}
		err := mapError(pgErr)
		assert.False(t, errors.Is(err, domain.ErrDuplicateKey))
		assert.False(t, errors.Is(err, domain.ErrUnavailable))
	})

	t.Run("Network errors map to unavailable", func(t *testing.T) {
		opErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
		assert.ErrorIs(t, mapError(opErr), domain.ErrUnavailable)
		assert.ErrorIs(t, mapError(net.ErrClosed), domain.ErrUnavailable)
	})

	t.Run("Nil stays nil", func(t *testing.T) {
		assert.NoError(t, mapError(nil))
	})
}

func TestMigrationsDeclareInvariants(t *testing.T) {
	sql, err := migrations.ReadFile("migrations/001_init.sql")
	require.NoError(t, err)
	schema := string(sql)

	for _, want := range []string{
		"users_username_key ON users (username)",
		"users_email_key ON users (email)",
		"profiles_user_id_key ON profiles (user_id)",
		"extension_settings_user_id_key ON extension_settings (user_id)",
		"statistics_user_id_key ON statistics (user_id)",
		"resumes_one_default_per_user ON resumes (user_id) WHERE is_default",
	} {
		assert.True(t, strings.Contains(schema, want), "schema is missing %q", want)
	}
}
