//go:build unit

package infra_test

import (
	"errors"
	"testing"

	"fleetrent/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWrapRepoErrClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want infra.RepositoryErrorKind
	}{
		{"no rows", pgx.ErrNoRows, infra.KindNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, infra.KindDuplicateKey},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, infra.KindForeignKeyViolated},
		{"exclusion violation", &pgconn.PgError{Code: "23P01"}, infra.KindConflict},
		{"serialization failure stays generic", &pgconn.PgError{Code: "40001"}, infra.KindDBFailure},
		{"plain error", errors.New("boom"), infra.KindDBFailure},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := infra.WrapRepoErr("query failed", tc.err)
			assert.True(t, infra.IsKind(wrapped, tc.want), "expected kind %s, got %v", tc.want, wrapped)
		})
	}
}

func TestWrapRepoErrExplicitKindWins(t *testing.T) {
	wrapped := infra.WrapRepoErr("not found", &pgconn.PgError{Code: "23505"}, infra.KindNotFound)
	assert.True(t, infra.IsKind(wrapped, infra.KindNotFound))
	assert.False(t, infra.IsKind(wrapped, infra.KindDuplicateKey))
}

func TestWrapRepoErrPreservesCause(t *testing.T) {
	cause := &pgconn.PgError{Code: "23P01", ConstraintName: "bookings_no_overlap"}
	wrapped := infra.WrapRepoErr("insert failed", cause)

	var pgErr *pgconn.PgError
	assert.True(t, errors.As(wrapped, &pgErr))
	assert.Equal(t, "bookings_no_overlap", pgErr.ConstraintName)
}

func TestIsKindOnForeignError(t *testing.T) {
	assert.False(t, infra.IsKind(errors.New("boom"), infra.KindNotFound))
	assert.False(t, infra.IsKind(nil, infra.KindNotFound))
}
