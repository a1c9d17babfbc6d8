package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTranslate_CodigosDeConflicto(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03"} {
		err := fmt.Errorf("update inventory counters: %w", &pgconn.PgError{Code: code})
		assert.ErrorIs(t, translate(err), domain.ErrConflict, code)
	}
}

func TestTranslate_Unicidad(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.ErrorIs(t, translate(err), domain.ErrDuplicate)
}

func TestTranslate_ErrorDeDominioPasaIntacto(t *testing.T) {
	se := domain.NewStockError(domain.ErrInsufficientStock, nil)
	got := translate(se)
	assert.Same(t, se, got)

	other := errors.New("otro")
	assert.Equal(t, other, translate(other))
	assert.Nil(t, translate(nil))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	assert.Equal(t, "v1", *nullIfEmpty("v1"))
	assert.Equal(t, "", emptyIfNull(nil))
}
