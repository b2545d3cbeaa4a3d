package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	assert.Equal(t, ErrNotFound, notFound(pgx.ErrNoRows))
	assert.ErrorIs(t, notFound(fmt.Errorf("scan: %w", pgx.ErrNoRows)), ErrNotFound)

	boom := errors.New("connection reset")
	assert.Equal(t, boom, notFound(boom))
	assert.NoError(t, notFound(nil))
}
