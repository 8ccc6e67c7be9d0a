package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rebecca-roussel/ecoride/internal/repositories"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(gorm.ErrRecordNotFound), repositories.ErrNotFound)
	assert.ErrorIs(t, mapErr(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)), repositories.ErrDuplicate)

	other := errors.New("connection reset")
	assert.Equal(t, other, mapErr(other))
}
