package utils

import (
	"testing"
	"time"

	"github.com/rebecca-roussel/ecoride/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: 42, Pseudo: "lea", IsDriver: true, IsPassenger: true, Employee: &models.Employee{UserID: 42}}

	token, err := GenerateToken(user, "s3cret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "lea", claims.Pseudo)
	assert.True(t, claims.HasRole(models.RoleDriver))
	assert.True(t, claims.HasRole(models.RoleEmployee))
	assert.False(t, claims.HasRole(models.RoleAdmin))
}

func TestValidateTokenRejects(t *testing.T) {
	user := &models.User{ID: 1, Pseudo: "max", IsPassenger: true}

	token, err := GenerateToken(user, "s3cret", time.Hour)
	require.NoError(t, err)
	_, err = ValidateToken(token, "other")
	assert.Error(t, err)

	expired, err := GenerateToken(user, "s3cret", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(expired, "s3cret")
	assert.Error(t, err)

	_, err = GenerateToken(user, "", time.Hour)
	assert.Error(t, err)
}
