package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTTL(t *testing.T) {
	assert.NoError(t, validateTTL(0))
	assert.NoError(t, validateTTL(900))
	assert.NoError(t, validateTTL(86400))
	assert.Error(t, validateTTL(-1))
	assert.Error(t, validateTTL(86401))
}

func TestValidateLeaseID(t *testing.T) {
	assert.NoError(t, ValidateLeaseID("a1b2c3d4-e5f"))
	assert.Error(t, ValidateLeaseID(""))
	assert.Error(t, ValidateLeaseID("short"))
	assert.Error(t, ValidateLeaseID("../etc/passwd"))
	assert.Error(t, ValidateLeaseID("ABCDEF123456"))
}
