package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomToken_Length(t *testing.T) {
	token, err := GenerateRandomToken(32)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestGenerateRandomToken_Unique(t *testing.T) {
	token1, err := GenerateRandomToken(64)
	require.NoError(t, err)

	token2, err := GenerateRandomToken(64)
	require.NoError(t, err)

	assert.NotEqual(t, token1, token2)
}

func TestGenerateRandomToken_URLSafe(t *testing.T) {
	token, err := GenerateRandomToken(64)
	require.NoError(t, err)

	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
}
