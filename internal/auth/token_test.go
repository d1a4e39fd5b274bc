package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJwtGenerateAndValidate(t *testing.T) {
	token, err := JwtGenerate("seller-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := JwtValidate(token)
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(*JwtCustomClaim)
	require.True(t, ok)
	assert.Equal(t, "seller-1", claims.SellerID)
}

func TestJwtValidateRejectsGarbage(t *testing.T) {
	_, err := JwtValidate("not-a-token")
	assert.Error(t, err)
}

func TestSellerIDFromContext(t *testing.T) {
	ctx := WithSeller(context.Background(), "seller-1")

	sellerID, err := SellerID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "seller-1", sellerID)
}

func TestSellerIDWithoutSession(t *testing.T) {
	_, err := SellerID(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = SellerID(WithSeller(context.Background(), ""))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
