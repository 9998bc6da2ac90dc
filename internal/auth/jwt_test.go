package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/golf-club/internal/model"
)

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)

	tok, err := iss.CreateAccessToken(&model.Member{ID: 42, IsAdmin: true})
	require.NoError(t, err)

	c, err := iss.ParseValidate(tok)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, c.Role)
	id, err := c.MemberID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestIssuer_Rejects(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	tok, err := iss.CreateAccessToken(&model.Member{ID: 7})
	require.NoError(t, err)

	_, err = NewIssuer("other", time.Hour).ParseValidate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.ParseValidate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.ParseValidate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	bad := &Claims{Sub: "abc"}
	_, err = bad.MemberID()
	assert.ErrorIs(t, err, ErrInvalidToken)
}
