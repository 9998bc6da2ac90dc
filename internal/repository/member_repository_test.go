package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/golf-club/internal/model"
)

func TestMemberRepository_PhoneAndActiveIDs(t *testing.T) {
	ctx := context.Background()
	gdb := newTestDB(t)
	repo := NewGormMemberRepository(gdb)

	a := &model.Member{Name: "Kim", Phone: "010-1234-5678"}
	b := &model.Member{Name: "Lee"}
	c := &model.Member{Name: "Park"}
	for _, m := range []*model.Member{a, b, c} {
		require.NoError(t, repo.Create(ctx, m))
	}
	assert.Equal(t, "01012345678", a.Phone)
	require.NoError(t, repo.SetStatus(ctx, c.ID, model.MemberStatusInactive))

	found, err := repo.FindByPhone(ctx, "010 1234 5678")
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)

	ids, err := repo.ListActiveIDs(ctx, []int64{a.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, ids)
}
