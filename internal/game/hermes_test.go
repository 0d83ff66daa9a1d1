package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUseHermesTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, teams, err := f.m.UseHermes(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, ptr[int64](2), st.Hermes.LastUsedByID)
	assert.True(t, teams[1].HermesUsed)

	events := f.drain()
	require.Len(t, events, 1)
	assert.Equal(t, EventHermesUsed, events[0].Type)

	_, _, err = f.m.UseHermes(ctx, 2)
	require.ErrorIs(t, err, ErrHermesUsed)
	assert.Empty(t, f.drain())

	st, err = f.store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ptr[int64](2), st.Hermes.LastUsedByID)
	team, err := f.store.Team(ctx, 2)
	require.NoError(t, err)
	assert.True(t, team.HermesUsed)
}

func TestUseHermesUnknownTeam(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.m.UseHermes(context.Background(), 42)
	require.ErrorIs(t, err, ErrUnknownTeam)
}

func TestClearHermesCueKeepsFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.m.UseHermes(ctx, 1)
	require.NoError(t, err)

	st, err := f.m.ClearHermesCue(ctx)
	require.NoError(t, err)
	assert.Nil(t, st.Hermes.LastUsedByID)

	team, err := f.store.Team(ctx, 1)
	require.NoError(t, err)
	assert.True(t, team.HermesUsed)

	_, _, err = f.m.UseHermes(ctx, 1)
	require.ErrorIs(t, err, ErrHermesUsed)
}
