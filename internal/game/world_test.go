package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldSpawnAssignsAscendingIDs(t *testing.T) {
	w := NewWorld()
	a := w.Spawn(Entity{Kind: KindIron})
	b := w.Spawn(Entity{Kind: KindBrick})
	assert.Less(t, a, b)

	tank := w.Spawn(Entity{Kind: KindTank, Tank: &TankState{}})
	e, ok := w.Get(tank)
	require.True(t, ok)
	assert.Equal(t, tank, e.Tank.ID, "mover carries its entity ID")
}

func TestWorldEachOrderSurvivesCompaction(t *testing.T) {
	w := NewWorld()
	var ids []EntityID
	for range 10 {
		ids = append(ids, w.Spawn(Entity{Kind: KindBrick}))
	}
	for _, id := range ids[:7] {
		assert.True(t, w.Despawn(id))
	}
	assert.False(t, w.Despawn(ids[0]), "second despawn is a no-op")
	late := w.Spawn(Entity{Kind: KindIron})

	var seen []EntityID
	w.Each(func(e *Entity) bool {
		seen = append(seen, e.ID)
		return true
	})
	assert.Equal(t, []EntityID{ids[7], ids[8], ids[9], late}, seen)
	assert.Equal(t, 4, w.Len())
}

func TestWorldObstaclesSkipsCosmeticAndExcluded(t *testing.T) {
	w := NewWorld()
	brick := w.Spawn(Entity{Kind: KindBrick, Brick: BrickQuarter})
	w.Spawn(Entity{Kind: KindExplosion})
	w.Spawn(Entity{Kind: KindStar})
	tank := w.Spawn(Entity{Kind: KindTank, Tank: &TankState{}})

	obs := w.Obstacles(tank)
	require.Len(t, obs, 1)
	assert.Equal(t, brick, obs[0].ID)
	assert.Equal(t, BrickQuarter, obs[0].Brick)
}

func TestCommandsDeduplicateDespawns(t *testing.T) {
	w := NewWorld()
	id := w.Spawn(Entity{Kind: KindBrick})

	var cmds Commands
	assert.True(t, cmds.Despawn(id))
	assert.False(t, cmds.Despawn(id))
	assert.True(t, cmds.Despawning(id))
	cmds.Spawn(Entity{Kind: KindIron})
	assert.Equal(t, 2, cmds.Len())

	// Nothing changes until Apply.
	_, ok := w.Get(id)
	assert.True(t, ok)

	spawned := cmds.Apply(w)
	require.Len(t, spawned, 1)
	_, ok = w.Get(id)
	assert.False(t, ok)
	e, ok := w.Get(spawned[0])
	require.True(t, ok)
	assert.Equal(t, KindIron, e.Kind)

	assert.Zero(t, cmds.Len())
	assert.False(t, cmds.Despawning(id))
}

func TestWorldChecksum(t *testing.T) {
	build := func() *World {
		w := NewWorld()
		require.NoError(t, BuildBattlefield(w, DefaultConfig(), DefaultLevels()[0]))
		return w
	}
	a, b := build(), build()
	assert.Equal(t, a.Checksum(), b.Checksum())

	var moved *Entity
	b.EachKind(KindBrick, func(e *Entity) bool {
		moved = e
		return false
	})
	moved.Box.Center.X += 0.5
	assert.NotEqual(t, a.Checksum(), b.Checksum())
}
