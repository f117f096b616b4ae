package game

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyRows() []string {
	rows := make([]string, FieldBlocks)
	for i := range rows {
		rows[i] = strings.Repeat(".", FieldBlocks)
	}
	return rows
}

// levelWith returns an empty level with the given tiles set.
func levelWith(tiles map[[2]int]Tile) Level {
	rows := emptyRows()
	for rc, tile := range tiles {
		line := []rune(rows[rc[1]])
		line[rc[0]] = rune(tile)
		rows[rc[1]] = string(line)
	}
	return Level{Name: "test", Rows: rows}
}

func TestDefaultLevelsAreValid(t *testing.T) {
	levels := DefaultLevels()
	require.NotEmpty(t, levels)
	for _, l := range levels {
		assert.NoError(t, l.Validate(), l.Name)
	}
}

func TestLevelValidate(t *testing.T) {
	l := levelWith(map[[2]int]Tile{{3, 3}: 'x'})
	err := l.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTile))

	l = levelWith(map[[2]int]Tile{{6, 0}: TileBrick})
	assert.ErrorContains(t, l.Validate(), "reserved")

	l = Level{Name: "short", Rows: emptyRows()[:12]}
	assert.Error(t, l.Validate())

	l = levelWith(nil)
	l.Rows[4] += "."
	assert.Error(t, l.Validate())
}

func TestBuildBattlefield(t *testing.T) {
	c := DefaultConfig()
	l := DefaultLevels()[0]
	w := NewWorld()
	require.NoError(t, BuildBattlefield(w, c, l))

	tiles := 0
	for _, row := range l.Rows {
		tiles += FieldBlocks - strings.Count(row, ".")
	}
	assert.Equal(t, 4+4*tiles+1+8, w.Len())
	assert.Equal(t, 4, w.Count(func(e *Entity) bool { return e.Kind == KindBoundary }))
	assert.Equal(t, 8, w.Count(func(e *Entity) bool { return e.BaseWall }))

	field := NewBox(c.FieldSize()/2, c.FieldSize()/2, c.FieldSize(), c.FieldSize())
	w.Each(func(e *Entity) bool {
		if e.Kind != KindBoundary {
			assert.True(t, field.Contains(e.Box), "%s at %+v", e.Kind, e.Box.Center)
		} else {
			assert.False(t, Intersects(field, e.Box))
		}
		return true
	})

	var base *Entity
	w.EachKind(KindBase, func(e *Entity) bool {
		base = e
		return false
	})
	require.NotNil(t, base)
	assert.Equal(t, Vec3{X: 208, Y: 16}, base.Box.Center)
	area := c.BaseWallArea()
	w.Each(func(e *Entity) bool {
		if e.BaseWall {
			assert.True(t, area.Contains(e.Box))
			assert.False(t, Intersects(e.Box, base.Box))
		}
		return true
	})
}

func TestBlockCenter(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, Vec3{X: 16, Y: 400}, c.BlockCenter(0, 0))
	assert.Equal(t, Vec3{X: 144, Y: 16}, c.PlayerSpawn(OwnerP1))
	assert.Equal(t, Vec3{X: 272, Y: 16}, c.PlayerSpawn(OwnerP2))
	assert.Equal(t, c.AISpawn(0), c.AISpawn(3))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tanks.yaml")
	yaml := `
tank_move_interval: 20ms
ai_reserve: 5
seed: 42
level: 0
levels:
  - name: arena
    rows:
` + strings.Repeat("      - \".............\"\n", FieldBlocks)
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, c.TankMoveInterval)
	assert.Equal(t, 5, c.AIReserve)
	assert.Equal(t, int64(42), c.Seed)
	assert.Equal(t, DefaultConfig().BulletSpeed, c.BulletSpeed, "unset keys keep defaults")
	require.Len(t, c.LevelSet(), 1)
	assert.Equal(t, "arena", c.LevelSet()[0].Name)
}

func TestConfigValidate(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())

	c.MinCell = 0
	c.MaxPlayers = 3
	c.Level = 99
	err := c.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "min_cell")
	assert.ErrorContains(t, err, "max_players")
	assert.ErrorContains(t, err, "level 99")
}

func TestConfigMoveIntervalsCoverATick(t *testing.T) {
	c := DefaultConfig()
	require.GreaterOrEqual(t, c.TankMoveInterval, c.TickDuration())
	require.GreaterOrEqual(t, c.BulletMoveInterval, c.TickDuration())

	c.TickRate = 30
	err := c.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "tank_move_interval")

	c.TankMoveInterval = c.TickDuration()
	c.BulletMoveInterval = c.TickDuration()
	assert.NoError(t, c.Validate())
}
