package game

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Tile is one block of a level layout.
type Tile rune

const (
	TileEmpty Tile = '.'
	TileBrick Tile = '#'
	TileIron  Tile = '@'
	TileRiver Tile = '~'
	TileGrass Tile = '%'
	TileSnow  Tile = '-'
)

// ErrUnknownTile is returned for a level rune that names no terrain.
var ErrUnknownTile = errors.New("unknown tile")

// Level is a battlefield layout, one rune per block, row 0 at the top.
type Level struct {
	Name string   `yaml:"name"`
	Rows []string `yaml:"rows"`
}

// Block coordinates that must stay clear: tank spawn points, the base and
// the blocks its wall occupies.
var reservedBlocks = [][2]int{
	// AI spawns
	{0, 0}, {6, 0}, {12, 0},
	// Player spawns
	{4, 12}, {8, 12},
	// Base and its wall
	{6, 12},
	{5, 11}, {6, 11}, {7, 11},
	{5, 12}, {7, 12},
}

// Validate checks dimensions, runes and the reserved blocks.
func (l Level) Validate() error {
	if len(l.Rows) != FieldBlocks {
		return fmt.Errorf("level %q: %d rows, want %d", l.Name, len(l.Rows), FieldBlocks)
	}
	for row, line := range l.Rows {
		if n := utf8.RuneCountInString(line); n != FieldBlocks {
			return fmt.Errorf("level %q row %d: %d columns, want %d", l.Name, row, n, FieldBlocks)
		}
		col := 0
		for _, r := range line {
			switch Tile(r) {
			case TileEmpty, TileBrick, TileIron, TileRiver, TileGrass, TileSnow:
			default:
				return fmt.Errorf("level %q at (%d,%d): %w %q", l.Name, col, row, ErrUnknownTile, r)
			}
			col++
		}
	}
	for _, rc := range reservedBlocks {
		if t := l.Tile(rc[0], rc[1]); t != TileEmpty {
			return fmt.Errorf("level %q: block (%d,%d) is reserved, found %q", l.Name, rc[0], rc[1], rune(t))
		}
	}
	return nil
}

// Tile returns the tile at block (col, row). Out of range reads as empty.
func (l Level) Tile(col, row int) Tile {
	if row < 0 || row >= len(l.Rows) || col < 0 {
		return TileEmpty
	}
	i := 0
	for _, r := range l.Rows[row] {
		if i == col {
			return Tile(r)
		}
		i++
	}
	return TileEmpty
}

//go:embed levels.yaml
var builtinLevels []byte

var loadBuiltinLevels = sync.OnceValue(func() []Level {
	var levels []Level
	if err := yaml.Unmarshal(builtinLevels, &levels); err != nil {
		panic(fmt.Sprintf("built-in levels: %v", err))
	}
	for _, l := range levels {
		if err := l.Validate(); err != nil {
			panic(fmt.Sprintf("built-in levels: %v", err))
		}
	}
	return levels
})

// DefaultLevels returns the built-in stages.
func DefaultLevels() []Level {
	return loadBuiltinLevels()
}
