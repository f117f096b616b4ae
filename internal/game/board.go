package game

import "fmt"

// BlockCenter returns the world position of block (col, row), row 0 at the top.
func (c Config) BlockCenter(col, row int) Vec3 {
	b := c.BlockSize()
	return Vec3{
		X: float64(col)*b + b/2,
		Y: float64(FieldBlocks-1-row)*b + b/2,
	}
}

// Spawn points in block coordinates.
var (
	playerSpawnBlocks = map[Owner][2]int{OwnerP1: {4, 12}, OwnerP2: {8, 12}}
	aiSpawnBlocks     = [3][2]int{{0, 0}, {6, 0}, {12, 0}}
	baseBlock         = [2]int{6, 12}
)

// PlayerSpawn returns where a player's tank appears.
func (c Config) PlayerSpawn(o Owner) Vec3 {
	rc := playerSpawnBlocks[o]
	return c.BlockCenter(rc[0], rc[1])
}

// AISpawn returns the i-th enemy spawn point, cycling through the three.
func (c Config) AISpawn(i int) Vec3 {
	rc := aiSpawnBlocks[i%len(aiSpawnBlocks)]
	return c.BlockCenter(rc[0], rc[1])
}

// BaseWallPositions returns the centers of the eight quarter cells that
// fence the base on its left, top and right.
func (c Config) BaseWallPositions() [8]Vec3 {
	base := c.BlockCenter(baseBlock[0], baseBlock[1])
	m := c.MinCell
	at := func(dx, dy float64) Vec3 { return base.Add(Vec2{X: dx * m, Y: dy * m}) }
	return [8]Vec3{
		at(-3, -1), at(-3, 1), at(-3, 3),
		at(-1, 3), at(1, 3),
		at(3, 3), at(3, 1), at(3, -1),
	}
}

// BaseWallArea is the region covered by the base wall.
func (c Config) BaseWallArea() Box {
	base := c.BlockCenter(baseBlock[0], baseBlock[1])
	m := c.MinCell
	return Box{
		Center: base.Add(Vec2{Y: m}),
		Size:   Vec2{X: 8 * m, Y: 6 * m},
	}
}

func quarterEntity(kind Kind, center Vec3, c Config) Entity {
	q := c.QuarterCell()
	e := Entity{Kind: kind, Box: Box{Center: center, Size: Vec2{X: q, Y: q}}}
	if kind == KindBrick {
		e.Brick = BrickQuarter
	}
	return e
}

// BrickEntity builds a brick fragment at center.
func BrickEntity(f BrickFragment, center Vec3, c Config) Entity {
	return Entity{Kind: KindBrick, Brick: f, Box: Box{Center: center, Size: f.Size(c.MinCell)}}
}

// BuildBattlefield spawns the boundaries, the level's terrain, the base and
// its brick wall into w.
func BuildBattlefield(w *World, c Config, l Level) error {
	if err := l.Validate(); err != nil {
		return err
	}

	f, b := c.FieldSize(), c.BlockSize()
	w.Spawn(Entity{Kind: KindBoundary, Box: NewBox(-b/2, f/2, b, f+2*b)})
	w.Spawn(Entity{Kind: KindBoundary, Box: NewBox(f+b/2, f/2, b, f+2*b)})
	w.Spawn(Entity{Kind: KindBoundary, Box: NewBox(f/2, f+b/2, f, b)})
	w.Spawn(Entity{Kind: KindBoundary, Box: NewBox(f/2, -b/2, f, b)})

	for row := 0; row < FieldBlocks; row++ {
		for col := 0; col < FieldBlocks; col++ {
			var kind Kind
			switch t := l.Tile(col, row); t {
			case TileEmpty:
				continue
			case TileBrick:
				kind = KindBrick
			case TileIron:
				kind = KindIron
			case TileRiver:
				kind = KindRiver
			case TileGrass:
				kind = KindGrass
			case TileSnow:
				kind = KindSnow
			default:
				return fmt.Errorf("block (%d,%d): %w %q", col, row, ErrUnknownTile, rune(t))
			}
			ground := 0.0
			if kind == KindGrass {
				ground = 1 // Grass draws over tanks
			}
			center := c.BlockCenter(col, row)
			center.Z = ground
			for _, q := range SplitWhole(center, c.MinCell) {
				w.Spawn(quarterEntity(kind, q, c))
			}
		}
	}

	base := c.BlockCenter(baseBlock[0], baseBlock[1])
	w.Spawn(Entity{Kind: KindBase, Box: Box{Center: base, Size: Vec2{X: b, Y: b}}})
	for _, p := range c.BaseWallPositions() {
		e := quarterEntity(KindBrick, p, c)
		e.BaseWall = true
		w.Spawn(e)
	}
	return nil
}
