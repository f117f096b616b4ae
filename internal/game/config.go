package game

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FieldBlocks is the battlefield's width and height in blocks.
const FieldBlocks = 13

// Config holds the tunable parameters of a game session.
// Lengths are world units; one sprite pixel is two units.
type Config struct {
	MinCell  float64 `json:"min_cell" yaml:"min_cell"`   // Side of the smallest brick fragment
	TickRate int     `json:"tick_rate" yaml:"tick_rate"` // Ticks per second

	TankSpeed          float64       `json:"tank_speed" yaml:"tank_speed"`
	TankMoveInterval   time.Duration `json:"tank_move_interval" yaml:"tank_move_interval"`
	BulletSpeed        float64       `json:"bullet_speed" yaml:"bullet_speed"`
	BulletMoveInterval time.Duration `json:"bullet_move_interval" yaml:"bullet_move_interval"`
	AnimationInterval  time.Duration `json:"animation_interval" yaml:"animation_interval"`
	InputHold          time.Duration `json:"input_hold" yaml:"input_hold"` // How long a key press keeps a direction held

	MaxPlayers  int `json:"max_players" yaml:"max_players"`
	PlayerLives int `json:"player_lives" yaml:"player_lives"` // Spare lives, not counting the first tank

	AIReserve       int           `json:"ai_reserve" yaml:"ai_reserve"`
	AIMaxOnField    int           `json:"ai_max_on_field" yaml:"ai_max_on_field"`
	AISpawnInterval time.Duration `json:"ai_spawn_interval" yaml:"ai_spawn_interval"`
	AIFireChance    float64       `json:"ai_fire_chance" yaml:"ai_fire_chance"` // Per second

	SpawnDelay          time.Duration `json:"spawn_delay" yaml:"spawn_delay"` // Star animation before a tank appears
	ExplosionDuration   time.Duration `json:"explosion_duration" yaml:"explosion_duration"`
	SpawnShieldDuration time.Duration `json:"spawn_shield_duration" yaml:"spawn_shield_duration"`
	ShieldDuration      time.Duration `json:"shield_duration" yaml:"shield_duration"`
	ClockDuration       time.Duration `json:"clock_duration" yaml:"clock_duration"`
	ShovelDuration      time.Duration `json:"shovel_duration" yaml:"shovel_duration"`

	Seed   int64   `json:"seed" yaml:"seed"`
	Level  int     `json:"level" yaml:"level"` // Index into Levels
	Levels []Level `json:"-" yaml:"levels,omitempty"`
}

// DefaultConfig returns the arcade defaults.
func DefaultConfig() Config {
	return Config{
		MinCell:             8,
		TickRate:            60,
		TankSpeed:           4,
		TankMoveInterval:    time.Second / 60,
		BulletSpeed:         4,
		BulletMoveInterval:  25 * time.Millisecond,
		AnimationInterval:   100 * time.Millisecond,
		InputHold:           150 * time.Millisecond,
		MaxPlayers:          2,
		PlayerLives:         2,
		AIReserve:           20,
		AIMaxOnField:        4,
		AISpawnInterval:     3 * time.Second,
		AIFireChance:        1.5,
		SpawnDelay:          time.Second,
		ExplosionDuration:   300 * time.Millisecond,
		SpawnShieldDuration: 3 * time.Second,
		ShieldDuration:      10 * time.Second,
		ClockDuration:       10 * time.Second,
		ShovelDuration:      20 * time.Second,
		Seed:                1,
	}
}

// HalfMinCell is the unit of brick replacement offsets.
func (c Config) HalfMinCell() float64 { return c.MinCell / 2 }

// QuarterCell is the side of a quarter brick and of every terrain tile.
func (c Config) QuarterCell() float64 { return 2 * c.MinCell }

// BlockSize is the side of a whole brick, a tank, the base and a power-up.
func (c Config) BlockSize() float64 { return 4 * c.MinCell }

// FieldSize is the battlefield's side length.
func (c Config) FieldSize() float64 { return FieldBlocks * c.BlockSize() }

// TickDuration is the wall time of one tick.
func (c Config) TickDuration() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Validate rejects configurations the simulation cannot run.
func (c Config) Validate() error {
	var errs []error
	if c.MinCell <= 0 {
		errs = append(errs, fmt.Errorf("min_cell must be positive, got %v", c.MinCell))
	}
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate must be positive, got %d", c.TickRate))
	}
	if c.TankSpeed <= 0 || c.BulletSpeed <= 0 {
		errs = append(errs, fmt.Errorf("speeds must be positive"))
	}
	// A move timer shorter than a tick fires on every tick, which would tie
	// speed to the tick rate.
	if c.TickRate > 0 {
		tick := c.TickDuration()
		if c.TankMoveInterval < tick {
			errs = append(errs, fmt.Errorf("tank_move_interval %v is shorter than one tick (%v)", c.TankMoveInterval, tick))
		}
		if c.BulletMoveInterval < tick {
			errs = append(errs, fmt.Errorf("bullet_move_interval %v is shorter than one tick (%v)", c.BulletMoveInterval, tick))
		}
	}
	if c.MaxPlayers < 1 || c.MaxPlayers > 2 {
		errs = append(errs, fmt.Errorf("max_players must be 1 or 2, got %d", c.MaxPlayers))
	}
	if c.AIMaxOnField < 0 || c.AIReserve < 0 {
		errs = append(errs, fmt.Errorf("ai counts must not be negative"))
	}
	levels := c.LevelSet()
	if c.Level < 0 || c.Level >= len(levels) {
		errs = append(errs, fmt.Errorf("level %d out of range (%d levels)", c.Level, len(levels)))
	}
	return errors.Join(errs...)
}

// LevelSet returns the configured levels, falling back to the built-in set.
func (c Config) LevelSet() []Level {
	if len(c.Levels) > 0 {
		return c.Levels
	}
	return DefaultLevels()
}

// LoadConfig overlays the YAML file at path onto DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
