package network

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable parameter of the simulation engine. Routing and
// sleep thresholds are policy, not law: callers may override any of them before
// constructing a Network.
type Config struct {
	// GridSize is the side length of the square arena; positions live in [0, GridSize].
	GridSize float64 `yaml:"grid_size"`

	// MaxCells caps the total population. Create becomes a silent no-op past it.
	MaxCells int `yaml:"max_cells"`

	// MaxAge is the last tick of life; aging past it kills the cell.
	MaxAge int `yaml:"max_age"`

	// HistoryCap bounds each cell's history; oldest entries are evicted first.
	HistoryCap int `yaml:"history_cap"`

	// TrailCap bounds the position trail kept for rendering.
	TrailCap int `yaml:"trail_cap"`

	// MessageLogCap bounds the transient network-wide message log.
	MessageLogCap int `yaml:"message_log_cap"`

	// MessageTTL is how long a delivered message stays visible before purging.
	MessageTTL time.Duration `yaml:"message_ttl"`

	// MinSpacing is the minimum distance between freshly placed cells.
	MinSpacing float64 `yaml:"min_spacing"`

	// NeighborRadius is the connectivity radius for adjacency and help targeting.
	NeighborRadius float64 `yaml:"neighbor_radius"`

	// MoveStep clamps per-tick displacement magnitude.
	MoveStep float64 `yaml:"move_step"`

	// RepulsionRadius is the range of the crowding force.
	RepulsionRadius float64 `yaml:"repulsion_radius"`

	// AttractPull is the fraction of the liked-peer centroid offset applied per tick.
	AttractPull float64 `yaml:"attract_pull"`

	// DriftScale is the magnitude of the random drift component.
	DriftScale float64 `yaml:"drift_scale"`

	// WakeProb is the per-tick chance a sleeping cell spontaneously wakes.
	WakeProb float64 `yaml:"wake_prob"`

	// SleepProb is the per-tick chance an idle cell falls asleep.
	SleepProb float64 `yaml:"sleep_prob"`

	// IdleSleepAfter is how many inactive ticks make a cell sleep-eligible.
	IdleSleepAfter int `yaml:"idle_sleep_after"`

	// SelfCheckProb is the per-tick chance of a routine self-check entry.
	SelfCheckProb float64 `yaml:"self_check_prob"`

	// CloneProb is the chance of a spontaneous clone on an eligible tick.
	CloneProb float64 `yaml:"clone_prob"`

	// CloneMinAge is the minimum age before a cell may clone.
	CloneMinAge int `yaml:"clone_min_age"`

	// CloneAgeInterval gates cloning to ticks where age is a multiple of it.
	CloneAgeInterval int `yaml:"clone_age_interval"`

	// RouteMinContent is the minimum content length (in runes) that makes
	// multi-hop routing worth attempting; shorter messages go direct.
	RouteMinContent int `yaml:"route_min_content"`

	// ReplyDelayMin and ReplyDelayMax bound the randomized delay, in ticks,
	// of auto-replies and simulated work follow-ups.
	ReplyDelayMin int `yaml:"reply_delay_min"`
	ReplyDelayMax int `yaml:"reply_delay_max"`

	// TickInterval is the driver's cadence.
	TickInterval time.Duration `yaml:"tick_interval"`

	// Seed seeds the engine's random source; zero means time-based.
	Seed int64 `yaml:"seed"`
}

// DefaultConfig returns the default simulation parameters.
func DefaultConfig() *Config {
	return &Config{
		GridSize:         100,
		MaxCells:         50,
		MaxAge:           99,
		HistoryCap:       100,
		TrailCap:         20,
		MessageLogCap:    50,
		MessageTTL:       3 * time.Second,
		MinSpacing:       5,
		NeighborRadius:   25,
		MoveStep:         3,
		RepulsionRadius:  8,
		AttractPull:      0.3,
		DriftScale:       0.5,
		WakeProb:         0.05,
		SleepProb:        0.3,
		IdleSleepAfter:   30,
		SelfCheckProb:    0.02,
		CloneProb:        0.1,
		CloneMinAge:      10,
		CloneAgeInterval: 5,
		RouteMinContent:  20,
		ReplyDelayMin:    1,
		ReplyDelayMax:    3,
		TickInterval:     time.Second,
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewNetworkErrorWithCause(ErrInvalidInput, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, NewNetworkErrorWithCause(ErrInvalidInput, "failed to parse config file", err)
	}

	cfg.normalize()
	return cfg, nil
}

// normalize clamps nonsensical values back to defaults so a partial or broken
// config file cannot produce an unrunnable engine.
func (c *Config) normalize() {
	def := DefaultConfig()

	if c.GridSize <= 0 {
		c.GridSize = def.GridSize
	}
	if c.MaxCells <= 0 {
		c.MaxCells = def.MaxCells
	}
	if c.MaxAge <= 0 {
		c.MaxAge = def.MaxAge
	}
	if c.HistoryCap <= 0 {
		c.HistoryCap = def.HistoryCap
	}
	if c.TrailCap <= 0 {
		c.TrailCap = def.TrailCap
	}
	if c.MessageLogCap <= 0 {
		c.MessageLogCap = def.MessageLogCap
	}
	if c.MessageTTL <= 0 {
		c.MessageTTL = def.MessageTTL
	}
	if c.MinSpacing < 0 {
		c.MinSpacing = def.MinSpacing
	}
	if c.NeighborRadius <= 0 {
		c.NeighborRadius = def.NeighborRadius
	}
	if c.MoveStep <= 0 {
		c.MoveStep = def.MoveStep
	}
	if c.RepulsionRadius < 0 {
		c.RepulsionRadius = def.RepulsionRadius
	}
	if c.ReplyDelayMin < 1 {
		c.ReplyDelayMin = def.ReplyDelayMin
	}
	if c.ReplyDelayMax < c.ReplyDelayMin {
		c.ReplyDelayMax = c.ReplyDelayMin
	}
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
