package world

// Clamp limits for character resources.
const (
	MaxEnergy   = 100
	MaxMana     = 200
	MinAffinity = -100
	MaxAffinity = 100
)

// Character is one inhabitant of the village. Field names follow the
// snapshot document so saves from older sessions keep loading.
type Character struct {
	Name        string         `json:"-" yaml:"-"`
	Role        string         `json:"role" yaml:"role"`
	Age         int            `json:"age,omitempty" yaml:"age,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Pos         [2]int         `json:"pos" yaml:"pos"`
	Home        *[2]int        `json:"home,omitempty" yaml:"home,omitempty"`
	Energy      int            `json:"energy" yaml:"energy"`
	Mana        *int           `json:"mana,omitempty" yaml:"mana,omitempty"`
	Stats       map[string]int `json:"stats,omitempty" yaml:"stats,omitempty"`
	XP          int            `json:"xp" yaml:"xp"`
	Level       int            `json:"level" yaml:"level"`
	Inventory   []string       `json:"inventory,omitempty" yaml:"inventory,omitempty"`
	Gold        int            `json:"gold" yaml:"gold"`
	Rel         map[string]int `json:"rel,omitempty" yaml:"rel,omitempty"`

	// BusyUntil is the absolute simulation minute (never wrapped to the
	// day face) before which the character is not eligible to act.
	BusyUntil int `json:"busy_until,omitempty" yaml:"busy_until,omitempty"`
}

// SetEnergy clamps and stores a new energy value.
func (c *Character) SetEnergy(v int) {
	c.Energy = clamp(v, 0, MaxEnergy)
}

// AddEnergy adjusts energy by delta, clamped to [0,100].
func (c *Character) AddEnergy(delta int) {
	c.SetEnergy(c.Energy + delta)
}

// AddMana adjusts mana by delta, clamped to [0,200]. Characters without
// a mana pool are left untouched.
func (c *Character) AddMana(delta int) {
	if c.Mana == nil {
		return
	}
	m := clamp(*c.Mana, 0, MaxMana)
	m = clamp(m+delta, 0, MaxMana)
	c.Mana = &m
}

// StatBonus returns the character's bonus for a skill, zero if unset.
func (c *Character) StatBonus(skill string) int {
	if c.Stats == nil {
		return 0
	}
	return c.Stats[skill]
}

// AffinityWith returns the stored affinity toward another character,
// zero if never referenced before.
func (c *Character) AffinityWith(name string) int {
	if c.Rel == nil {
		return 0
	}
	return c.Rel[name]
}

// SetAffinity clamps and stores an affinity score, creating the ledger
// lazily on first use.
func (c *Character) SetAffinity(name string, score int) int {
	if c.Rel == nil {
		c.Rel = make(map[string]int)
	}
	score = clamp(score, MinAffinity, MaxAffinity)
	c.Rel[name] = score
	return score
}

// Clone deep-copies the character so fan-out workers can read a frozen
// frame while the apply phase mutates the original.
func (c *Character) Clone() *Character {
	cc := *c
	if c.Mana != nil {
		m := *c.Mana
		cc.Mana = &m
	}
	if c.Home != nil {
		h := *c.Home
		cc.Home = &h
	}
	if c.Stats != nil {
		cc.Stats = make(map[string]int, len(c.Stats))
		for k, v := range c.Stats {
			cc.Stats[k] = v
		}
	}
	if c.Rel != nil {
		cc.Rel = make(map[string]int, len(c.Rel))
		for k, v := range c.Rel {
			cc.Rel[k] = v
		}
	}
	cc.Inventory = append([]string(nil), c.Inventory...)
	return &cc
}

// State is the full mutable world: the roster, the clock, the log ring
// and the current weather. The turn engine owns all mutation; other
// components only read it to build text.
type State struct {
	Characters map[string]*Character
	Clock      Clock
	Logs       []string
	Weather    Weather
}

// MaxLogs bounds the in-memory (and persisted) log history.
const MaxLogs = 500

// NewState builds a fresh State from a seed roster, starting the clock
// at the seed's start time.
func NewState(seed *Seed) *State {
	chars := make(map[string]*Character, len(seed.Characters))
	for name, c := range seed.Characters {
		cc := c.Clone()
		cc.Name = name
		if cc.Level == 0 {
			cc.Level = 1
		}
		chars[name] = cc
	}
	return &State{
		Characters: chars,
		Clock:      Clock{Minutes: seed.StartTime},
		Weather:    DefaultWeather,
	}
}

// PrependLogs pushes new log lines in front of the history, keeping the
// most recent MaxLogs entries.
func (s *State) PrependLogs(lines []string) {
	s.Logs = append(append([]string{}, lines...), s.Logs...)
	if len(s.Logs) > MaxLogs {
		s.Logs = s.Logs[:MaxLogs]
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
