// Package engine runs the simulation turn: it picks who acts, fans
// batches out to the decision oracle, validates what comes back and
// applies the results to the world in a single sequential pass.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tatianab/village-sim/internal/economy"
	"github.com/tatianab/village-sim/internal/events"
	"github.com/tatianab/village-sim/internal/oracle"
	"github.com/tatianab/village-sim/internal/relations"
	"github.com/tatianab/village-sim/internal/rpg"
	"github.com/tatianab/village-sim/internal/world"
)

// EventLevelUp is published when a skill check award crosses a level
// threshold. Payload: map[string]any{"name": string, "level": int}.
const EventLevelUp = "LEVEL_UP"

// weatherInterval: the sky only gets a chance to change on face-time
// minutes that are a multiple of this.
const weatherInterval = 10

// Options tune the scheduler and the oracle fan-out.
type Options struct {
	BatchSize     int           // characters per bulk oracle call
	MaxWorkers    int           // concurrent oracle calls
	TickMinutes   int           // fixed-increment step size
	OracleTimeout time.Duration // per-call budget before default decisions
	Rand          *rand.Rand    // injectable for tests; seeded from time when nil
}

func (o *Options) fillDefaults() {
	if o.BatchSize <= 0 {
		o.BatchSize = 15
	}
	if o.MaxWorkers <= 0 {
		o.MaxWorkers = 5
	}
	if o.TickMinutes <= 0 {
		o.TickMinutes = 5
	}
	if o.OracleTimeout <= 0 {
		o.OracleTimeout = 60 * time.Second
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
}

// Engine owns all world mutation. Oracle calls read an immutable
// frame-start snapshot; writes happen only on the caller's goroutine.
type Engine struct {
	oracle oracle.Oracle
	seed   *world.Seed
	state  *world.State
	store  *world.Store
	bus    *events.Bus
	opts   Options
	rng    *rand.Rand
	log    zerolog.Logger
}

// New wires a turn engine around existing world state.
func New(orc oracle.Oracle, seed *world.Seed, state *world.State, store *world.Store, bus *events.Bus, opts Options, log zerolog.Logger) *Engine {
	opts.fillDefaults()
	return &Engine{
		oracle: orc,
		seed:   seed,
		state:  state,
		store:  store,
		bus:    bus,
		opts:   opts,
		rng:    opts.Rand,
		log:    log,
	}
}

// State exposes the world for read-only consumers (rendering).
func (e *Engine) State() *world.State { return e.state }

// Seed exposes the static world definition.
func (e *Engine) Seed() *world.Seed { return e.seed }

// Tick advances the clock by a fixed increment and returns the names of
// every character free to act at the new time.
func (e *Engine) Tick(minutes int) []string {
	e.state.Clock.Advance(minutes)
	e.maybeUpdateWeather()
	return e.readyNames()
}

// JumpToNextEvent advances straight to the completion of the next
// in-progress action, skipping idle minutes, and returns who is ready.
func (e *Engine) JumpToNextEvent() []string {
	_, ready := e.state.Clock.AdvanceToNextReady(e.state.Characters)
	e.maybeUpdateWeather()
	return ready
}

func (e *Engine) maybeUpdateWeather() {
	if e.state.Clock.FaceTime()%weatherInterval == 0 {
		e.state.Weather = e.state.Weather.Update(e.rng, e.bus)
	}
}

// readyNames is never nil even when empty: RunTurn reads nil as "the
// caller wants everyone", which is wrong for an all-busy tick.
func (e *Engine) readyNames() []string {
	ready := make([]string, 0, len(e.state.Characters))
	for name, c := range e.state.Characters {
		if c.BusyUntil <= e.state.Clock.Minutes {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)
	return ready
}

// Step runs one full fixed-increment turn: advance time, let the ready
// characters act, persist. Returns the turn's log lines.
func (e *Engine) Step(ctx context.Context, chapter string) []string {
	ready := e.Tick(e.opts.TickMinutes)
	return e.RunTurn(ctx, chapter, ready)
}

// StepAdaptive is Step with event-driven clock jumping instead of a
// fixed tick.
func (e *Engine) StepAdaptive(ctx context.Context, chapter string) []string {
	ready := e.JumpToNextEvent()
	return e.RunTurn(ctx, chapter, ready)
}

// batchResult pairs a character with its validated decision. Results
// from different batches arrive in completion order.
type batchResult struct {
	name     string
	decision Decision
}

// RunTurn executes decisions for the given characters. A nil target
// list means everyone. Errors from the oracle or the disk never escape:
// affected characters idle and the turn completes.
func (e *Engine) RunTurn(ctx context.Context, chapter string, targets []string) []string {
	if targets == nil {
		targets = make([]string, 0, len(e.state.Characters))
		for name := range e.state.Characters {
			targets = append(targets, name)
		}
		sort.Strings(targets)
	}
	if len(targets) == 0 {
		return nil
	}

	for _, c := range e.state.Characters {
		rpg.EnsureStats(c)
	}

	timeStr := e.state.Clock.HourString()

	// Frame-start snapshot: workers read this, never live state, so two
	// batches cannot see each other's in-progress decisions.
	snapshot := make(map[string]*world.Character, len(e.state.Characters))
	for name, c := range e.state.Characters {
		snapshot[name] = c.Clone()
	}
	weather := e.state.Weather

	batches := e.partition(targets)
	results := e.dispatch(ctx, batches, snapshot, timeStr, weather, chapter)

	logs := e.apply(results, timeStr)

	e.state.PrependLogs(logs)
	if err := e.store.Save(e.state); err != nil {
		e.log.Error().Err(err).Msg("world save failed; will retry next turn")
	}
	return logs
}

// partition groups the acting characters into oracle batches: the
// priority cast gets a dedicated call each for narrative fidelity, the
// extras cast shares one call regardless of size, and the remaining
// pool is chunked to amortize cost.
func (e *Engine) partition(targets []string) [][]string {
	inCast := func(cast []string, name string) bool {
		for _, c := range cast {
			if c == name {
				return true
			}
		}
		return false
	}

	var batches [][]string
	var extras []string
	var pool []string
	for _, name := range targets {
		if _, ok := e.state.Characters[name]; !ok {
			continue
		}
		switch {
		case inCast(e.seed.PriorityCast, name):
			batches = append(batches, []string{name})
		case inCast(e.seed.ExtrasCast, name):
			extras = append(extras, name)
		default:
			pool = append(pool, name)
		}
	}
	if len(extras) > 0 {
		batches = append(batches, extras)
	}
	for i := 0; i < len(pool); i += e.opts.BatchSize {
		end := i + e.opts.BatchSize
		if end > len(pool) {
			end = len(pool)
		}
		batches = append(batches, pool[i:end])
	}
	return batches
}

// dispatch fans batches out to the oracle on a bounded worker pool and
// collects per-character decisions in completion order. Every failure
// mode (call error, timeout, garbage output) resolves to default no-op
// decisions for the batch.
func (e *Engine) dispatch(ctx context.Context, batches [][]string, snapshot map[string]*world.Character, timeStr string, weather world.Weather, chapter string) []batchResult {
	jobs := make(chan []string)
	out := make(chan []batchResult)

	var wg sync.WaitGroup
	for w := 0; w < e.opts.MaxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				out <- e.processBatch(ctx, batch, snapshot, timeStr, weather, chapter)
			}
		}()
	}

	go func() {
		for _, b := range batches {
			jobs <- b
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()

	var results []batchResult
	for rs := range out {
		results = append(results, rs...)
	}
	return results
}

func (e *Engine) processBatch(ctx context.Context, batch []string, snapshot map[string]*world.Character, timeStr string, weather world.Weather, chapter string) []batchResult {
	positions := make(map[string][2]int, len(batch))
	for _, name := range batch {
		positions[name] = snapshot[name].Pos
	}

	defaults := func() []batchResult {
		rs := make([]batchResult, 0, len(batch))
		for _, name := range batch {
			rs = append(rs, batchResult{name, DefaultDecision(positions[name])})
		}
		return rs
	}

	prompt, err := e.buildBatchPrompt(batch, snapshot, timeStr, weather, chapter)
	if err != nil {
		e.log.Error().Err(err).Strs("batch", batch).Msg("prompt build failed")
		return defaults()
	}

	callCtx, cancel := context.WithTimeout(ctx, e.opts.OracleTimeout)
	defer cancel()

	raw, err := e.oracle.Invoke(callCtx, prompt)
	if err != nil {
		e.log.Warn().Err(err).Strs("batch", batch).Msg("oracle call failed; characters idle this turn")
		return defaults()
	}

	decisions, err := ParseDecisions(raw, positions)
	if err != nil {
		e.log.Warn().Err(err).Strs("batch", batch).Msg("oracle response unusable; defaulting")
	}

	rs := make([]batchResult, 0, len(batch))
	for _, name := range batch {
		rs = append(rs, batchResult{name, decisions[name]})
	}
	return rs
}

// apply mutates live world state one character at a time, in the order
// results were collected. This is the only place character state
// changes during a turn.
func (e *Engine) apply(results []batchResult, timeStr string) []string {
	var logs []string
	for _, r := range results {
		c, ok := e.state.Characters[r.name]
		if !ok {
			continue
		}
		logs = append(logs, e.applyOne(c, r.decision, timeStr))
	}
	return logs
}

func (e *Engine) applyOne(c *world.Character, d Decision, timeStr string) string {
	c.BusyUntil = e.state.Clock.Minutes + d.Duration

	x, y := e.seed.ClampPos(d.Dest[0], d.Dest[1])
	c.Pos = [2]int{x, y}

	if d.Action == ActionRest {
		c.AddEnergy(10)
		c.AddMana(10)
	} else {
		c.AddEnergy(-2)
	}

	var detail strings.Builder

	skillSuccess := false
	if d.TargetSkill != "" && rpg.IsSkill(d.TargetSkill) {
		check := rpg.CheckSkill(e.rng, c, d.TargetSkill, rpg.DefaultDifficulty)
		skillSuccess = check.Success
		status := "ÉCHEC"
		if check.Success {
			status = "SUCCÈS"
		}
		fmt.Fprintf(&detail, "\n> 🎲 **%s**: %d + %d = %d (Diff %d) -> **%s**",
			d.TargetSkill, check.Roll, check.Bonus, check.Total, check.Difficulty, status)

		if check.Success {
			before := c.Level
			xpLogs := rpg.GainXP(c, 20)
			fmt.Fprintf(&detail, " | %s", strings.Join(xpLogs, " "))
			if c.Level > before && e.bus != nil {
				e.bus.Publish(EventLevelUp, map[string]any{"name": c.Name, "level": c.Level})
			}
		} else {
			detail.WriteString(" | (Fatigue +2)")
			c.AddEnergy(-2)
		}
	}

	if target, ok := e.state.Characters[d.Target]; ok && d.Target != c.Name {
		delta := 0
		switch {
		case d.TargetSkill == "SOCIAL":
			if skillSuccess {
				delta = 5
			} else {
				delta = -2
			}
		case d.Action == ActionTalk || d.Action == ActionFlirt:
			delta = 2
		}
		if delta != 0 {
			newVal, status := relations.UpdateAffinity(c, target.Name, delta)
			fmt.Fprintf(&detail, "\n> ❤️ **Relation %s**: %+d (%s: %d)", target.Name, delta, status, newVal)
		}
	}

	switch d.Action {
	case ActionBuy:
		if seller, ok := e.state.Characters[d.Target]; ok && d.Target != c.Name {
			if item := economy.FirstAffordable(c, seller); item != "" {
				if done, msg := economy.Transaction(c, seller, item); done {
					fmt.Fprintf(&detail, "\n> 💰 %s", msg)
				}
			}
		}
	case ActionCraft:
		if d.Target != "" {
			if _, msg := economy.Craft(c, d.Target); msg != "" {
				fmt.Fprintf(&detail, "\n> 🔨 %s", msg)
			}
		}
	}

	actionMsg := actionEmoji(d.Action)
	if d.Reaction != "" {
		actionMsg += fmt.Sprintf(" \"%s\"", d.Reaction)
	}

	terrain := e.seed.TerrainAt(x, y)
	return fmt.Sprintf("**%s - %s** (%s) [Lvl %d]\n*%s*\n> %s %s (⏳ %d min)%s",
		timeStr, c.Name, terrain, c.Level, d.Pensee, d.Action, actionMsg, d.Duration, detail.String())
}

func actionEmoji(action string) string {
	switch action {
	case ActionDrink:
		return "🍺"
	case ActionMagic:
		return "✨"
	case ActionStudy:
		return "📖"
	case ActionTalk:
		return "💬"
	case ActionRest:
		return "💤"
	default:
		return ""
	}
}

type statEntry struct {
	name string
	val  int
}

// rpgSkillsOrdered iterates a stat map deterministically so prompts are
// stable run to run.
func rpgSkillsOrdered(stats map[string]int) []statEntry {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]statEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, statEntry{k, stats[k]})
	}
	return out
}

func sortedNames(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}
