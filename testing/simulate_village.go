package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tatianab/village-sim/internal/config"
	"github.com/tatianab/village-sim/internal/economy"
	"github.com/tatianab/village-sim/internal/engine"
	"github.com/tatianab/village-sim/internal/events"
	"github.com/tatianab/village-sim/internal/oracle"
	"github.com/tatianab/village-sim/internal/story"
	"github.com/tatianab/village-sim/internal/world"
)

// Soak harness: runs the real simulation against the live oracle for a
// fixed number of turns and prints everything, so prompt or parsing
// regressions show up before they reach an interactive session.
const maxTurns = 10

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	fmt.Println("--- Step 1: Loading world seed ---")
	seed, err := world.LoadSeed(cfg.SeedPath)
	if err != nil {
		log.Fatalf("Failed to load world seed: %v", err)
	}
	fmt.Printf("Scenario: %s (%d characters, grid %dx%d)\n\n",
		seed.ScenarioName, len(seed.Characters), seed.GridSize, seed.GridSize)

	fmt.Println("--- Step 2: Connecting to oracle ---")
	var orc oracle.Oracle
	switch cfg.Provider {
	case "openai":
		o, err := oracle.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ModelName)
		if err != nil {
			log.Fatalf("Failed to create oracle: %v", err)
		}
		orc = o
	default:
		gem, err := oracle.NewGemini(ctx, cfg.GeminiAPIKey, cfg.ModelName)
		if err != nil {
			log.Fatalf("Failed to create oracle: %v", err)
		}
		defer gem.Close()
		orc = gem
	}

	state := world.NewState(seed)
	for _, c := range state.Characters {
		if c.Gold == 0 {
			c.Gold = economy.StartingGold
		}
	}
	store := world.NewStore(cfg.SavePath, logger)
	bus := events.New()
	bus.Subscribe(world.EventWeatherChange, func(payload any) {
		fmt.Printf("[EVENT] weather: %v\n", payload)
	})
	bus.Subscribe(engine.EventLevelUp, func(payload any) {
		fmt.Printf("[EVENT] level up: %v\n", payload)
	})

	eng := engine.New(orc, seed, state, store, bus, engine.Options{
		BatchSize:     cfg.BatchSize,
		MaxWorkers:    cfg.MaxWorkers,
		TickMinutes:   cfg.TickMinutes,
		OracleTimeout: cfg.OracleTimeout(),
	}, logger)
	narrator := story.New(orc, logger)

	chapter := ""
	for turn := 1; turn <= maxTurns; turn++ {
		fmt.Printf("--- Turn %d (%s, Jour %d, %s) ---\n",
			turn, state.Clock.HourString(), state.Clock.Day(), state.Weather)

		logs := eng.Step(ctx, chapter)
		for _, line := range logs {
			fmt.Println(line)
		}

		var prose strings.Builder
		err := narrator.NarrateTurn(ctx, seed, state.Clock, chapter, logs, "", func(chunk string) error {
			fmt.Print(chunk)
			prose.WriteString(chunk)
			return nil
		})
		if err != nil {
			fmt.Printf("Narration failed: %v\n", err)
		} else {
			chapter += "\n\n" + prose.String()
		}
		fmt.Println()

		for _, name := range rosterNames(state) {
			c := state.Characters[name]
			fmt.Printf("  %s [Lvl %d] energie=%d or=%d pos=%v\n",
				name, c.Level, c.Energy, c.Gold, c.Pos)
		}
		fmt.Println()
	}

	fmt.Println("--- Done ---")
}

func rosterNames(s *world.State) []string {
	names := make([]string, 0, len(s.Characters))
	for name := range s.Characters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
