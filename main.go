package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tatianab/village-sim/internal/config"
	"github.com/tatianab/village-sim/internal/economy"
	"github.com/tatianab/village-sim/internal/engine"
	"github.com/tatianab/village-sim/internal/events"
	"github.com/tatianab/village-sim/internal/oracle"
	"github.com/tatianab/village-sim/internal/story"
	"github.com/tatianab/village-sim/internal/tui"
	"github.com/tatianab/village-sim/internal/world"
)

func main() {
	turns := flag.Int("turns", 0, "run N turns headless and exit (0 = interactive TUI)")
	seedPath := flag.String("seed", "", "world seed file (overrides SIM_SEED_PATH)")
	flag.Parse()

	if err := run(*turns, *seedPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(turns int, seedPath string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if seedPath != "" {
		cfg.SeedPath = seedPath
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).Level(level).With().Timestamp().Logger()

	seed, err := world.LoadSeed(cfg.SeedPath)
	if err != nil {
		return err
	}

	store := world.NewStore(cfg.SavePath, log)
	state, err := store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("snapshot unreadable; starting from seed")
	}
	if state == nil {
		state = world.NewState(seed)
		for _, c := range state.Characters {
			if c.Gold == 0 {
				c.Gold = economy.StartingGold
			}
		}
		log.Info().Str("scenario", seed.ScenarioName).Int("characters", len(state.Characters)).Msg("new session")
	} else {
		log.Info().Int("world_time", state.Clock.Minutes).Msg("session resumed from snapshot")
	}

	orc, closeOracle, err := buildOracle(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeOracle()

	bus := events.New()
	bus.Subscribe(world.EventWeatherChange, func(payload any) {
		log.Info().Interface("weather", payload).Msg("the weather turns")
	})
	bus.Subscribe(engine.EventLevelUp, func(payload any) {
		log.Info().Interface("character", payload).Msg("level up")
	})

	eng := engine.New(orc, seed, state, store, bus, engine.Options{
		BatchSize:     cfg.BatchSize,
		MaxWorkers:    cfg.MaxWorkers,
		TickMinutes:   cfg.TickMinutes,
		OracleTimeout: cfg.OracleTimeout(),
	}, log)

	narrator := story.New(orc, log)

	if turns > 0 {
		return runHeadless(ctx, eng, narrator, cfg, turns)
	}
	return tui.Run(eng, narrator, cfg.Adaptive, cfg.NarrationEnabled)
}

func buildOracle(ctx context.Context, cfg *config.Config) (oracle.Oracle, func(), error) {
	switch cfg.Provider {
	case "openai":
		orc, err := oracle.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ModelName)
		if err != nil {
			return nil, nil, err
		}
		return orc, func() {}, nil
	default:
		orc, err := oracle.NewGemini(ctx, cfg.GeminiAPIKey, cfg.ModelName)
		if err != nil {
			return nil, nil, err
		}
		return orc, orc.Close, nil
	}
}

func runHeadless(ctx context.Context, eng *engine.Engine, narrator *story.Narrator, cfg *config.Config, turns int) error {
	chapter := ""
	for i := 1; i <= turns; i++ {
		var logs []string
		if cfg.Adaptive {
			logs = eng.StepAdaptive(ctx, chapter)
		} else {
			logs = eng.Step(ctx, chapter)
		}

		st := eng.State()
		fmt.Printf("--- Tour %d (Jour %d, %s, %s) ---\n", i, st.Clock.Day(), st.Clock.HourString(), st.Weather)
		for _, line := range logs {
			fmt.Println(line)
		}

		if cfg.NarrationEnabled && len(logs) > 0 {
			var page strings.Builder
			err := narrator.NarrateTurn(ctx, eng.Seed(), st.Clock, chapter, logs, "", func(chunk string) error {
				fmt.Print(chunk)
				page.WriteString(chunk)
				return nil
			})
			if err == nil {
				chapter += "\n" + page.String()
			}
			fmt.Println()
		}
	}
	return nil
}
