// Package story turns raw turn logs into a continuous chapter via the
// oracle: streamed narration, key-fact extraction and log summaries.
package story

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/tatianab/village-sim/internal/oracle"
	"github.com/tatianab/village-sim/internal/world"
)

//go:embed prompts/narrate_turn.txt
var narrateTurnPrompt string

//go:embed prompts/extract_facts.txt
var extractFactsPrompt string

//go:embed prompts/summarize.txt
var summarizePrompt string

var (
	narrateTurnTmpl  = template.Must(template.New("narrate_turn").Parse(narrateTurnPrompt))
	extractFactsTmpl = template.Must(template.New("extract_facts").Parse(extractFactsPrompt))
	summarizeTmpl    = template.Must(template.New("summarize").Parse(summarizePrompt))
)

// chapterContext bounds how much running chapter text is replayed into
// a narration prompt for continuity.
const chapterContext = 3000

// Narrator writes the village chronicle. It only reads world data and
// never mutates it.
type Narrator struct {
	oracle oracle.Oracle
	log    zerolog.Logger
}

// New returns a narrator over the given oracle.
func New(orc oracle.Oracle, log zerolog.Logger) *Narrator {
	return &Narrator{oracle: orc, log: log}
}

// directorsNote picks the narrative phase from the time of day.
func directorsNote(clock world.Clock) string {
	h := clock.FaceTime() / 60
	switch {
	case h >= 22 || h < 6:
		return "PHASE 4 (Nuit) : DANGER. Exploration interdite, créatures, duels clandestins."
	case h >= 18:
		return "PHASE 3 (Soirée) : Mystère sombre, ombres dans les ruelles, couvre-feu imminent."
	case h >= 12:
		return "PHASE 2 (Après-midi) : Sortie au village, visite des boutiques, intrigues qui se nouent."
	default:
		return "PHASE 1 (Matinale) : Travaux du matin, interactions sociales, petits secrets."
	}
}

// NarrateTurn streams the next page of the chapter to fn, chunk by
// chunk, continuing from the existing chapter text.
func (n *Narrator) NarrateTurn(ctx context.Context, seed *world.Seed, clock world.Clock, chapter string, turnLogs []string, keyFacts string, fn func(chunk string) error) error {
	var buf bytes.Buffer
	data := struct {
		ScenarioName  string
		Description   string
		DirectorsNote string
		KeyFacts      string
		Chapter       string
		TurnLogs      string
	}{
		ScenarioName:  seed.ScenarioName,
		Description:   seed.Description,
		DirectorsNote: directorsNote(clock),
		KeyFacts:      keyFacts,
		Chapter:       tail(chapter, chapterContext),
		TurnLogs:      strings.Join(turnLogs, "\n"),
	}
	if err := narrateTurnTmpl.Execute(&buf, data); err != nil {
		return err
	}
	return n.oracle.Stream(ctx, buf.String(), fn)
}

// ExtractFacts mines the turn logs for the handful of events worth
// remembering across chapters. Returns nil when nothing stood out.
func (n *Narrator) ExtractFacts(ctx context.Context, logsText string) ([]string, error) {
	var buf bytes.Buffer
	if err := extractFactsTmpl.Execute(&buf, struct{ Logs string }{logsText}); err != nil {
		return nil, err
	}
	out, err := n.oracle.Invoke(ctx, buf.String())
	if err != nil {
		return nil, err
	}
	out = strings.TrimSpace(out)
	if out == "" || strings.Contains(out, "Rien") {
		return nil, nil
	}
	var facts []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "-") {
			facts = append(facts, strings.TrimSpace(line))
		}
	}
	return facts, nil
}

// Summarize condenses raw logs into a short situation report for the
// next prompt's immediate memory.
func (n *Narrator) Summarize(ctx context.Context, logsText string) (string, error) {
	var buf bytes.Buffer
	if err := summarizeTmpl.Execute(&buf, struct{ Logs string }{logsText}); err != nil {
		return "", err
	}
	out, err := n.oracle.Invoke(ctx, buf.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func tail(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[len(r)-max:])
}
