package engine

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Action vocabulary the apply step understands. Anything else in an
// oracle response degrades to ActionIdle.
const (
	ActionIdle    = "RIEN"
	ActionMove    = "SE DEPLACER"
	ActionRest    = "REPOS"
	ActionStudy   = "ETUDIER"
	ActionTalk    = "DISCUTER"
	ActionFlirt   = "DRAGUER"
	ActionExplore = "EXPLORER"
	ActionMagic   = "MAGIE"
	ActionDrink   = "BOIRE"
	ActionBuy     = "ACHETER"
	ActionCraft   = "FABRIQUER"
)

var knownActions = map[string]bool{
	ActionIdle: true, ActionMove: true, ActionRest: true,
	ActionStudy: true, ActionTalk: true, ActionFlirt: true,
	ActionExplore: true, ActionMagic: true, ActionDrink: true,
	ActionBuy: true, ActionCraft: true,
}

// "BOUGE" is an alias some models emit for movement.
var actionAliases = map[string]string{"BOUGE": ActionMove}

// Decision duration bounds, in minutes.
const (
	DefaultDuration = 15
	MinDuration     = 5
)

// Decision is one character's validated choice for the turn. Every
// field carries a safe default; a malformed oracle record never crashes
// the turn, it degrades field by field.
type Decision struct {
	Pensee      string
	Action      string
	Dest        [2]int
	Duration    int
	Target      string
	TargetSkill string
	Reaction    string
}

// DefaultDecision is the no-op a character falls back to: stay put,
// do nothing.
func DefaultDecision(pos [2]int) Decision {
	return Decision{
		Pensee:   "Attend...",
		Action:   ActionIdle,
		Dest:     pos,
		Duration: DefaultDuration,
	}
}

// rawDecision defers every field so one wrong type cannot sink the
// whole record.
type rawDecision struct {
	Pensee      json.RawMessage `json:"pensee"`
	Action      json.RawMessage `json:"action"`
	Dest        json.RawMessage `json:"dest"`
	Duration    json.RawMessage `json:"duration"`
	Target      json.RawMessage `json:"target"`
	TargetSkill json.RawMessage `json:"target_skill"`
	Reaction    json.RawMessage `json:"reaction"`
}

var controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f]`)

// ParseDecisions extracts the decision object from raw oracle text and
// returns one validated Decision per requested character. It never
// fails: on unparseable input every character gets the default no-op
// and the error describes what went wrong, for logging only.
func ParseDecisions(raw string, positions map[string][2]int) (map[string]Decision, error) {
	out := make(map[string]Decision, len(positions))
	for name, pos := range positions {
		out[name] = DefaultDecision(pos)
	}

	payload, err := decodePayload(raw)
	if err != nil {
		return out, err
	}

	for name, pos := range positions {
		rec, ok := payload[name]
		if !ok || len(rec) == 0 {
			continue
		}
		var rd rawDecision
		if err := json.Unmarshal(rec, &rd); err != nil {
			continue
		}
		d := DefaultDecision(pos)
		if s, ok := asString(rd.Pensee); ok && s != "" {
			d.Pensee = s
		}
		if s, ok := asString(rd.Action); ok {
			d.Action = normalizeAction(s)
		}
		if c, ok := asCoord(rd.Dest); ok {
			d.Dest = c
		}
		if n, ok := asInt(rd.Duration); ok {
			d.Duration = n
		}
		if d.Duration < MinDuration {
			d.Duration = MinDuration
		}
		if s, ok := asString(rd.Target); ok {
			d.Target = s
		}
		if s, ok := asString(rd.TargetSkill); ok {
			d.TargetSkill = strings.ToUpper(strings.TrimSpace(s))
		}
		if s, ok := asString(rd.Reaction); ok {
			d.Reaction = s
		}
		out[name] = d
	}
	return out, nil
}

func decodePayload(raw string) (map[string]json.RawMessage, error) {
	jsonStr, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &payload); err == nil {
		return payload, nil
	}

	// One retry with control characters stripped; models sometimes leak
	// raw newlines or escape bytes into string values.
	cleaned := controlChars.ReplaceAllString(jsonStr, "")
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("oracle response is not a JSON object: %w", err)
	}
	return payload, nil
}

// ExtractJSON returns the first balanced-brace object in text. Matching
// is string- and escape-aware so trailing prose or nested braces after
// the object do not truncate it the way a first-'{'-to-last-'}' slice
// would.
func ExtractJSON(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", fmt.Errorf("no JSON object found in oracle response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced braces in oracle response")
}

func normalizeAction(s string) string {
	a := strings.ToUpper(strings.TrimSpace(s))
	if alias, ok := actionAliases[a]; ok {
		a = alias
	}
	if !knownActions[a] {
		return ActionIdle
	}
	return a
}

func asString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func asInt(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func asCoord(raw json.RawMessage) ([2]int, bool) {
	if len(raw) == 0 {
		return [2]int{}, false
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return [2]int{}, false
	}
	x, okX := asInt(pair[0])
	y, okY := asInt(pair[1])
	if !okX || !okY {
		return [2]int{}, false
	}
	return [2]int{x, y}, true
}
