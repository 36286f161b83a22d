package world

import (
	"encoding/json"
	"math/rand"

	"github.com/tatianab/village-sim/internal/events"
)

// Conditions a re-roll can land on.
var WeatherStates = []string{
	"Ensoleillé ☀️",
	"Pluvieux 🌧️",
	"Orageux ⛈️",
	"Brumeux 🌫️",
}

// DefaultCondition is used when a snapshot carries no weather at all.
const DefaultCondition = "Ensoleillé ☀️"

// WeatherChangeChance is the per-update probability of a re-roll.
const WeatherChangeChance = 0.2

// EventWeatherChange is published on the bus whenever the condition
// actually changes. Payload: map[string]any{"type": condition}.
const EventWeatherChange = "WEATHER_CHANGE"

// Weather is the current sky: a discrete condition plus an optional
// temperature. Older snapshots stored the condition as a bare string,
// which UnmarshalJSON still accepts.
type Weather struct {
	Condition   string `json:"type"`
	Temperature *int   `json:"temperature,omitempty"`
}

// DefaultWeather is the state of a brand new session.
var DefaultWeather = Weather{Condition: DefaultCondition}

func (w Weather) String() string {
	return w.Condition
}

// UnmarshalJSON accepts both the record form and the legacy bare
// condition string.
func (w *Weather) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		w.Condition = s
		w.Temperature = nil
		return nil
	}
	type record Weather
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*w = Weather(r)
	return nil
}

// Update re-rolls the condition with probability WeatherChangeChance.
// A change is announced on the bus; an unchanged roll (or a skipped
// one) returns current as-is.
func (w Weather) Update(rng *rand.Rand, bus *events.Bus) Weather {
	if w.Condition == "" {
		w.Condition = DefaultCondition
	}
	if rng.Float64() >= WeatherChangeChance {
		return w
	}
	next := WeatherStates[rng.Intn(len(WeatherStates))]
	if next != w.Condition {
		if bus != nil {
			bus.Publish(EventWeatherChange, map[string]any{"type": next})
		}
		w.Condition = next
	}
	return w
}
