package models

import (
	"fmt"
	"strings"
)

// Preset is one (interval, period) pair fetched for a horizon scan.
type Preset struct {
	Interval string
	Period   string
}

func (p Preset) String() string { return p.Interval + "/" + p.Period }

type Horizon string

const (
	HorizonShort  Horizon = "short"
	HorizonMedium Horizon = "medium"
	HorizonLong   Horizon = "long"
)

type HorizonPreset struct {
	Name        string
	Description string
	Presets     []Preset
}

// Presets are fixed; Yahoo has no 120m bars so medium uses 90m.
var Presets = map[Horizon]HorizonPreset{
	HorizonShort: {
		Name:        "Kısa Vade",
		Description: "15m/14d + 30m/30d",
		Presets: []Preset{
			{Interval: "15m", Period: "14d"},
			{Interval: "30m", Period: "30d"},
		},
	},
	HorizonMedium: {
		Name:        "Orta Vade",
		Description: "60m/60d + 90m/90d",
		Presets: []Preset{
			{Interval: "60m", Period: "60d"},
			{Interval: "90m", Period: "90d"},
		},
	},
	HorizonLong: {
		Name:        "Uzun Vade",
		Description: "1d/180d + 1d/365d",
		Presets: []Preset{
			{Interval: "1d", Period: "180d"},
			{Interval: "1d", Period: "365d"},
		},
	},
}

// ErrUnknownHorizon is returned by ParseHorizon for names outside the preset table.
var ErrUnknownHorizon = fmt.Errorf("unknown horizon")

// ParseHorizon accepts both the english names and the bot command suffixes (kisa/orta/uzun).
func ParseHorizon(name string) (Horizon, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "short", "kisa", "kısa":
		return HorizonShort, nil
	case "medium", "orta":
		return HorizonMedium, nil
	case "long", "uzun":
		return HorizonLong, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownHorizon, name)
}

func LookupHorizon(name string) (HorizonPreset, error) {
	h, err := ParseHorizon(name)
	if err != nil {
		return HorizonPreset{}, err
	}
	return Presets[h], nil
}
