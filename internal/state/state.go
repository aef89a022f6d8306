package state

import (
	"fmt"
	"strings"
	"time"
)

// Mode is where the player currently is on the network.
type Mode string

const (
	ModeUnknown Mode = "unknown"
	ModeSpawn   Mode = "spawn"
	ModePlay    Mode = "play"
	ModeBuild   Mode = "build"
	ModeDev     Mode = "dev"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeUnknown, ModeSpawn, ModePlay, ModeBuild, ModeDev:
		return m, nil
	case "":
		return ModeUnknown, nil
	default:
		return ModeUnknown, fmt.Errorf("unknown mode %q", s)
	}
}

// State is the set of facts tracked from server messages.
type State struct {
	Mode             Mode      `json:"mode"`
	Node             string    `json:"node,omitempty"`
	PlotID           int       `json:"plot_id,omitempty"`
	PlotName         string    `json:"plot_name,omitempty"`
	PlotOwner        string    `json:"plot_owner,omitempty"`
	InBeta           bool      `json:"in_beta"`
	LagSlayerEnabled bool      `json:"lagslayer_enabled"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func Initial() State {
	return State{Mode: ModeUnknown}
}

// InPlot reports whether the state refers to a plot.
func (s State) InPlot() bool {
	switch s.Mode {
	case ModePlay, ModeBuild, ModeDev:
		return true
	}
	return false
}
