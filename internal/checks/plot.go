package checks

import (
	"context"
	"regexp"

	"dfchat/internal/message"
)

var (
	plotAdPattern    = regexp.MustCompile(`^\[Plot Ad\] .+$`)
	plotBoostPattern = regexp.MustCompile(`^.*» \w+ boosted (?:their|a) plot: .+$`)
)

// PlotAdCheck matches the header of a plot advertisement. The body and the
// join hint follow as two separate lines.
type PlotAdCheck struct{}

func (PlotAdCheck) Type() message.Type { return message.PlotAd }

func (PlotAdCheck) HideCategory() message.HideCategory { return message.HidePlotAds }

func (PlotAdCheck) Check(msg *message.Message) bool {
	return plotAdPattern.MatchString(msg.Stripped())
}

func (PlotAdCheck) OnReceive(context.Context, *message.Message) error { return nil }

type PlotBoostCheck struct{}

func (PlotBoostCheck) Type() message.Type { return message.PlotBoost }

func (PlotBoostCheck) HideCategory() message.HideCategory { return message.HidePlotBoosts }

func (PlotBoostCheck) Check(msg *message.Message) bool {
	return plotBoostPattern.MatchString(msg.Stripped())
}

func (PlotBoostCheck) OnReceive(context.Context, *message.Message) error { return nil }
