package state

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	locateModePattern  = regexp.MustCompile(`You are currently (at spawn|playing on:|building on:|coding on:)`)
	locatePlotPattern  = regexp.MustCompile(`(?m)^→ (.+) \[(\d+)\]\s*$`)
	locateOwnerPattern = regexp.MustCompile(`(?m)^→ Owner: (\S+)`)
	locateNodePattern  = regexp.MustCompile(`(?m)^→ Server: (.+?)\s*$`)
)

var locateModes = map[string]Mode{
	"at spawn":     ModeSpawn,
	"playing on:":  ModePlay,
	"building on:": ModeBuild,
	"coding on:":   ModeDev,
}

// ParseLocate derives a state from the stripped text of a /locate report.
// Facts the report does not mention are carried over from prev. ok is false
// when the text is not a locate report of the player.
func ParseLocate(text string, prev State) (next State, ok bool) {
	m := locateModePattern.FindStringSubmatch(text)
	if m == nil {
		return prev, false
	}

	next = prev
	next.Mode = locateModes[m[1]]
	next.PlotID, next.PlotName, next.PlotOwner = 0, "", ""

	if next.InPlot() {
		if pm := locatePlotPattern.FindStringSubmatch(text); pm != nil {
			next.PlotName = strings.TrimSpace(pm[1])
			next.PlotID, _ = strconv.Atoi(pm[2])
		}
		if om := locateOwnerPattern.FindStringSubmatch(text); om != nil {
			next.PlotOwner = om[1]
		}
	}

	if nm := locateNodePattern.FindStringSubmatch(text); nm != nil {
		next.Node = nm[1]
		next.InBeta = strings.EqualFold(next.Node, "Node Beta")
	}

	return next, true
}
