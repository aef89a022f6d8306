package message

import (
	"fmt"
	"strings"
)

// Type is the semantic category of an incoming chat line. The set is closed;
// values are never constructed at runtime.
type Type uint8

const (
	Other Type = iota
	JoinDF
	Locate
	LagSlayerStart
	LagSlayerStop
	DirectMessage
	SupportQuestion
	SupportQueue
	PlotAd
	PlotBoost
)

type typeInfo struct {
	name  string
	sound bool
	lines int
}

var registry = [...]typeInfo{
	Other:           {name: "OTHER", lines: 1},
	JoinDF:          {name: "JOIN_DF", lines: 1},
	Locate:          {name: "LOCATE", lines: 1},
	LagSlayerStart:  {name: "LAGSLAYER_START", lines: 1},
	LagSlayerStop:   {name: "LAGSLAYER_STOP", lines: 1},
	DirectMessage:   {name: "DIRECT_MESSAGE", lines: 1},
	SupportQuestion: {name: "SUPPORT_QUESTION", sound: true, lines: 1},
	SupportQueue:    {name: "SUPPORT_QUEUE", sound: true, lines: 2},
	PlotAd:          {name: "PLOT_AD", lines: 3},
	PlotBoost:       {name: "PLOT_BOOST", sound: true, lines: 1},
}

func (t Type) valid() bool {
	return int(t) < len(registry)
}

func (t Type) String() string {
	if !t.valid() {
		return fmt.Sprintf("TYPE(%d)", uint8(t))
	}
	return registry[t].name
}

// HasSound reports whether the server plays a notification sound alongside
// a message of this type.
func (t Type) HasSound() bool {
	return t.valid() && registry[t].sound
}

// LineCount is the number of consecutive raw lines that make up one message
// of this type. Always at least 1.
func (t Type) LineCount() int {
	if !t.valid() {
		return 1
	}
	return registry[t].lines
}

func (t Type) MarshalText() ([]byte, error) {
	if !t.valid() {
		return nil, fmt.Errorf("unknown message type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Types returns every type in declaration order.
func Types() []Type {
	types := make([]Type, len(registry))
	for i := range registry {
		types[i] = Type(i)
	}
	return types
}

func ParseType(s string) (Type, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, info := range registry {
		if info.name == name {
			return Type(i), nil
		}
	}
	return Other, fmt.Errorf("unknown message type %q", s)
}
