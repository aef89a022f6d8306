package message

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"dfchat/internal/logger"
)

func TestNewClassifier_Validation(t *testing.T) {
	tests := []struct {
		name   string
		checks []Check
	}{
		{name: "nil check", checks: []Check{nil}},
		{name: "claims other", checks: []Check{textRule(Other, "x")}},
		{name: "unknown type", checks: []Check{textRule(Type(99), "x")}},
		{name: "duplicate type", checks: []Check{textRule(PlotAd, "a"), textRule(PlotAd, "b")}},
		{name: "bad category", checks: []Check{Rule{For: PlotAd, Match: func(*Message) bool { return true }, Category: "loud"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClassifier(logger.NopLogger(), tt.checks...)
			assert.Error(t, err)
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	var ran []Type
	record := func(t Type) func(context.Context, *Message) error {
		return func(context.Context, *Message) error {
			ran = append(ran, t)
			return nil
		}
	}
	evaluated := 0
	always := func(*Message) bool { evaluated++; return true }

	c, err := NewClassifier(logger.NopLogger(),
		Rule{For: JoinDF, Match: func(*Message) bool { evaluated++; return false }, Action: record(JoinDF)},
		Rule{For: SupportQuestion, Match: always, Action: record(SupportQuestion)},
		Rule{For: DirectMessage, Match: always, Action: record(DirectMessage)},
	)
	require.NoError(t, err)

	msg := newFixture().message("[Notch → You] » Support Question", false)
	typ, chk := c.Classify(context.Background(), msg)

	assert.Equal(t, SupportQuestion, typ)
	require.NotNil(t, chk)
	assert.Equal(t, SupportQuestion, chk.Type())
	assert.Equal(t, []Type{SupportQuestion}, ran)
	assert.Equal(t, 2, evaluated)
	assert.True(t, msg.Resolved())
	assert.Equal(t, SupportQuestion, msg.Type())
}

func TestClassify_NoMatch(t *testing.T) {
	c, err := NewClassifier(logger.NopLogger(), textRule(JoinDF, "nope"))
	require.NoError(t, err)

	msg := newFixture().message("hello world", false)
	typ, chk := c.Classify(context.Background(), msg)

	assert.Equal(t, Other, typ)
	assert.Nil(t, chk)
	assert.True(t, msg.Resolved())
}

func TestClassify_PredicatePanicIsNoMatch(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c, err := NewClassifier(logger.NewWithCore(core),
		Rule{For: Locate, Match: func(*Message) bool { panic("nil click event") }},
		textRule(LagSlayerStop, "stop"),
	)
	require.NoError(t, err)

	typ, _ := c.Classify(context.Background(), newFixture().message("stop", false))

	assert.Equal(t, LagSlayerStop, typ)
	assert.Equal(t, 1, logs.FilterMessage("Check predicate panicked, treating as no match").Len())
}

func TestClassify_ActionErrorIsNoMatch(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c, err := NewClassifier(logger.NewWithCore(core),
		Rule{
			For:    SupportQuestion,
			Match:  func(*Message) bool { return true },
			Action: func(context.Context, *Message) error { return errors.New("boom") },
		},
		Rule{
			For:    DirectMessage,
			Match:  func(*Message) bool { return true },
			Action: func(context.Context, *Message) error { panic("bad state") },
		},
		textRule(PlotAd, "ad"),
	)
	require.NoError(t, err)

	typ, chk := c.Classify(context.Background(), newFixture().message("ad", false))

	assert.Equal(t, PlotAd, typ)
	assert.NotNil(t, chk)
	assert.Equal(t, 2, logs.FilterMessage("Check action failed, treating as no match").Len())
}

func TestClassify_UnavailableKeepsType(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c, err := NewClassifier(logger.NewWithCore(core),
		Rule{
			For:   JoinDF,
			Match: func(*Message) bool { return true },
			Action: func(context.Context, *Message) error {
				return fmt.Errorf("scoreboard: %w", ErrUnavailable)
			},
		},
		textRule(PlotAd, "x"),
	)
	require.NoError(t, err)

	typ, _ := c.Classify(context.Background(), newFixture().message("x", false))

	assert.Equal(t, JoinDF, typ)
	assert.Equal(t, 1, logs.FilterMessage("Check action skipped, collaborator unavailable").Len())
}

func TestClassifier_ChecksIsCopy(t *testing.T) {
	c, err := NewClassifier(logger.NopLogger(), textRule(JoinDF, "a"), textRule(PlotAd, "b"))
	require.NoError(t, err)

	checks := c.Checks()
	checks[0] = nil

	assert.NotNil(t, c.Checks()[0])
}
