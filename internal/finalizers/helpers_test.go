package finalizers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"dfchat/internal/checks"
	"dfchat/internal/logger"
	"dfchat/internal/message"
	"dfchat/internal/state"
	"dfchat/pkg/models"
)

type cascadeRecorder struct {
	suppressed int
	hides      []int
	sounds     int
}

func (r *cascadeRecorder) Suppress()        { r.suppressed++ }
func (r *cascadeRecorder) Hide(n int)       { r.hides = append(r.hides, n) }
func (r *cascadeRecorder) CancelNextSound() { r.sounds++ }

// classified builds a message for text and runs it through the default
// checks.
func classified(t *testing.T, text string) (*message.Message, *cascadeRecorder) {
	t.Helper()

	c, err := message.NewClassifier(logger.NopLogger(), checks.Default(state.NewTracker(state.Initial()))...)
	require.NoError(t, err)

	rec := &cascadeRecorder{}
	event := models.NewChatEventBuilder().WithText(text).WithSource("mc.mcdiamondfire.com").Build()
	msg := message.New(event, rec, message.Cascade{Lines: rec, Sounds: rec})
	c.Classify(context.Background(), msg)
	return msg, rec
}

type policyStub struct {
	hidden     map[message.HideCategory]bool
	exemptions []string
}

func (p policyStub) Hidden(cat message.HideCategory) bool { return p.hidden[cat] }
func (p policyStub) Exemptions() []string                 { return p.exemptions }
