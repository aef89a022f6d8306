package streamer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dfchat/internal/config"
	"dfchat/internal/message"
)

func TestPolicy_Hidden(t *testing.T) {
	p := NewPolicy(Settings{HideDirectMessages: true, HidePlotAds: true})

	assert.False(t, p.Hidden(message.HideDirectMessages), "disabled policy hides nothing")

	require.NoError(t, p.Update(Settings{Enabled: true, HideDirectMessages: true, HidePlotAds: true}))

	assert.True(t, p.Hidden(message.HideDirectMessages))
	assert.True(t, p.Hidden(message.HidePlotAds))
	assert.False(t, p.Hidden(message.HideSupport))
	assert.False(t, p.Hidden(message.HidePlotBoosts))
	assert.False(t, p.Hidden(message.HideNone))
}

func TestPolicy_UpdateValidatesExemptions(t *testing.T) {
	p := NewPolicy(Settings{Exemptions: []string{"RyanLand"}})

	err := p.Update(Settings{Exemptions: []string{"not a name!"}})
	assert.Error(t, err)
	assert.Equal(t, []string{"RyanLand"}, p.Exemptions())
}

func TestPolicy_SnapshotIsCopy(t *testing.T) {
	p := NewPolicy(Settings{Exemptions: []string{"Reasonless"}})

	snap := p.Snapshot()
	snap.Exemptions[0] = "Mallory"

	assert.Equal(t, []string{"Reasonless"}, p.Exemptions())
}

func TestSettingsFromConfig(t *testing.T) {
	s := SettingsFromConfig(config.StreamerConfig{
		Enabled:        true,
		HideSupport:    true,
		HidePlotBoosts: true,
		Exemptions:     []string{"Vattendroppen236"},
	})

	assert.True(t, s.Enabled)
	assert.True(t, s.HideSupport)
	assert.True(t, s.HidePlotBoosts)
	assert.False(t, s.HidePlotAds)
	assert.Equal(t, []string{"Vattendroppen236"}, s.Exemptions)
	assert.NoError(t, s.Validate())
}
