package streamer

import (
	"fmt"
	"regexp"
	"sync"

	"dfchat/internal/config"
	"dfchat/internal/message"
)

var usernamePattern = regexp.MustCompile(`^\w{1,16}$`)

// Settings is the streamer-mode visibility configuration.
type Settings struct {
	Enabled            bool     `json:"enabled"`
	HideDirectMessages bool     `json:"hide_direct_messages"`
	HideSupport        bool     `json:"hide_support"`
	HidePlotAds        bool     `json:"hide_plot_ads"`
	HidePlotBoosts     bool     `json:"hide_plot_boosts"`
	Exemptions         []string `json:"exemptions"`
}

func SettingsFromConfig(cfg config.StreamerConfig) Settings {
	return Settings{
		Enabled:            cfg.Enabled,
		HideDirectMessages: cfg.HideDirectMessages,
		HideSupport:        cfg.HideSupport,
		HidePlotAds:        cfg.HidePlotAds,
		HidePlotBoosts:     cfg.HidePlotBoosts,
		Exemptions:         append([]string(nil), cfg.Exemptions...),
	}
}

func (s Settings) Validate() error {
	for _, name := range s.Exemptions {
		if !usernamePattern.MatchString(name) {
			return fmt.Errorf("invalid exemption %q: must be a Minecraft username", name)
		}
	}
	return nil
}

func (s Settings) hides(cat message.HideCategory) bool {
	switch cat {
	case message.HideDirectMessages:
		return s.HideDirectMessages
	case message.HideSupport:
		return s.HideSupport
	case message.HidePlotAds:
		return s.HidePlotAds
	case message.HidePlotBoosts:
		return s.HidePlotBoosts
	}
	return false
}

// Policy holds the live settings. It is read on every message and replaced
// through the admin API or config events.
type Policy struct {
	mu       sync.RWMutex
	settings Settings
}

func NewPolicy(s Settings) *Policy {
	return &Policy{settings: s.clone()}
}

// Hidden reports whether streamer mode is on and hides cat.
func (p *Policy) Hidden(cat message.HideCategory) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings.Enabled && p.settings.hides(cat)
}

func (p *Policy) Exemptions() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.settings.Exemptions...)
}

func (p *Policy) Snapshot() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings.clone()
}

func (p *Policy) Update(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings = s.clone()
	return nil
}

func (s Settings) clone() Settings {
	s.Exemptions = append([]string(nil), s.Exemptions...)
	return s
}
