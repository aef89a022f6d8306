package message

// HideCategory names a group of messages that streamer mode can hide as a
// whole. HideNone means the check has no streamer-mode gate.
type HideCategory string

const (
	HideNone           HideCategory = ""
	HideDirectMessages HideCategory = "direct_messages"
	HideSupport        HideCategory = "support"
	HidePlotAds        HideCategory = "plot_ads"
	HidePlotBoosts     HideCategory = "plot_boosts"
)

func HideCategories() []HideCategory {
	return []HideCategory{HideDirectMessages, HideSupport, HidePlotAds, HidePlotBoosts}
}

func (c HideCategory) Valid() bool {
	switch c {
	case HideNone, HideDirectMessages, HideSupport, HidePlotAds, HidePlotBoosts:
		return true
	}
	return false
}
