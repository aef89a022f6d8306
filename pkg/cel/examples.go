package cel

// HideExpressionExamples are served by the API as starting points for custom
// hide rules.
var HideExpressionExamples = map[string]string{
	"hide_plot_ads_from_sender": `type == "PLOT_AD" && stripped.contains("parkour")`,
	"mute_sender":               `type == "DIRECT_MESSAGE" && sender == "Notch"`,
	"hide_all_sounds":           `has_sound`,
	"hide_multiline":            `line_count > 1`,
	"keyword":                   `stripped.lowerAscii().contains("giveaway")`,
	"regex":                     `stripped.matches("^\\[Plot Ad\\] .*free.*$")`,
	"clickable_only":            `click_action == "run_command" && type == "OTHER"`,
	"already_cancelled":         `!cancelled && type == "PLOT_BOOST"`,
	"by_source":                 `source == "proxy-eu"`,
}
