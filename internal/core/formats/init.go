// Package formats registers every supported vendor CSV format with the core
// registry. Import this package for its side effect.
//
// Registration order is the detection tie-break, so all formats are
// registered from the single init below rather than one init per file.
package formats

import "github.com/JonMunkholm/credport/internal/core"

func init() {
	for _, def := range Definitions() {
		core.Register(def)
	}
}

// Definitions returns every vendor format in registration order.
func Definitions() []core.FormatDefinition {
	return []core.FormatDefinition{
		keePassXC(),
		lastPass(),
		onePassword(),
		bitwarden(),
		chromium(),
		safari(),
		mozilla(),
		nordPass(),
		logMeOnce(),
		dashlane(),
		keePass(),
	}
}

// passwordAndDescription pins formats that never carry a one-time password.
func passwordAndDescription() *core.SlugPair {
	return &core.SlugPair{
		Legacy:  core.SlugPasswordAndDescription,
		Current: core.SlugV5Default,
	}
}
