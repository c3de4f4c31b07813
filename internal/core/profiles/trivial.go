package profiles

import "github.com/JonMunkholm/csvtree/internal/core"

// Trivial is the name of the profile that renames nothing.
const Trivial = "trivial"

func init() {
	core.RegisterProfile(core.Profile{
		Name:          Trivial,
		Description:   "Headers are used as written; expects a \"path\" column",
		Substitutions: core.NoSubstitutions(),
	})
}
