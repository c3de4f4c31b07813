package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Profile is a named set of header substitutions for a known CSV export
// format, plus the path separator that format uses.
type Profile struct {
	Name          string
	Description   string
	PathSeparator rune // 0 means no preference
	Substitutions Substitutions
}

var (
	profiles   = make(map[string]Profile)
	profilesMu sync.RWMutex
)

// RegisterProfile adds a profile to the registry. Names are case-insensitive.
// Panics if a profile with the same name is already registered.
func RegisterProfile(p Profile) {
	profilesMu.Lock()
	defer profilesMu.Unlock()

	key := strings.ToLower(p.Name)
	if key == "" {
		panic("profile name is empty")
	}
	if _, exists := profiles[key]; exists {
		panic(fmt.Sprintf("profile already registered: %s", p.Name))
	}
	profiles[key] = p
}

// LookupProfile returns a registered profile by name.
func LookupProfile(name string) (Profile, error) {
	profilesMu.RLock()
	defer profilesMu.RUnlock()

	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// Profiles returns all registered profiles sorted by name.
func Profiles() []Profile {
	profilesMu.RLock()
	defer profilesMu.RUnlock()

	result := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// ClearProfiles removes all registered profiles.
// Primarily useful for testing.
func ClearProfiles() {
	profilesMu.Lock()
	defer profilesMu.Unlock()
	profiles = make(map[string]Profile)
}
