package config

// ExplicitFlags is the set of command-line flags the user typed. It is
// fixed at construction and safe to share.
type ExplicitFlags struct {
	names map[string]struct{}
}

// NewExplicitFlags keeps the names mapped to true
func NewExplicitFlags(flags map[string]bool) *ExplicitFlags {
	ef := &ExplicitFlags{names: make(map[string]struct{}, len(flags))}
	for name, set := range flags {
		if set {
			ef.names[name] = struct{}{}
		}
	}
	return ef
}

// Has reports whether name was given on the command line. A nil set has
// no flags.
func (ef *ExplicitFlags) Has(name string) bool {
	if ef == nil {
		return false
	}
	_, ok := ef.names[name]
	return ok
}

// Len is the number of explicit flags
func (ef *ExplicitFlags) Len() int {
	if ef == nil {
		return 0
	}
	return len(ef.names)
}

// Pick returns flagValue when flag was typed and configValue otherwise
func Pick[T any](ef *ExplicitFlags, flag string, configValue, flagValue T) T {
	if ef.Has(flag) {
		return flagValue
	}
	return configValue
}

// PickSlice is Pick for list flags; an explicit empty list keeps configValue
func PickSlice[T any](ef *ExplicitFlags, flag string, configValue, flagValue []T) []T {
	if ef.Has(flag) && len(flagValue) > 0 {
		return flagValue
	}
	return configValue
}
