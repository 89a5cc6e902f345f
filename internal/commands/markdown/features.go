package markdowncmd

// FeatureGates exposes runtime feature toggles required by the handlers.
// Callers supply closures reading Config.Features so handlers stay decoupled
// from configuration.
type FeatureGates struct {
	CommandsEnabled func() bool
	CacheEnabled    func() bool
}

func (g FeatureGates) commandsEnabled() bool {
	if g.CommandsEnabled == nil {
		return true
	}
	return g.CommandsEnabled()
}

func (g FeatureGates) cacheEnabled() bool {
	if g.CacheEnabled == nil {
		return false
	}
	return g.CacheEnabled()
}
