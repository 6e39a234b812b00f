package registry

// Source records where a resolved version came from.
type Source string

const (
	SourceNone   Source = ""
	SourceLocal  Source = "local"
	SourceGlobal Source = "global"
)

// Resolution is the outcome of a preference lookup.
type Resolution struct {
	Version string `json:"version,omitempty"`
	Source  Source `json:"source"`
}

// Found reports whether any preference applied.
func (r Resolution) Found() bool { return r.Source != SourceNone }

// Resolver answers which version the user asked for in the current context.
// It does not check whether that version is installed.
type Resolver struct {
	local  *LocalOverride
	global *GlobalConfigFile
}

// NewResolver composes a local override and the global config.
func NewResolver(local *LocalOverride, global *GlobalConfigFile) *Resolver {
	return &Resolver{local: local, global: global}
}

// Resolve applies local override, then global default, then nothing.
func (r *Resolver) Resolve() (Resolution, error) {
	if r.local != nil {
		v, ok, err := r.local.Get()
		if err != nil {
			return Resolution{}, err
		}
		if ok {
			return Resolution{Version: v, Source: SourceLocal}, nil
		}
	}

	if r.global != nil {
		cfg, err := r.global.Load()
		if err != nil {
			return Resolution{}, err
		}
		if v, ok := cfg.Default(); ok && v != "" {
			return Resolution{Version: v, Source: SourceGlobal}, nil
		}
	}
	return Resolution{Source: SourceNone}, nil
}
