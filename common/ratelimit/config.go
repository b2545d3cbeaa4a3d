package ratelimit

// Action names a rate-limited operation
type Action string

const (
	ActionGenerate Action = "generate"
	ActionLookup   Action = "lookup"
)

// ActionConfig defines the rate limit for one action
type ActionConfig struct {
	Action        Action
	Limit         int64 // Requests allowed per window
	WindowSeconds int   // Time window in seconds
	Description   string
}

// DefaultActionConfigs are used when the service does not override them
var DefaultActionConfigs = map[Action]ActionConfig{
	ActionGenerate: {
		Action:        ActionGenerate,
		Limit:         10,
		WindowSeconds: 60,
		Description:   "Letter generation - 10 drafts/minute",
	},
	ActionLookup: {
		Action:        ActionLookup,
		Limit:         20,
		WindowSeconds: 60,
		Description:   "Representative lookup - 20 lookups/minute",
	},
}

// strictest is applied to actions with no configuration
var strictest = ActionConfig{Limit: 5, WindowSeconds: 60, Description: "Unconfigured action"}

// LookupConfig returns the configuration for action from configs,
// falling back to the defaults and then to the strictest limit.
func LookupConfig(configs map[Action]ActionConfig, action Action) ActionConfig {
	if cfg, ok := configs[action]; ok && cfg.Limit > 0 && cfg.WindowSeconds > 0 {
		return cfg
	}
	if cfg, ok := DefaultActionConfigs[action]; ok {
		return cfg
	}
	cfg := strictest
	cfg.Action = action
	return cfg
}

// WithOverrides returns a copy of the defaults with the given limits applied
func WithOverrides(generateLimit int64, generateWindow int, lookupLimit int64) map[Action]ActionConfig {
	out := make(map[Action]ActionConfig, len(DefaultActionConfigs))
	for k, v := range DefaultActionConfigs {
		out[k] = v
	}

	if generateLimit > 0 && generateWindow > 0 {
		cfg := out[ActionGenerate]
		cfg.Limit = generateLimit
		cfg.WindowSeconds = generateWindow
		out[ActionGenerate] = cfg
	}
	if lookupLimit > 0 {
		cfg := out[ActionLookup]
		cfg.Limit = lookupLimit
		out[ActionLookup] = cfg
	}
	return out
}
