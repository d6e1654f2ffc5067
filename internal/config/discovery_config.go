package config

// DiscoveryConfig defines how robots.txt and sitemap candidates are fetched.
// Zero values fall back to the processing settings.
type DiscoveryConfig struct {
	UserAgent      string   `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"omitempty,min=1,max=120"`
	WellKnownPaths []string `json:"well_known_paths,omitempty" yaml:"well_known_paths,omitempty" validate:"dive,startswith=/"`
	CheckRobots    bool     `json:"check_robots" yaml:"check_robots"`
}

// NewDefaultDiscoveryConfig creates default discovery configuration
func NewDefaultDiscoveryConfig() DiscoveryConfig {
	paths := make([]string, len(DefaultWellKnownPaths))
	copy(paths, DefaultWellKnownPaths)
	return DiscoveryConfig{
		WellKnownPaths: paths,
		CheckRobots:    true,
	}
}
