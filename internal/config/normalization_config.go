package config

// NormalizationConfig selects the rules applied before comparing a page URL
// with its declared canonical URL.
type NormalizationConfig struct {
	ForceHTTPS          bool `json:"force_https" yaml:"force_https"`
	RemoveTrailingSlash bool `json:"remove_trailing_slash" yaml:"remove_trailing_slash"`
	IgnoreQueryParams   bool `json:"ignore_query_params" yaml:"ignore_query_params"`
}

// NewDefaultNormalizationConfig creates default normalization configuration
func NewDefaultNormalizationConfig() NormalizationConfig {
	return NormalizationConfig{
		ForceHTTPS:          DefaultForceHTTPS,
		RemoveTrailingSlash: DefaultRemoveTrailingSlash,
		IgnoreQueryParams:   DefaultIgnoreQueryParams,
	}
}
