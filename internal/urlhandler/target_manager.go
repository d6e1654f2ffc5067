package urlhandler

import (
	"strings"

	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"github.com/rs/zerolog"
)

// TargetSet is the outcome of loading manual URLs.
// URLs holds valid entries, de-duplicated with first occurrence kept.
type TargetSet struct {
	URLs    []string
	Invalid []*errorwrapper.ValidationError
	Source  string
}

// TargetManager validates manually supplied page URLs
type TargetManager struct {
	logger zerolog.Logger
}

// NewTargetManager creates a new TargetManager instance
func NewTargetManager(logger zerolog.Logger) *TargetManager {
	return &TargetManager{
		logger: logger.With().Str("component", "TargetManager").Logger(),
	}
}

// LoadFromFile reads a URL list file and validates every line
func (tm *TargetManager) LoadFromFile(filePath string) (*TargetSet, error) {
	lines, err := ReadLinesFromFile(filePath, tm.logger)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to load URLs from file '"+filePath+"'")
	}

	set := tm.Validate(lines)
	set.Source = filePath
	return set, nil
}

// LoadFromText validates newline-separated URLs
func (tm *TargetManager) LoadFromText(text string) *TargetSet {
	lines, _ := ReadLines(strings.NewReader(text))
	set := tm.Validate(lines)
	set.Source = "manual"
	return set
}

// Validate keeps well-formed absolute URLs. Malformed entries are reported individually
// and excluded; they never abort the batch.
func (tm *TargetManager) Validate(lines []string) *TargetSet {
	set := &TargetSet{}
	seen := make(map[string]struct{}, len(lines))

	for _, line := range lines {
		candidate := strings.TrimSpace(line)
		if candidate == "" {
			continue
		}

		if err := ValidateURLFormat(candidate); err != nil {
			verr := errorwrapper.NewValidationError("url", candidate, err.Error())
			tm.logger.Warn().Str("url", candidate).Msg("Invalid URL, skipping")
			set.Invalid = append(set.Invalid, verr)
			continue
		}

		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		set.URLs = append(set.URLs, candidate)
	}

	tm.logger.Info().
		Int("valid", len(set.URLs)).
		Int("invalid", len(set.Invalid)).
		Msg("Manual URLs validated")

	return set
}
