package policy

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// PauseTier grants MaxPauses to plans lasting at least MinMonths.
type PauseTier struct {
	MinMonths int `yaml:"min_months"`
	MaxPauses int `yaml:"max_pauses"`
}

// PausePolicy maps a plan duration to the number of pauses allowed over the
// membership's lifetime.
type PausePolicy struct {
	tiers []PauseTier
}

type pauseFile struct {
	PauseTiers []PauseTier `yaml:"pause_tiers"`
}

var ErrInvalidTier = errors.New("invalid pause tier")

func NewPausePolicy(tiers []PauseTier) (*PausePolicy, error) {
	sorted := make([]PauseTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinMonths < sorted[j].MinMonths })

	for i, t := range sorted {
		if t.MinMonths <= 0 || t.MaxPauses < 0 {
			return nil, fmt.Errorf("%w: %+v", ErrInvalidTier, t)
		}
		if i > 0 && sorted[i-1].MinMonths == t.MinMonths {
			return nil, fmt.Errorf("%w: duplicate min_months %d", ErrInvalidTier, t.MinMonths)
		}
	}
	return &PausePolicy{tiers: sorted}, nil
}

// MaxPauses is total: a nil duration or one below the first tier gets 0.
func (p *PausePolicy) MaxPauses(durationMonths *int) int {
	if p == nil || durationMonths == nil {
		return 0
	}
	max := 0
	for _, t := range p.tiers {
		if *durationMonths >= t.MinMonths {
			max = t.MaxPauses
		}
	}
	return max
}

func (p *PausePolicy) Tiers() []PauseTier {
	out := make([]PauseTier, len(p.tiers))
	copy(out, p.tiers)
	return out
}

// Parse reads the inline form "months:pauses,months:pauses".
func Parse(table string) (*PausePolicy, error) {
	var tiers []PauseTier
	for _, part := range strings.Split(table, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		months, pauses, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTier, part)
		}
		m, err := strconv.Atoi(strings.TrimSpace(months))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTier, part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(pauses))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTier, part)
		}
		tiers = append(tiers, PauseTier{MinMonths: m, MaxPauses: n})
	}
	return NewPausePolicy(tiers)
}

func ParseYAML(data []byte) (*PausePolicy, error) {
	var f pauseFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse pause policy: %w", err)
	}
	return NewPausePolicy(f.PauseTiers)
}

// Load prefers the YAML file when path is set and falls back to the inline form.
func Load(path, inline string) (*PausePolicy, error) {
	if path == "" {
		return Parse(inline)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pause policy: %w", err)
	}
	return ParseYAML(data)
}
