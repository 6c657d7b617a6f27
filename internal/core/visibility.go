package core

import (
	"fmt"
	"sort"
	"strings"
)

// Tier is a subscription tier that may see a record.
type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

var tierRank = map[Tier]int{
	TierFree:       0,
	TierPro:        1,
	TierEnterprise: 2,
}

// DefaultVisibility is the tier set stamped on a record when the run has no
// override.
var DefaultVisibility = VisibilityTierSet{TierFree}

// VisibilityTierSet is a sorted, duplicate-free set of tiers.
type VisibilityTierSet []Tier

// ParseTiers builds a tier set from names. Names are case-insensitive;
// duplicates collapse. An unknown name is an error.
func ParseTiers(names ...string) (VisibilityTierSet, error) {
	seen := make(map[Tier]bool, len(names))
	set := make(VisibilityTierSet, 0, len(names))

	for _, name := range names {
		t := Tier(strings.ToLower(strings.TrimSpace(name)))
		if t == "" {
			continue
		}
		if _, ok := tierRank[t]; !ok {
			return nil, fmt.Errorf("unknown visibility tier %q", name)
		}
		if !seen[t] {
			seen[t] = true
			set = append(set, t)
		}
	}

	sort.Slice(set, func(i, j int) bool { return tierRank[set[i]] < tierRank[set[j]] })
	return set, nil
}

// Has reports whether the set contains t.
func (s VisibilityTierSet) Has(t Tier) bool {
	for _, v := range s {
		if v == t {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the set.
func (s VisibilityTierSet) Clone() VisibilityTierSet {
	if s == nil {
		return nil
	}
	out := make(VisibilityTierSet, len(s))
	copy(out, s)
	return out
}

// Strings returns the tier names in order.
func (s VisibilityTierSet) Strings() []string {
	out := make([]string, len(s))
	for i, t := range s {
		out[i] = string(t)
	}
	return out
}

func (s VisibilityTierSet) String() string {
	return "{" + strings.Join(s.Strings(), ",") + "}"
}

// EffectiveVisibility returns override when it is non-empty and
// DefaultVisibility otherwise.
func EffectiveVisibility(override VisibilityTierSet) VisibilityTierSet {
	if len(override) > 0 {
		return override
	}
	return DefaultVisibility
}

// Tag returns a copy of draft carrying the run's effective tier set.
func Tag(draft EntityDraft, override VisibilityTierSet) EntityDraft {
	return draft.withVisibility(EffectiveVisibility(override))
}
