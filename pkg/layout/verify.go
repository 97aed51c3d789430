package layout

import (
	"slices"

	"github.com/matzehuels/tavola/pkg/catalog"
)

// Coverage compares the items handed to placement with what a plan placed.
type Coverage struct {
	Expected   int      `json:"expected"`
	Placed     int      `json:"placed"`
	Missing    []string `json:"missing,omitempty"`
	Duplicated []string `json:"duplicated,omitempty"`
}

// Complete reports whether every item was placed exactly once.
func (c Coverage) Complete() bool {
	return len(c.Missing) == 0 && len(c.Duplicated) == 0
}

// Verify checks that each item appears in plan exactly once.
func Verify(items []catalog.Item, plan *Plan) Coverage {
	seen := make(map[string]int, len(items))
	for _, e := range plan.Placements {
		seen[e.Name]++
	}

	c := Coverage{Expected: len(items), Placed: len(plan.Placements)}
	for _, it := range items {
		switch n := seen[it.Name]; {
		case n == 0:
			c.Missing = append(c.Missing, it.Name)
		case n > 1:
			c.Duplicated = append(c.Duplicated, it.Name)
		}
	}
	slices.Sort(c.Missing)
	slices.Sort(c.Duplicated)
	return c
}
