package entry

import (
	"strings"

	"github.com/google/uuid"
)

// DuplicateGroup lists entries sharing an identical trimmed name
type DuplicateGroup struct {
	Name  string      `json:"name"`
	IDs   []uuid.UUID `json:"ids"`
	Count int         `json:"count"`
}

// FindDuplicateGroups groups pairs by exact trimmed-name equality and returns
// every group with two or more members. Blank names never count toward
// duplication. Matching is case-sensitive, with no normalization of
// full-width/half-width characters or internal whitespace.
// Groups come back in order of first appearance, member IDs in input order.
func FindDuplicateGroups(pairs []NamePair) []DuplicateGroup {
	byName := make(map[string][]uuid.UUID, len(pairs))
	order := make([]string, 0, len(pairs))

	for _, p := range pairs {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		if _, seen := byName[name]; !seen {
			order = append(order, name)
		}
		byName[name] = append(byName[name], p.ID)
	}

	groups := make([]DuplicateGroup, 0)
	for _, name := range order {
		ids := byName[name]
		if len(ids) < 2 {
			continue
		}
		groups = append(groups, DuplicateGroup{
			Name:  name,
			IDs:   ids,
			Count: len(ids),
		})
	}
	return groups
}
