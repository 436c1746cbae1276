package pipeline

import (
	"fmt"
	"strings"
)

// Format selects how the narrative artifact is rendered.
type Format string

const (
	FormatSingleBlock  Format = "single_block"
	FormatRolePrefixed Format = "role_prefixed"
)

// Metadata summarizes the rendered narrative.
type Metadata struct {
	TotalSpeakers     int          `json:"totalSpeakers"`
	TotalTurns        int          `json:"totalTurns"`
	PerRoleTurnCounts map[Role]int `json:"perRoleTurnCounts"`
}

// Artifact is the final rendered narrative. Derived wholesale from the
// cleaned turn sequence, never patched incrementally.
type Artifact struct {
	Format   Format   `json:"format"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Render builds the narrative artifact from the cleaned, role-mapped
// turn sequence. A single distinct role yields one block of turn texts
// joined by spaces; two or more roles yield "<ROLE>: <text>" blocks
// separated by a blank line, in the order roles first appear.
func Render(turns []Turn, roles RoleMap) Artifact {
	meta := Metadata{
		TotalSpeakers:     roles.DistinctSpeakers(),
		TotalTurns:        len(turns),
		PerRoleTurnCounts: make(map[Role]int),
	}

	var roleOrder []Role
	grouped := make(map[Role][]string)
	for _, t := range turns {
		role := roles.RoleFor(t.Speaker)
		meta.PerRoleTurnCounts[role]++
		if _, seen := grouped[role]; !seen {
			roleOrder = append(roleOrder, role)
		}
		grouped[role] = append(grouped[role], t.Text)
	}

	if len(roleOrder) <= 1 {
		var content string
		if len(roleOrder) == 1 {
			content = strings.Join(grouped[roleOrder[0]], " ")
		}
		return Artifact{Format: FormatSingleBlock, Content: content, Metadata: meta}
	}

	blocks := make([]string, 0, len(roleOrder))
	for _, role := range roleOrder {
		blocks = append(blocks, fmt.Sprintf("%s: %s", role, strings.Join(grouped[role], " ")))
	}
	return Artifact{
		Format:   FormatRolePrefixed,
		Content:  strings.Join(blocks, "\n\n"),
		Metadata: meta,
	}
}
