package core

import (
	"fmt"
	"strings"

	"github.com/valter-silva-au/bounty-board/pkg/models"
)

// generateDeveloperName builds a placeholder display name for a developer
// provisioned from an unseen assignedTo id. Candidates are tried in order
// ("Developer <slug>", "Dev <slug>", capitalized variants) and the first
// case-insensitively unique one wins; if all collide, numeric suffixes
// are appended until a free name is found.
func generateDeveloperName(id string, existing []models.Developer) string {
	slug := idSlug(id)
	candidates := []string{
		"Developer " + slug,
		"Dev " + slug,
		"Developer " + titleSlug(slug),
		"Dev " + titleSlug(slug),
	}
	for _, c := range candidates {
		if nameAvailable(existing, c, "") {
			return c
		}
	}
	for n := 2; ; n++ {
		c := fmt.Sprintf("Developer %s %d", slug, n)
		if nameAvailable(existing, c, "") {
			return c
		}
	}
}

// idSlug turns an identifier like "jane_doe-2" into "jane doe 2".
func idSlug(id string) string {
	replaced := strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(id)
	fields := strings.Fields(replaced)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.Join(fields, " ")
}

// titleSlug capitalizes the first letter of each word.
func titleSlug(slug string) string {
	words := strings.Fields(slug)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
