package present

import (
	"fmt"

	"github.com/google/uuid"

	"taskboard/internal/models"
)

// ProfileLookup is the read side of the profile directory.
type ProfileLookup interface {
	Lookup(id uuid.UUID) (*models.Profile, bool)
}

// DisplayLabel resolves a user id to a human label. The fallback chain
// is display name, then a role-derived label, then the truncated id;
// it is total and never yields an empty string.
func DisplayLabel(id uuid.UUID, dir ProfileLookup) string {
	if dir != nil {
		if p, ok := dir.Lookup(id); ok {
			if p.DisplayName != nil && *p.DisplayName != "" {
				return *p.DisplayName
			}
			if p.Role != "" {
				return fmt.Sprintf("Staff (%s)", p.Role)
			}
		}
	}
	return shortID(id.String())
}

func shortID(raw string) string {
	if len(raw) > 8 {
		raw = raw[:8]
	}
	return "User " + raw
}
