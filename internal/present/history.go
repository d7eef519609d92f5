package present

import (
	"fmt"

	"github.com/google/uuid"

	"taskboard/internal/models"
)

// RenderHistory maps an audit entry to a human-readable sentence.
// Assignment changes get dedicated wording, with a self-assignment
// from unassigned rendered as a claim.
func RenderHistory(e *models.HistoryEntry, dir ProfileLookup) string {
	actor := DisplayLabel(e.ChangedBy, dir)

	switch e.FieldChanged {
	case "status":
		return fmt.Sprintf("%s changed status to %s", actor, models.Status(strVal(e.NewValue)).Human())

	case "assigned_to":
		oldSet := isSet(e.OldValue)
		newSet := isSet(e.NewValue)
		switch {
		case !oldSet:
			if strVal(e.NewValue) == e.ChangedBy.String() {
				return actor + " claimed this task"
			}
			return fmt.Sprintf("%s assigned to %s", actor, userLabel(strVal(e.NewValue), dir))
		case !newSet:
			return actor + " unassigned this task"
		default:
			return fmt.Sprintf("%s reassigned to %s", actor, userLabel(strVal(e.NewValue), dir))
		}

	default:
		return fmt.Sprintf("%s updated %s to %s", actor, e.FieldChanged, strVal(e.NewValue))
	}
}

// isSet treats nil, "" and the literal "null" as absent; some audit
// writers serialize SQL NULL as the string "null".
func isSet(v *string) bool {
	return v != nil && *v != "" && *v != "null"
}

func strVal(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// userLabel resolves a serialized user id from an audit value.
func userLabel(value string, dir ProfileLookup) string {
	if value == "" || value == "null" {
		return "Unassigned"
	}
	id, err := uuid.Parse(value)
	if err != nil {
		if len(value) > 8 {
			value = value[:8]
		}
		return "User " + value
	}
	return DisplayLabel(id, dir)
}
