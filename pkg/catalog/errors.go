package catalog

import "fmt"

// MissingEntityError reports a lookup of an entity that the catalog does not have.
// Owner names the entity that was searched, for operator diagnosis.
type MissingEntityError struct {
	Kind  string
	ID    string
	Owner string
}

func (e *MissingEntityError) Error() string {
	if e.Owner == "" {
		return fmt.Sprintf("catalog has no %s %s", e.Kind, e.ID)
	}
	return fmt.Sprintf("%s has no %s %s", e.Owner, e.Kind, e.ID)
}
