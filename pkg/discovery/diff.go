package discovery

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/google/go-cmp/cmp"
)

// seqField is left out when documents are compared.
const seqField = "seq"

// Changed reports whether two encoded documents differ in anything but their
// sequence number. A nil previous document counts as an empty object.
// Array order is significant.
func Changed(previous, current []byte) (bool, error) {
	if previous == nil {
		previous = []byte("{}")
	}
	var old, cur any
	if err := json.Unmarshal(previous, &old); err != nil {
		return true, nil
	}
	if err := json.Unmarshal(current, &cur); err != nil {
		return false, err
	}
	oldMap, ok1 := old.(map[string]any)
	curMap, ok2 := cur.(map[string]any)
	if !ok1 || !ok2 {
		return true, nil
	}
	delete(oldMap, seqField)
	delete(curMap, seqField)
	return !cmp.Equal(oldMap, curMap), nil
}

// ChangedSince compares the file written for next with the one written for previous.
func (w *Writer) ChangedSince(f File, previous, next int) (bool, error) {
	cur, err := w.Read(f, next)
	if err != nil {
		return false, err
	}
	old, err := w.Read(f, previous)
	if errors.Is(err, os.ErrNotExist) {
		old = nil
	} else if err != nil {
		return false, err
	}
	return Changed(old, cur)
}
