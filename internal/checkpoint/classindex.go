package checkpoint

import (
	"fmt"
	"sort"
)

// ClassIndex maps the model's internal output index to the class identifier
// it was trained with. The zero value has no classes.
type ClassIndex struct {
	ids []string
}

// NewClassIndex inverts a class_to_idx mapping. The indices must cover
// 0..n-1 exactly once.
func NewClassIndex(classToIdx map[string]int) (ClassIndex, error) {
	if len(classToIdx) == 0 {
		return ClassIndex{}, fmt.Errorf("%w: no classes", ErrInvalidClassIndex)
	}

	ids := make([]string, len(classToIdx))
	seen := make([]bool, len(classToIdx))

	// iterate in key order so errors are reproducible
	keys := make([]string, 0, len(classToIdx))
	for k := range classToIdx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, id := range keys {
		idx := classToIdx[id]
		if idx < 0 || idx >= len(ids) {
			return ClassIndex{}, fmt.Errorf("%w: class %q has index %d outside [0,%d)",
				ErrInvalidClassIndex, id, idx, len(ids))
		}
		if seen[idx] {
			return ClassIndex{}, fmt.Errorf("%w: index %d assigned to %q and %q",
				ErrInvalidClassIndex, idx, ids[idx], id)
		}
		seen[idx] = true
		ids[idx] = id
	}

	return ClassIndex{ids: ids}, nil
}

// Len returns the number of classes.
func (c ClassIndex) Len() int { return len(c.ids) }

// ClassID returns the identifier for an internal index.
func (c ClassIndex) ClassID(idx int) (string, bool) {
	if idx < 0 || idx >= len(c.ids) {
		return "", false
	}
	return c.ids[idx], true
}
