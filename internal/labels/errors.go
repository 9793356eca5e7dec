package labels

import "fmt"

// CategoryFileError reports a category-name file that could not be read or
// parsed.
type CategoryFileError struct {
	Path string
	Err  error
}

func (e *CategoryFileError) Error() string {
	return fmt.Sprintf("failed to load category names %s: %v", e.Path, e.Err)
}

func (e *CategoryFileError) Unwrap() error { return e.Err }

// MissingCategoryNameError is returned when a predicted class has no display
// name in the supplied mapping.
type MissingCategoryNameError struct {
	ClassID string
}

func (e *MissingCategoryNameError) Error() string {
	return fmt.Sprintf("no category name for class %q", e.ClassID)
}

// UnknownIndexError is returned when the model scores an index the class
// mapping does not know.
type UnknownIndexError struct {
	Index int
}

func (e *UnknownIndexError) Error() string {
	return fmt.Sprintf("no class for model output index %d", e.Index)
}
