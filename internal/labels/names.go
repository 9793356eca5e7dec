package labels

import (
	"encoding/json"
	"os"
)

// CategoryNames maps class identifiers to display names. A nil map means no
// mapping was supplied.
type CategoryNames map[string]string

// LoadCategoryNames reads a JSON object of class identifier to display name.
func LoadCategoryNames(path string) (CategoryNames, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CategoryFileError{Path: path, Err: err}
	}

	names := CategoryNames{}
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, &CategoryFileError{Path: path, Err: err}
	}
	return names, nil
}
