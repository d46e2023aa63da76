package output

import (
	"encoding/json"
	"os"
)

// SaveJSON writes an indented JSON document of v to filepath
func SaveJSON(v any, filepath string) error {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, append(content, '\n'), 0644)
}
