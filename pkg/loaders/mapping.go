package loaders

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadNameMapping reads a JSON object and returns its keys in file order.
// The values are not interpreted; only the key order names the points.
func LoadNameMapping(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open name mapping: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)

	token, err := decoder.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read name mapping %s: %w", filename, err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("name mapping %s must be a JSON object", filename)
	}

	var names []string
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read name mapping key: %w", err)
		}
		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in name mapping", token)
		}

		var value json.RawMessage
		if err := decoder.Decode(&value); err != nil {
			return nil, fmt.Errorf("failed to read value for %q: %w", key, err)
		}
		names = append(names, key)
	}

	return names, nil
}
