package countries

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed data/countries.json
var localData []byte

// LoadLocal parses the embedded fallback dataset, keyed by lowercase name
func LoadLocal() (map[string]Info, error) {
	return parseLocal(localData)
}

func parseLocal(data []byte) (map[string]Info, error) {
	var raw map[string]Info
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse local country data: %w", err)
	}

	countries := make(map[string]Info, len(raw))
	for name, info := range raw {
		if info.Name == "" {
			info.Name = name
		}
		info.Refresh()
		countries[strings.ToLower(name)] = info
	}
	return countries, nil
}
