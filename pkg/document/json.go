package document

import (
	"encoding/json"
	"fmt"
	"io"
)

func encodeJSON(w io.Writer, d *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("document: encode json: %w", err)
	}
	return nil
}

// decodeJSON reads a current or legacy JSON document. A file with neither a
// version nor a node list is treated as legacy and migrated.
func decodeJSON(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("document: read: %w", err)
	}

	var shape map[string]json.RawMessage
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("document: decode json: %w", err)
	}
	_, hasVersion := shape["version"]
	_, hasNodes := shape["nodes"]
	if !hasVersion && !hasNodes {
		var legacy LegacyDocument
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, fmt.Errorf("document: decode legacy json: %w", err)
		}
		return Migrate(&legacy), nil
	}

	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("document: decode json: %w", err)
	}
	if d.Version == 0 {
		d.Version = CurrentVersion
	}
	return &d, nil
}
