package utils

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONBValue marshals v for a JSONB column.
func JSONBValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSONB value: %w", err)
	}
	return b, nil
}

// ScanJSONB decodes a JSONB column into dest. A NULL leaves dest untouched.
func ScanJSONB(value any, dest any, typeName string) error {
	if value == nil {
		return nil
	}

	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("%s: Scan failed, expected []byte but got %T", typeName, value)
	}

	return json.Unmarshal(b, dest)
}
