// Package valueobject holds small value types shared by entities and stored as
// database columns.
package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnsupportedScanType is returned when a column value is not JSON text or an already decoded object.
var ErrUnsupportedScanType = errors.New("valueobject: unsupported scan type for JSONMap")

// JSONMap is a JSON object column (jsonb).
type JSONMap map[string]any

// Value implements driver.Valuer.
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner.
func (j *JSONMap) Scan(value any) error {
	var raw []byte

	switch v := value.(type) {
	case nil:
		*j = JSONMap{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case map[string]any:
		*j = JSONMap(v)
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedScanType, value)
	}

	if len(raw) == 0 {
		*j = JSONMap{}
		return nil
	}

	result := JSONMap{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("valueobject: decode JSONMap: %w", err)
	}

	*j = result
	return nil
}

// GetString returns the string at key, or "" when missing or not a string.
func (j JSONMap) GetString(key string) string {
	v, _ := j[key].(string)
	return v
}
