package shared

import (
	"encoding/json"
	"fmt"
)

// DbType names a persistence backend
type DbType string

const (
	DbTypePostgres DbType = "postgres"
	DbTypeMemory   DbType = "memory"
)

func (t DbType) String() string {
	return string(t)
}

// IsValid reports whether t is a backend the factory knows how to build.
func (t DbType) IsValid() bool {
	switch t {
	case DbTypePostgres, DbTypeMemory:
		return true
	}
	return false
}

// UnmarshalJSON rejects empty backend names early.
func (t *DbType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return fmt.Errorf("db_type cannot be empty")
	}
	*t = DbType(s)
	return nil
}

// DbProviderConfig is the JSON document used to select and configure a backend
type DbProviderConfig struct {
	DbType       DbType                 `json:"db_type"`
	ExtraDetails map[string]interface{} `json:"extra_details"`
}

// String returns the extra detail under key, or "" when absent or not a string.
func (c DbProviderConfig) String(key string) string {
	v, _ := c.ExtraDetails[key].(string)
	return v
}

// Int returns the extra detail under key as an int, or fallback.
func (c DbProviderConfig) Int(key string, fallback int) int {
	switch v := c.ExtraDetails[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}
