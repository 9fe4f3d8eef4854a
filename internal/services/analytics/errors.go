package analytics

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord is matched by every *RecordError via errors.Is.
	ErrMalformedRecord = errors.New("malformed snapshot record")
	// ErrInvalidConfig is matched by every *ConfigError via errors.Is.
	ErrInvalidConfig = errors.New("invalid analytics config")
)

// RecordError reports a validation failure attributable to one record.
type RecordError struct {
	AssetID string
	Field   string
	Reason  string
}

func (e *RecordError) Error() string {
	id := e.AssetID
	if id == "" {
		id = "<unknown>"
	}
	return fmt.Sprintf("record %s: %s: %s", id, e.Field, e.Reason)
}

func (e *RecordError) Is(target error) bool { return target == ErrMalformedRecord }

// ConfigError reports an invalid threshold or venue setting.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Option, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }
