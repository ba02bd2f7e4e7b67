package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Duration хранится в БД в миллисекундах, в JSON передаётся строкой вида "5m0s".
// Числа в JSON трактуются как секунды.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case nil:
		*d = 0
	case float64:
		*d = Duration(time.Duration(val * float64(time.Second)))
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", val, err)
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

func (d Duration) Value() (driver.Value, error) {
	return time.Duration(d).Milliseconds(), nil
}

func (d *Duration) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = 0
	case int64:
		*d = Duration(time.Duration(v) * time.Millisecond)
	case []byte:
		var ms int64
		if _, err := fmt.Sscan(string(v), &ms); err != nil {
			return fmt.Errorf("scan duration: %w", err)
		}
		*d = Duration(time.Duration(ms) * time.Millisecond)
	default:
		return fmt.Errorf("scan duration: unsupported type %T", src)
	}
	return nil
}
