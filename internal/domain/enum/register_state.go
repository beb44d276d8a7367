package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// RegisterState is the lifecycle state of a cash register
type RegisterState int

const (
	RegisterStateOpen   RegisterState = 0
	RegisterStateClosed RegisterState = 1
)

func (s RegisterState) String() string {
	switch s {
	case RegisterStateOpen:
		return "OPEN"
	case RegisterStateClosed:
		return "CLOSED"
	}
	return fmt.Sprintf("RegisterState(%d)", int(s))
}

func (s RegisterState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *RegisterState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = RegisterState(i)
		return nil
	}
	switch str {
	case "OPEN":
		*s = RegisterStateOpen
	case "CLOSED":
		*s = RegisterStateClosed
	default:
		return fmt.Errorf("unknown register state %q", str)
	}
	return nil
}

func (s RegisterState) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *RegisterState) Scan(value interface{}) error {
	if value == nil {
		*s = RegisterStateOpen
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = RegisterState(v)
	case int32:
		*s = RegisterState(v)
	case int:
		*s = RegisterState(v)
	}
	return nil
}
