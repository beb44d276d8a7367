package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// MovementType tells whether a cash movement adds to or takes from the drawer
type MovementType string

const (
	MovementTypeIncome  MovementType = "INCOME"
	MovementTypeExpense MovementType = "EXPENSE"
)

// ParseMovementType accepts the type name in any case
func ParseMovementType(s string) (MovementType, bool) {
	t := MovementType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Valid reports whether t is INCOME or EXPENSE
func (t MovementType) Valid() bool {
	return t == MovementTypeIncome || t == MovementTypeExpense
}

func (t MovementType) String() string {
	return string(t)
}

func (t MovementType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid movement type %q", string(t))
	}
	return string(t), nil
}

func (t *MovementType) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*t = MovementType(v)
	case []byte:
		*t = MovementType(v)
	default:
		return fmt.Errorf("cannot scan %T into MovementType", value)
	}
	return nil
}

func (t *MovementType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*t = MovementType(strings.ToUpper(strings.TrimSpace(str)))
	return nil
}
