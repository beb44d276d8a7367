package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// SaleStatus represents the status of a sale
type SaleStatus int

const (
	SaleStatusPaid      SaleStatus = 0
	SaleStatusPending   SaleStatus = 1
	SaleStatusCancelled SaleStatus = 2
)

func (s SaleStatus) String() string {
	names := [...]string{"PAID", "PENDING", "CANCELLED"}
	if int(s) < 0 || int(s) >= len(names) {
		return "PAID"
	}
	return names[s]
}

func (s SaleStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SaleStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = SaleStatus(i)
		return nil
	}
	switch str {
	case "PAID":
		*s = SaleStatusPaid
	case "PENDING":
		*s = SaleStatusPending
	case "CANCELLED":
		*s = SaleStatusCancelled
	}
	return nil
}

func (s SaleStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *SaleStatus) Scan(value interface{}) error {
	if value == nil {
		*s = SaleStatusPaid
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = SaleStatus(v)
	case int:
		*s = SaleStatus(v)
	}
	return nil
}

// SaleType distinguishes sales paid on the spot from sales on credit
type SaleType string

const (
	SaleTypeCash   SaleType = "CASH"
	SaleTypeCredit SaleType = "CREDIT"
)

// Valid reports whether t is a known sale type
func (t SaleType) Valid() bool {
	return t == SaleTypeCash || t == SaleTypeCredit
}
