package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateReceiptNo generates a unique receipt number, e.g. R-20240131-1A2B3C4D
func GenerateReceiptNo(at time.Time) string {
	return "R-" + at.Format("20060102") + "-" + strings.ToUpper(uuid.New().String()[:8])
}
