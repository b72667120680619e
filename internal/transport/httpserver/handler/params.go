package handler

import (
	"fmt"
	"strings"
	"time"

	ledgerdomain "rep-ledger-go/internal/domain/ledger"
)

func parseDateRequired(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	return time.Parse("2006-01-02", value)
}

// parsePeriod reads a "YYYY-MM" billing period.
func parsePeriod(value string) (ledgerdomain.Period, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return ledgerdomain.Period{}, fmt.Errorf("period is required")
	}
	parsed, err := time.Parse("2006-01", value)
	if err != nil {
		return ledgerdomain.Period{}, err
	}
	return ledgerdomain.Period{Year: parsed.Year(), Month: int(parsed.Month())}, nil
}
