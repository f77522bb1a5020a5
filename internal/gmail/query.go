package gmail

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// DefaultSender is used when the operator leaves the sender field empty.
const DefaultSender = "noreply@kb.se"

// BuildQuery assembles a Gmail search query for attachment mails from a
// sender within an inclusive date range. Gmail's before: operator is
// exclusive, so the end date (or the start date for single-day searches)
// is pushed one day forward. Dates are YYYY-MM-DD; both may be empty.
func BuildQuery(sender, startDate, endDate string) (string, error) {
	var parts []string

	if sender == "" {
		sender = DefaultSender
	}
	parts = append(parts, "from:"+sender)

	if startDate != "" {
		if _, err := time.Parse(dateLayout, startDate); err != nil {
			return "", fmt.Errorf("invalid start date %q", startDate)
		}
		parts = append(parts, "after:"+startDate)
	}

	switch {
	case endDate != "" && endDate != startDate:
		next, err := nextDay(endDate)
		if err != nil {
			return "", fmt.Errorf("invalid end date %q", endDate)
		}
		parts = append(parts, "before:"+next)
	case startDate != "":
		// Single-day search: include the whole start day.
		next, err := nextDay(startDate)
		if err != nil {
			return "", fmt.Errorf("invalid start date %q", startDate)
		}
		parts = append(parts, "before:"+next)
	}

	parts = append(parts, "has:attachment")
	return strings.Join(parts, " "), nil
}

func nextDay(date string) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, 1).Format(dateLayout), nil
}
