package mask

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaskDate formats a date progressively as DD/MM/YYYY
func MaskDate(value string) string {
	n := capDigits(value, 8)

	switch {
	case len(n) <= 2:
		return n
	case len(n) <= 4:
		return n[:2] + "/" + n[2:]
	default:
		return n[:2] + "/" + n[2:4] + "/" + n[4:]
	}
}

// UnmaskDate removes the date formatting
func UnmaskDate(value string) string {
	return Digits(value)
}

// DateToISO converts DD/MM/YYYY into YYYY-MM-DD. It returns "" unless the
// input carries exactly 8 digits.
func DateToISO(br string) string {
	n := Digits(br)
	if len(n) != 8 {
		return ""
	}
	return n[4:8] + "-" + n[2:4] + "-" + n[:2]
}

// DateToBR converts YYYY-MM-DD into DD/MM/YYYY
func DateToBR(iso string) string {
	if iso == "" {
		return ""
	}
	// Accept full timestamps such as 2024-01-31T10:00:00Z
	if i := strings.IndexByte(iso, 'T'); i > 0 {
		iso = iso[:i]
	}
	parts := strings.Split(iso, "-")
	if len(parts) != 3 {
		return ""
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// IsValidDate checks a DD/MM/YYYY date for ranges and calendar validity
func IsValidDate(br string) bool {
	n := Digits(br)
	if len(n) != 8 {
		return false
	}

	day, _ := strconv.Atoi(n[:2])
	month, _ := strconv.Atoi(n[2:4])
	year, _ := strconv.Atoi(n[4:8])

	if month < 1 || month > 12 {
		return false
	}
	if day < 1 || day > 31 {
		return false
	}
	if year < 1900 || year > 2100 {
		return false
	}

	// time.Date normalises overflow (31/02 becomes 03/03), so a round trip detects it
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

// Age returns the completed years between an ISO birth date and now
func Age(birthISO string, now time.Time) (int, error) {
	birth, err := time.Parse("2006-01-02", birthISO)
	if err != nil {
		return 0, fmt.Errorf("invalid birth date %q: %w", birthISO, err)
	}

	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age, nil
}

// IsAdult reports whether the person born at birthISO is at least 18 at now
func IsAdult(birthISO string, now time.Time) bool {
	age, err := Age(birthISO, now)
	return err == nil && age >= 18
}
