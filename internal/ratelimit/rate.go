package ratelimit

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rate is a quota of Limit requests per Period.
type Rate struct {
	Limit  int64
	Period time.Duration
}

func (r Rate) String() string {
	return fmt.Sprintf("%d per %s", r.Limit, r.Period)
}

var units = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
}

// ParseRate accepts "4 per minute", "4/minute", "200 per day" and
// "10 per 5 minutes".
func ParseRate(raw string) (Rate, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	var countPart, periodPart string
	if i := strings.Index(s, "/"); i >= 0 {
		countPart, periodPart = s[:i], s[i+1:]
	} else if i := strings.Index(s, " per "); i >= 0 {
		countPart, periodPart = s[:i], s[i+len(" per "):]
	} else {
		return Rate{}, fmt.Errorf("invalid rate %q", raw)
	}

	limit, err := strconv.ParseInt(strings.TrimSpace(countPart), 10, 64)
	if err != nil || limit <= 0 {
		return Rate{}, fmt.Errorf("invalid rate %q: bad count", raw)
	}

	fields := strings.Fields(periodPart)
	multiplier := int64(1)
	switch len(fields) {
	case 1:
	case 2:
		multiplier, err = strconv.ParseInt(fields[0], 10, 64)
		if err != nil || multiplier <= 0 {
			return Rate{}, fmt.Errorf("invalid rate %q: bad period", raw)
		}
		fields = fields[1:]
	default:
		return Rate{}, fmt.Errorf("invalid rate %q: bad period", raw)
	}

	unit, ok := units[strings.TrimSuffix(fields[0], "s")]
	if !ok {
		return Rate{}, fmt.Errorf("invalid rate %q: unknown unit %q", raw, fields[0])
	}
	return Rate{Limit: limit, Period: time.Duration(multiplier) * unit}, nil
}

func ParseRates(raw []string) ([]Rate, error) {
	rates := make([]Rate, 0, len(raw))
	for _, r := range raw {
		rate, err := ParseRate(r)
		if err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, nil
}
