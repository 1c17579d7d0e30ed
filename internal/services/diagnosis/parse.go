package diagnosis

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"taxfree-engine/internal/models"
)

var (
	// "under-24M", "over-150M": M is a million won, i.e. 100 man-won
	millionPattern = regexp.MustCompile(`(\d+\.?\d*)m`)
	// "1.5억": 억 is 10,000 man-won
	eokPattern = regexp.MustCompile(`(\d+\.?\d*)억`)
	// "3천만": 천만 is 1,000 man-won
	cheonmanPattern = regexp.MustCompile(`(\d+\.?\d*)천만`)
)

// ParseRevenueString converts a legacy revenue encoding to man-won.
// Plain decimal numbers (thousands separators and exponents allowed) are taken as
// man-won. Hex integers like "0x10" and anything else unparseable yield 0.
// Results saturate at MaxRevenue.
func ParseRevenueString(value string) int {
	s := strings.ToLower(strings.TrimSpace(value))

	if n, ok := parsePlainNumber(s); ok {
		return n
	}

	if m := millionPattern.FindStringSubmatch(s); m != nil {
		return scaleAmount(m[1], 100)
	}
	if m := eokPattern.FindStringSubmatch(s); m != nil {
		return scaleAmount(m[1], 10000)
	}
	if m := cheonmanPattern.FindStringSubmatch(s); m != nil {
		return scaleAmount(m[1], 1000)
	}

	return 0
}

// ParseEmployeeCount reads the leading integer of a bucket label:
// "none" → 0, "1-4" → 1, "5-plus" → 5. Negative values clamp to 0 and large ones to
// MaxEmployeeCount.
func ParseEmployeeCount(value string) int {
	s := strings.TrimSpace(value)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}

	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) && s[0] != '-' {
		return MaxEmployeeCount
	}
	if err != nil || n < 0 {
		return 0
	}
	return min(n, MaxEmployeeCount)
}

// normalizeRevenue turns a numeric or legacy revenue into non-negative man-won.
func normalizeRevenue(v models.NumericInput) int {
	if v.IsNumber() {
		return clampNumber(*v.Number, MaxRevenue)
	}
	return ParseRevenueString(v.Text)
}

// normalizeEmployeeCount turns a numeric or bucketed employee count into a non-negative integer.
func normalizeEmployeeCount(v models.NumericInput) int {
	if v.IsNumber() {
		return clampNumber(*v.Number, MaxEmployeeCount)
	}
	return ParseEmployeeCount(v.Text)
}

// clampNumber truncates f into [0, limit]. NaN counts as 0 and +Inf saturates.
func clampNumber(f float64, limit int) int {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= float64(limit) {
		return limit
	}
	return int(f)
}

func parsePlainNumber(s string) (int, bool) {
	cleaned := strings.ReplaceAll(s, ",", "")
	if cleaned == "" {
		return 0, true
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if errors.Is(err, strconv.ErrRange) && f > 0 {
		return MaxRevenue, true
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return clampNumber(f, MaxRevenue), true
}

func scaleAmount(number string, unit float64) int {
	f, err := strconv.ParseFloat(number, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return clampNumber(math.Floor(f*unit), MaxRevenue)
}
