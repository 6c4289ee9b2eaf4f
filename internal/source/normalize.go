package source

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// asString renders a scanned value as trimmed text. Firebird CHAR columns
// arrive space padded.
func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case []byte:
		return strings.TrimSpace(string(x))
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case decimal.Decimal:
		return x.String()
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// asDecimal converts a numeric value. Empty values are zero.
func asDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return x, nil
	case int64:
		return decimal.NewFromInt(x), nil
	case int32:
		return decimal.NewFromInt32(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	}

	s := asString(v)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", s)
	}
	return d, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"02.01.2006",
	"02/01/2006",
}

// asDate renders a date value as YYYY-MM-DD.
func asDate(v any) (string, error) {
	if t, ok := v.(time.Time); ok {
		return t.Format("2006-01-02"), nil
	}
	s := asString(v)
	if s == "" {
		return "", nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("invalid date %q", s)
}

// asClock renders a time-of-day value as HH:MM:SS. Fractional seconds are
// dropped.
func asClock(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format("15:04:05")
	}
	s := asString(v)
	if i := strings.LastIndexByte(s, ' '); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t.Format("15:04:05")
	}
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04:05")
	}
	return s
}

// asNullDecimal is asDecimal with NULL and blank kept as invalid.
func asNullDecimal(v any) (decimal.NullDecimal, error) {
	if v == nil || asString(v) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := asDecimal(v)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
