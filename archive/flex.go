package archive

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// FlexString accepts either a string or a list of strings. Archive items
// commonly carry repeated title or description fields, which are joined with
// newlines.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	switch data[0] {
	case '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
	case '[':
		var parts []FlexString
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		strs := make([]string, 0, len(parts))
		for _, part := range parts {
			strs = append(strs, string(part))
		}
		*s = FlexString(strings.Join(strs, "\n"))
	default:
		*s = FlexString(data)
	}
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// FlexNumber accepts a JSON number or a numeric string. Anything it cannot
// make sense of reads as zero.
type FlexNumber float64

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*n = 0
	if len(data) == 0 {
		return nil
	}
	raw := string(data)
	switch data[0] {
	case '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return nil
		}
		raw = strings.TrimSpace(str)
	case '[':
		// repeated fields, take the first
		var parts []FlexNumber
		if err := json.Unmarshal(data, &parts); err == nil && len(parts) > 0 {
			*n = parts[0]
		}
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*n = FlexNumber(f)
	return nil
}

// Int truncates towards zero
func (n FlexNumber) Int() int {
	return int(n)
}

func (n FlexNumber) Int64() int64 {
	return int64(n)
}
