package parser

import (
	"strconv"
	"strings"
)

// ParseNumber parses value as an integer.
func ParseNumber(value string) (int64, error) {
	base, value := SplitNumber(value)
	return strconv.ParseInt(value, base, 64)
}

// SplitNumber splits the given number into the base prefix and the
// actual numeric value. Defaults to base-10 if a base-prefix can not
// successfuly be determined. Either there is no prefix, or it is
// not a valid number. A leading sign is kept with the value.
func SplitNumber(v string) (int, string) {
	var sign string
	if len(v) > 0 && (v[0] == '-' || v[0] == '+') {
		sign, v = v[:1], v[1:]
	}

	index := strings.Index(v, "#")
	if index == -1 {
		return 10, sign + strings.ReplaceAll(v, "_", "")
	}

	base, err := strconv.ParseInt(v[:index], 10, 8)
	if err != nil {
		base = 10
	}

	return int(base), sign + strings.ReplaceAll(v[index+1:], "_", "")
}
