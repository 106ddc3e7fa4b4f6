package utils

import "strconv"

// StringToUint64 parses an id from a URL parameter; 0 when it is not a
// positive integer.
func StringToUint64(str string) uint64 {
	val, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0
	}
	return val
}

// Uint64ToString formats ids for cache keys and push payloads.
func Uint64ToString(v uint64) string {
	return strconv.FormatUint(v, 10)
}
