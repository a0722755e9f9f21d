package kryoflux

import "strings"

// findInfoValue searches text for the literal "name=" and returns the
// substring up to the next ',' or end-of-string.
//
// Documented deviation from the reference decoder (spec §9, open question
// 3): the reference rejects a match at offset 0 ("sck=..." at the very
// start of the info text can never be found), which is almost certainly a
// bug. This implementation treats offset 0 as a valid match.
func findInfoValue(text, name string) string {
	key := name + "="
	idx := strings.Index(text, key)
	if idx < 0 {
		return ""
	}
	start := idx + len(key)
	rest := text[start:]
	if comma := strings.IndexByte(rest, ','); comma >= 0 {
		return rest[:comma]
	}
	return rest
}
