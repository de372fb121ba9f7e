package caret

import "github.com/rivo/uniseg"

// snapToGrapheme returns the largest grapheme cluster boundary in s that is
// at or before off. A caret placed mid-cluster (for example inside a
// combining sequence or an emoji ZWJ run) would render nowhere addressable.
func snapToGrapheme(s string, off int) int {
	if off <= 0 {
		return 0
	}
	if off >= len(s) {
		return len(s)
	}
	boundary := 0
	rest := s
	state := -1
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		next := boundary + len(cluster)
		if next > off {
			return boundary
		}
		boundary = next
	}
	return boundary
}
