package processors

import "time"

// FillCascade replaces nil entries of dest with the value at the same row of
// the first source that has one. Sources are consulted left to right; a nil
// source slice stands for an absent column and is skipped. It returns the
// number of entries filled.
func FillCascade(dest []*time.Time, sources ...[]*time.Time) int {
	filled := 0
	for _, src := range sources {
		if src == nil {
			continue
		}
		for i := range dest {
			if dest[i] != nil || i >= len(src) || src[i] == nil {
				continue
			}
			v := *src[i]
			dest[i] = &v
			filled++
		}
	}
	return filled
}
