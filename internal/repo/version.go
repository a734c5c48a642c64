package repo

import (
	"strconv"
	"strings"
)

// compareVersions orders dotted version strings numerically, ignoring
// any pre-release suffix ("0.17.5-beta" compares as 0.17.5). Returns
// -1, 0, or 1.
func compareVersions(a, b string) int {
	as := segments(a)
	bs := segments(b)
	for i := 0; i < len(as) || i < len(bs); i++ {
		av, bv := 0, 0
		if i < len(as) {
			av = as[i]
		}
		if i < len(bs) {
			bv = bs[i]
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

func segments(v string) []int {
	if i := strings.IndexByte(v, '-'); i >= 0 {
		v = v[:i]
	}
	parts := strings.Split(v, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		num, err := strconv.Atoi(p)
		if err != nil {
			num = 0
		}
		out = append(out, num)
	}
	return out
}
