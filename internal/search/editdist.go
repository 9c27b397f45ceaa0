package search

// distance computes the Levenshtein edit distance between a and b, bounded
// by max. It returns max+1 as soon as the distance is known to exceed max,
// so callers can compare the result with <= max without caring about the
// true value beyond the bound.
func distance(a, b string, max int) int {
	ra := []rune(a)
	rb := []rune(b)

	if abs(len(ra)-len(rb)) > max {
		return max + 1
	}
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d := prev[j] + 1 // deletion
			if ins := curr[j-1] + 1; ins < d {
				d = ins
			}
			if sub := prev[j-1] + cost; sub < d {
				d = sub
			}
			curr[j] = d
			if d < rowMin {
				rowMin = d
			}
		}
		// Every cell in this row exceeds the bound, so the final
		// distance must too.
		if rowMin > max {
			return max + 1
		}
		prev, curr = curr, prev
	}

	if prev[len(rb)] > max {
		return max + 1
	}
	return prev[len(rb)]
}
