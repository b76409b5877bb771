package search

// combinationsUpToK generates every nonempty subset of ids, sorted
// ascending internally, with size between 1 and k inclusive. This
// generalizes spec.md §4.4's k=3 walk over every non-decreasing triple
// i ≤ j ≤ ℓ: that walk allows repeated indices (i=j=k exercises a
// single semaphore, i=j<k exercises two distinct ones, i<j<k exercises
// three), which collapses to exactly the same coverage as "every
// distinct subset of size ≤ k" once duplicates are merged for
// simplification purposes. Generating subsets directly avoids searching
// the same subset more than once for no benefit.
func combinationsUpToK(ids []int, k int) [][]int {
	n := len(ids)
	if k > n {
		k = n
	}
	var out [][]int
	combo := make([]int, 0, k)

	var recurse func(start, remaining int)
	recurse = func(start, remaining int) {
		if remaining == 0 {
			subset := make([]int, len(combo))
			copy(subset, combo)
			out = append(out, subset)
			return
		}
		for i := start; i <= n-remaining; i++ {
			combo = append(combo, ids[i])
			recurse(i+1, remaining-1)
			combo = combo[:len(combo)-1]
		}
	}

	for size := 1; size <= k; size++ {
		recurse(0, size)
	}
	return out
}
