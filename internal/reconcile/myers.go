package reconcile

import "github.com/vmunix/rowsync/internal/item"

// commonSubsequence returns the index pairs of a longest common subsequence
// of a and b, in ascending order. It runs Myers' O((N+M)D) algorithm on the
// part left after trimming the shared prefix and suffix.
func commonSubsequence(a, b []item.Key) []Pair {
	var pairs []Pair

	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		pairs = append(pairs, Pair{Old: prefix, New: prefix})
		prefix++
	}

	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix &&
		a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}

	for _, p := range myers(a[prefix:len(a)-suffix], b[prefix:len(b)-suffix]) {
		pairs = append(pairs, Pair{Old: p.Old + prefix, New: p.New + prefix})
	}

	for i := suffix; i > 0; i-- {
		pairs = append(pairs, Pair{Old: len(a) - i, New: len(b) - i})
	}
	return pairs
}

func myers(a, b []item.Key) []Pair {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return nil
	}

	maxD := n + m
	offset := maxD
	v := make([]int, 2*maxD+2)
	var trace [][]int

	for d := 0; d <= maxD; d++ {
		trace = append(trace, append([]int(nil), v...))
		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x
			if x >= n && y >= m {
				return backtrack(trace, n, m, offset)
			}
		}
	}
	return nil
}

// backtrack walks the saved frontiers from (n, m) back to the origin and
// collects the diagonal moves, which are the matched pairs.
func backtrack(trace [][]int, n, m, offset int) []Pair {
	var rev []Pair
	x, y := n, m
	for d := len(trace) - 1; d >= 0; d-- {
		v := trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := v[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			rev = append(rev, Pair{Old: x, New: y})
		}
		x, y = prevX, prevY
	}

	pairs := make([]Pair, len(rev))
	for i, p := range rev {
		pairs[len(rev)-1-i] = p
	}
	return pairs
}
