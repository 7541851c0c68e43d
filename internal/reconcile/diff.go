package reconcile

import "github.com/vmunix/rowsync/internal/item"

// Pair links a row of the old list to a row of the new list.
type Pair struct {
	Old int `json:"old"`
	New int `json:"new"`
}

// Result classifies every row of both lists. Indices refer to the old and
// new lists passed to Diff.
type Result struct {
	Inserted []int  `json:"inserted"` // new indices with no identity match in old
	Removed  []int  `json:"removed"`  // old indices with no identity match in new
	Moved    []Pair `json:"moved"`    // identity matches that changed relative order
	Changed  []Pair `json:"changed"`  // identity matches whose content differs

	matched []Pair // longest common subsequence, ascending
	old     []item.ListItem
	new     []item.ListItem
}

// Empty reports whether old and new are identical.
func (r Result) Empty() bool {
	return len(r.Inserted) == 0 && len(r.Removed) == 0 && len(r.Moved) == 0 && len(r.Changed) == 0
}

// Unchanged returns the number of rows that keep their identity, relative
// order and content.
func (r Result) Unchanged() int {
	n := 0
	for _, p := range r.matched {
		if SameContent(r.old[p.Old], r.new[p.New]) {
			n++
		}
	}
	return n
}

// Diff compares old and new by identity. Rows on the longest common
// subsequence of identities stay in place; rows outside it whose identity
// appears on both sides are paired as moves in order of appearance; the rest
// are insertions and removals. Diff never fails and accepts empty or nil
// lists.
func Diff(old, new []item.ListItem) Result {
	oldKeys := keys(old)
	newKeys := keys(new)

	r := Result{
		matched: commonSubsequence(oldKeys, newKeys),
		old:     old,
		new:     new,
	}

	oldMatched := make([]bool, len(old))
	newMatched := make([]bool, len(new))
	for _, p := range r.matched {
		oldMatched[p.Old] = true
		newMatched[p.New] = true
	}

	// unmatched old rows by identity, in ascending index order
	pending := make(map[item.Key][]int)
	for i, k := range oldKeys {
		if !oldMatched[i] {
			pending[k] = append(pending[k], i)
		}
	}

	for j, k := range newKeys {
		if newMatched[j] {
			continue
		}
		if queue := pending[k]; len(queue) > 0 {
			r.Moved = append(r.Moved, Pair{Old: queue[0], New: j})
			pending[k] = queue[1:]
			oldMatched[queue[0]] = true
			continue
		}
		r.Inserted = append(r.Inserted, j)
	}

	for i := range old {
		if !oldMatched[i] {
			r.Removed = append(r.Removed, i)
		}
	}

	for _, p := range r.matched {
		if !SameContent(old[p.Old], new[p.New]) {
			r.Changed = append(r.Changed, p)
		}
	}
	for _, p := range r.Moved {
		if !SameContent(old[p.Old], new[p.New]) {
			r.Changed = append(r.Changed, p)
		}
	}
	return r
}

func keys(items []item.ListItem) []item.Key {
	out := make([]item.Key, len(items))
	for i, it := range items {
		out[i] = item.KeyOf(it)
	}
	return out
}
