package detect

import "sort"

// unionFind tracks coplanar merge groups over component indices.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range u.parent {
		u.parent[i] = i
	}
	return u
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(i, j int) {
	ri, rj := u.find(i), u.find(j)
	if ri == rj {
		return
	}
	switch {
	case u.rank[ri] < u.rank[rj]:
		u.parent[ri] = rj
	case u.rank[ri] > u.rank[rj]:
		u.parent[rj] = ri
	default:
		u.parent[rj] = ri
		u.rank[ri]++
	}
}

// groups returns every set with more than one member, each sorted, ordered
// by smallest member.
func (u *unionFind) groups() [][]int {
	byRoot := make(map[int][]int)
	for i := range u.parent {
		r := u.find(i)
		byRoot[r] = append(byRoot[r], i)
	}
	var out [][]int
	for _, g := range byRoot {
		if len(g) > 1 {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a][0] < out[b][0] })
	return out
}
