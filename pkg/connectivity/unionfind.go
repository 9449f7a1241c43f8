package connectivity

// UnionFind is a disjoint-set forest over string ids with path compression
// and union by rank. Ids are registered implicitly on first use; components
// are reported in registration order.
type UnionFind struct {
	parent map[string]string
	rank   map[string]int
	order  []string
}

// NewUnionFind creates a forest in which every given id is its own set.
func NewUnionFind(ids ...string) *UnionFind {
	uf := &UnionFind{
		parent: make(map[string]string, len(ids)),
		rank:   make(map[string]int, len(ids)),
	}
	for _, id := range ids {
		uf.Add(id)
	}
	return uf
}

// Add registers id as a singleton set. Adding a known id is a no-op.
func (uf *UnionFind) Add(id string) {
	if _, ok := uf.parent[id]; ok {
		return
	}
	uf.parent[id] = id
	uf.rank[id] = 0
	uf.order = append(uf.order, id)
}

// Find returns the representative of the set containing id. Every id on the
// walked path is re-pointed directly at the root.
func (uf *UnionFind) Find(id string) string {
	uf.Add(id)

	root := id
	for uf.parent[root] != root {
		root = uf.parent[root]
	}

	current := id
	for current != root {
		next := uf.parent[current]
		uf.parent[current] = root
		current = next
	}
	return root
}

// Union merges the sets containing a and b. The root of lower rank is
// attached under the other; on equal rank the surviving root's rank grows.
func (uf *UnionFind) Union(a, b string) {
	rootA := uf.Find(a)
	rootB := uf.Find(b)
	if rootA == rootB {
		return
	}

	switch {
	case uf.rank[rootA] < uf.rank[rootB]:
		uf.parent[rootA] = rootB
	case uf.rank[rootA] > uf.rank[rootB]:
		uf.parent[rootB] = rootA
	default:
		uf.parent[rootB] = rootA
		uf.rank[rootA]++
	}
}

// Connected reports whether a and b are in the same set.
func (uf *UnionFind) Connected(a, b string) bool {
	return uf.Find(a) == uf.Find(b)
}

// Len returns the number of registered ids.
func (uf *UnionFind) Len() int {
	return len(uf.order)
}

// GetComponents partitions every registered id into exactly one group. Groups
// and their members follow registration order.
func (uf *UnionFind) GetComponents() [][]string {
	groupOf := make(map[string]int)
	var groups [][]string
	for _, id := range uf.order {
		root := uf.Find(id)
		idx, ok := groupOf[root]
		if !ok {
			idx = len(groups)
			groupOf[root] = idx
			groups = append(groups, nil)
		}
		groups[idx] = append(groups[idx], id)
	}
	return groups
}
