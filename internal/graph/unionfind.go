package graph

// UnionFind tracks connected components over table names, with path
// compression and union by size.
type UnionFind struct {
	parent map[string]string
	size   map[string]int
}

// NewUnionFind creates a UnionFind where each name is its own component.
func NewUnionFind(names []string) *UnionFind {
	uf := &UnionFind{
		parent: make(map[string]string, len(names)),
		size:   make(map[string]int, len(names)),
	}
	for _, name := range names {
		uf.parent[name] = name
		uf.size[name] = 1
	}
	return uf
}

// Find returns the component root for name, compressing the path walked.
func (uf *UnionFind) Find(name string) string {
	root, ok := uf.parent[name]
	if !ok {
		return name
	}
	for root != uf.parent[root] {
		root = uf.parent[root]
	}
	for name != root {
		next := uf.parent[name]
		uf.parent[name] = root
		name = next
	}
	return root
}

// Union merges the components of a and b. Returns true if they were separate.
func (uf *UnionFind) Union(a, b string) bool {
	rootA := uf.Find(a)
	rootB := uf.Find(b)
	if rootA == rootB {
		return false
	}
	if uf.size[rootA] < uf.size[rootB] {
		rootA, rootB = rootB, rootA
	}
	uf.parent[rootB] = rootA
	uf.size[rootA] += uf.size[rootB]
	return true
}

// Components returns all connected components as slices of names.
func (uf *UnionFind) Components() [][]string {
	groups := make(map[string][]string)
	for name := range uf.parent {
		root := uf.Find(name)
		groups[root] = append(groups[root], name)
	}
	result := make([][]string, 0, len(groups))
	for _, members := range groups {
		result = append(result, members)
	}
	return result
}

// Largest returns the size of the biggest component.
func (uf *UnionFind) Largest() int {
	largest := 0
	for name, root := range uf.parent {
		if name == root && uf.size[name] > largest {
			largest = uf.size[name]
		}
	}
	return largest
}
