package mesh

import (
	"container/heap"
)

// PathNode represents a vertex in the A* search.
type PathNode struct {
	Vertex int
	G      float64 // Path length from start
	H      float64 // Straight-line distance to goal
	F      float64 // G + H
	Parent *PathNode
	Index  int // Index in heap
}

// PathHeap implements a priority queue for A* search.
// Ties on F are broken by vertex index so results are deterministic.
type PathHeap []*PathNode

func (h PathHeap) Len() int { return len(h) }
func (h PathHeap) Less(i, j int) bool {
	if h[i].F != h[j].F {
		return h[i].F < h[j].F
	}
	return h[i].Vertex < h[j].Vertex
}
func (h PathHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].Index = i
	h[j].Index = j
}

func (h *PathHeap) Push(x interface{}) {
	n := len(*h)
	node := x.(*PathNode)
	node.Index = n
	*h = append(*h, node)
}

func (h *PathHeap) Pop() interface{} {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.Index = -1
	*h = old[0 : n-1]
	return node
}

// ShortestEdgePath finds the shortest edge path from v1 to v2, weighting
// each edge by its Euclidean length. The straight-line heuristic never
// overestimates, so the returned path is optimal.
// Returns an empty path when v1 == v2 and nil if no path exists.
func (m *Mesh) ShortestEdgePath(v1, v2 int) []Edge {
	if !m.InRange(v1) || !m.InRange(v2) {
		return nil
	}
	if v1 == v2 {
		return []Edge{}
	}

	goal := m.positions[v2]

	openSet := &PathHeap{}
	heap.Init(openSet)

	closedSet := make(map[int]bool)
	nodeMap := make(map[int]*PathNode)

	startNode := &PathNode{
		Vertex: v1,
		G:      0,
		H:      m.positions[v1].Distance(goal),
	}
	startNode.F = startNode.G + startNode.H
	heap.Push(openSet, startNode)
	nodeMap[v1] = startNode

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*PathNode)

		if current.Vertex == v2 {
			return reconstructPath(current)
		}

		closedSet[current.Vertex] = true
		here := m.positions[current.Vertex]

		for _, next := range m.adjacency[current.Vertex] {
			if closedSet[next] {
				continue
			}

			g := current.G + here.Distance(m.positions[next])

			neighbor, exists := nodeMap[next]
			if !exists {
				neighbor = &PathNode{
					Vertex: next,
					G:      g,
					H:      m.positions[next].Distance(goal),
					Parent: current,
				}
				neighbor.F = neighbor.G + neighbor.H
				nodeMap[next] = neighbor
				heap.Push(openSet, neighbor)
			} else if g < neighbor.G {
				neighbor.G = g
				neighbor.F = neighbor.G + neighbor.H
				neighbor.Parent = current
				heap.Fix(openSet, neighbor.Index)
			}
		}
	}

	return nil
}

// PathLength sums the Euclidean length of every edge along path.
func (m *Mesh) PathLength(path []Edge) float64 {
	var total float64
	for _, e := range path {
		total += m.positions[e[0]].Distance(m.positions[e[1]])
	}
	return total
}

func reconstructPath(node *PathNode) []Edge {
	var verts []int
	for node != nil {
		verts = append(verts, node.Vertex)
		node = node.Parent
	}
	// Built from goal to start
	for i, j := 0, len(verts)-1; i < j; i, j = i+1, j-1 {
		verts[i], verts[j] = verts[j], verts[i]
	}

	path := make([]Edge, 0, len(verts)-1)
	for i := 1; i < len(verts); i++ {
		path = append(path, Edge{verts[i-1], verts[i]})
	}
	return path
}
