package warehouse

import (
	"sort"

	"github.com/google/uuid"
)

// TreeNode is a node with its nested children
type TreeNode struct {
	*Node
	Children []*TreeNode
}

// TreeFilter narrows the forest returned by BuildForest
type TreeFilter struct {
	RootID   *uuid.UUID
	RootType NodeType
}

// BuildForest assembles live nodes into a forest. Children are ordered by
// creation time. A node whose parent is absent from nodes (missing, deleted or
// filtered out) becomes an additional root instead of being dropped.
func BuildForest(nodes []*Node, filter TreeFilter) []*TreeNode {
	byID := make(map[uuid.UUID]*TreeNode, len(nodes))
	ordered := make([]*TreeNode, 0, len(nodes))
	for _, n := range nodes {
		if n == nil || n.IsDeleted() {
			continue
		}
		tn := &TreeNode{Node: n, Children: []*TreeNode{}}
		byID[n.ID] = tn
		ordered = append(ordered, tn)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	var roots []*TreeNode
	for _, tn := range ordered {
		if tn.ParentID != nil {
			if parent, ok := byID[*tn.ParentID]; ok && parent != tn {
				parent.Children = append(parent.Children, tn)
				continue
			}
		}
		roots = append(roots, tn)
	}

	// Corrupt parent chains that loop never reach a root; promote one member
	// of each loop so every live node is still returned.
	seen := make(map[uuid.UUID]bool, len(ordered))
	var mark func(*TreeNode)
	mark = func(tn *TreeNode) {
		if seen[tn.ID] {
			return
		}
		seen[tn.ID] = true
		for _, c := range tn.Children {
			mark(c)
		}
	}
	for _, r := range roots {
		mark(r)
	}
	for _, tn := range ordered {
		if seen[tn.ID] {
			continue
		}
		if parent, ok := byID[*tn.ParentID]; ok {
			parent.Children = removeChild(parent.Children, tn)
		}
		roots = append(roots, tn)
		mark(tn)
	}

	return filterRoots(roots, byID, filter)
}

func removeChild(children []*TreeNode, target *TreeNode) []*TreeNode {
	out := children[:0]
	for _, c := range children {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}

func filterRoots(roots []*TreeNode, byID map[uuid.UUID]*TreeNode, filter TreeFilter) []*TreeNode {
	if filter.RootID != nil {
		if tn, ok := byID[*filter.RootID]; ok {
			return []*TreeNode{tn}
		}
		return []*TreeNode{}
	}
	if filter.RootType == "" {
		if roots == nil {
			return []*TreeNode{}
		}
		return roots
	}
	out := []*TreeNode{}
	for _, r := range roots {
		if r.NodeType == filter.RootType {
			out = append(out, r)
		}
	}
	return out
}

// Flatten returns the tree nodes in depth-first order
func Flatten(forest []*TreeNode) []*Node {
	var out []*Node
	var walk func([]*TreeNode)
	walk = func(level []*TreeNode) {
		for _, tn := range level {
			out = append(out, tn.Node)
			walk(tn.Children)
		}
	}
	walk(forest)
	return out
}

// ParentLookup resolves the parent of a node id; ok is false when the id is unknown
type ParentLookup func(id uuid.UUID) (parent *uuid.UUID, ok bool)

// CreatesCycle reports whether re-parenting nodeID under newParent would make
// nodeID its own ancestor.
func CreatesCycle(nodeID, newParent uuid.UUID, parentOf ParentLookup) bool {
	visited := map[uuid.UUID]bool{}
	current := newParent
	for {
		if current == nodeID {
			return true
		}
		if visited[current] {
			// pre-existing loop that does not include nodeID
			return false
		}
		visited[current] = true
		parent, ok := parentOf(current)
		if !ok || parent == nil {
			return false
		}
		current = *parent
	}
}

// Descendants returns the ids of every node below rootID, breadth first
func Descendants(rootID uuid.UUID, nodes []*Node) []uuid.UUID {
	children := make(map[uuid.UUID][]uuid.UUID)
	for _, n := range nodes {
		if n.ParentID != nil {
			children[*n.ParentID] = append(children[*n.ParentID], n.ID)
		}
	}
	var out []uuid.UUID
	visited := map[uuid.UUID]bool{rootID: true}
	queue := []uuid.UUID{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range children[id] {
			if visited[c] {
				continue
			}
			visited[c] = true
			out = append(out, c)
			queue = append(queue, c)
		}
	}
	return out
}
