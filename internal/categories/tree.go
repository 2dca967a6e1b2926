// Package categories builds a hierarchy from the flat category list of
// the banking data source and answers structural queries about it.
//
// The tree is stored as an arena: all nodes live in one slice and
// parent/child relations are integer indices into it. The tree is
// built once per fetch and never mutated afterwards.
package categories

import (
	"strings"

	"github.com/budgetplanner/backend/internal/models"
	"github.com/ryanuber/go-glob"
)

type node struct {
	category models.Category
	parent   int
	children []int
}

// Tree is the category forest. The zero value is not usable, use Build.
type Tree struct {
	nodes []node
	roots []int
	index map[string]int
}

// Build converts the flat category list into a forest.
//
// The source reports categories in order, with groups preceding their
// children at a higher indentation. A single left-to-right pass over
// the list keeps a stack of ancestor candidates: everything on the
// stack with an indentation at or above the current category cannot be
// its ancestor and is popped. Categories whose indentation jumps by
// more than one level are still accepted and attach to whatever
// ancestor survives the popping.
//
// Sibling order matches input order, so a depth-first pre-order walk
// of the result reproduces the input exactly.
func Build(flat []models.Category) *Tree {
	t := &Tree{
		nodes: make([]node, 0, len(flat)),
		index: make(map[string]int, len(flat)),
	}

	var stack []int
	for _, category := range flat {
		idx := len(t.nodes)
		t.nodes = append(t.nodes, node{category: category, parent: -1})
		t.index[category.ID] = idx

		for len(stack) > 0 && t.nodes[stack[len(stack)-1]].category.Indentation >= category.Indentation {
			stack = stack[:len(stack)-1]
		}

		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			t.nodes[idx].parent = parent
			t.nodes[parent].children = append(t.nodes[parent].children, idx)
		} else {
			t.roots = append(t.roots, idx)
		}

		// Only groups can become parents
		if category.Group {
			stack = append(stack, idx)
		}
	}

	return t
}

// Len returns the number of nodes in the forest.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Roots returns the indices of the root nodes in input order.
func (t *Tree) Roots() []int {
	return t.roots
}

// Category returns the category stored at the given node index.
func (t *Tree) Category(idx int) models.Category {
	return t.nodes[idx].category
}

// Children returns the child indices of a node in input order.
func (t *Tree) Children(idx int) []int {
	return t.nodes[idx].children
}

// Parent returns the parent index of a node, or -1 for roots.
func (t *Tree) Parent(idx int) int {
	return t.nodes[idx].parent
}

// IndexOf returns the node index for a category id.
func (t *Tree) IndexOf(id string) (int, bool) {
	idx, ok := t.index[id]
	return idx, ok
}

// LeafIDs returns the ids of all leaf categories reachable from a
// node, including the node itself if it is a leaf. A group without
// children counts as a leaf.
func (t *Tree) LeafIDs(idx int) []string {
	n := t.nodes[idx]
	if !n.category.Group || len(n.children) == 0 {
		return []string{n.category.ID}
	}

	var ids []string
	for _, child := range n.children {
		ids = append(ids, t.LeafIDs(child)...)
	}
	return ids
}

// AllIDs returns every category id in the subtrees of the given nodes,
// groups included, in depth-first pre-order.
func (t *Tree) AllIDs(idxs []int) []string {
	var ids []string

	var walk func(int)
	walk = func(idx int) {
		ids = append(ids, t.nodes[idx].category.ID)
		for _, child := range t.nodes[idx].children {
			walk(child)
		}
	}

	for _, idx := range idxs {
		walk(idx)
	}
	return ids
}

// SplitIncomeExpense partitions the roots into income and expense
// groups. A root is income when its id is in the income set.
func (t *Tree) SplitIncomeExpense(incomeIDs []string) (income, expenses []int) {
	incomeSet := make(map[string]struct{}, len(incomeIDs))
	for _, id := range incomeIDs {
		incomeSet[id] = struct{}{}
	}

	for _, root := range t.roots {
		if _, ok := incomeSet[t.nodes[root].category.ID]; ok {
			income = append(income, root)
		} else {
			expenses = append(expenses, root)
		}
	}

	return income, expenses
}

// MatchNames returns the indices of all categories whose name matches
// the glob pattern, case-insensitively, in input order.
func (t *Tree) MatchNames(pattern string) []int {
	pattern = strings.ToLower(pattern)

	var matches []int
	for idx, n := range t.nodes {
		if glob.Glob(pattern, strings.ToLower(n.category.Name)) {
			matches = append(matches, idx)
		}
	}
	return matches
}
