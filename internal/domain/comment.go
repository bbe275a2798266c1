package domain

import (
	"slices"
	"sort"
	"time"
)

// Comment is a message in a ticket thread. ParentID links a reply to another
// comment of the same ticket.
type Comment struct {
	ID         string
	TicketID   string
	Content    string
	CreatedBy  string
	AuthorName string
	ParentID   *string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// CommentNode is a comment with its ordered replies.
type CommentNode struct {
	Comment
	Replies []*CommentNode
}

// BuildCommentTree arranges a flat list into a forest. A comment is a root when
// it has no parent or its parent is not in the list. Parent chains that loop
// back on themselves are broken at their earliest comment, which becomes a
// root. Siblings and roots keep creation order.
func BuildCommentTree(comments []Comment) []*CommentNode {
	ordered := make([]Comment, len(comments))
	copy(ordered, comments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	index := make(map[string]*CommentNode, len(ordered))
	nodes := make([]*CommentNode, 0, len(ordered))
	for _, c := range ordered {
		node := &CommentNode{Comment: c, Replies: []*CommentNode{}}
		index[c.ID] = node
		nodes = append(nodes, node)
	}

	roots := make([]*CommentNode, 0)
	for _, node := range nodes {
		if node.ParentID == nil || *node.ParentID == node.ID {
			roots = append(roots, node)
			continue
		}
		parent, ok := index[*node.ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}

	reached := make(map[*CommentNode]bool, len(nodes))
	for _, root := range roots {
		markSubtree(root, reached)
	}
	if len(reached) == len(nodes) {
		return roots
	}
	for _, node := range nodes {
		if reached[node] {
			continue
		}
		parent := index[*node.ParentID]
		parent.Replies = slices.DeleteFunc(parent.Replies, func(n *CommentNode) bool { return n == node })
		roots = append(roots, node)
		markSubtree(node, reached)
	}

	position := make(map[*CommentNode]int, len(nodes))
	for i, node := range nodes {
		position[node] = i
	}
	sort.SliceStable(roots, func(i, j int) bool { return position[roots[i]] < position[roots[j]] })
	return roots
}

func markSubtree(root *CommentNode, reached map[*CommentNode]bool) {
	stack := []*CommentNode{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[node] {
			continue
		}
		reached[node] = true
		stack = append(stack, node.Replies...)
	}
}

// DescendantIDs returns the ids of every reply below rootID, depth first.
func DescendantIDs(comments []Comment, rootID string) []string {
	children := make(map[string][]string, len(comments))
	for _, c := range comments {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	var out []string
	seen := map[string]bool{rootID: true}
	stack := append([]string(nil), children[rootID]...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		stack = append(stack, children[id]...)
	}
	return out
}
