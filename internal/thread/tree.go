// Package thread assembles nested reply trees from flat comment rows.
//
// Replies are linked to the comment they answer through ReplyToID. A page of top-level
// comments plus every reply loaded for it is turned into an adjacency index once per
// request, so building the tree costs no datastore round trips per node.
package thread

import (
	"sort"

	"campus/internal/models"
)

// Index groups replies by the id of the comment they answer.
type Index map[uint][]*models.Post

// NewIndex builds an adjacency index over replies. Rows without ReplyToID are ignored.
// Children of each node are ordered by creation time, then id.
func NewIndex(replies []*models.Post) Index {
	idx := make(Index, len(replies))
	for _, r := range replies {
		if r == nil || r.ReplyToID == nil {
			continue
		}
		idx[*r.ReplyToID] = append(idx[*r.ReplyToID], r)
	}
	for _, children := range idx {
		sortChronologically(children)
	}
	return idx
}

// Children returns the direct replies to id.
func (idx Index) Children(id uint) []*models.Post {
	return idx[id]
}

// Attach populates Replies on every root, recursively, from idx.
// A node already placed in the tree is never attached twice, so corrupt
// links that form a cycle terminate instead of recursing forever.
func Attach(roots []*models.Post, idx Index) {
	visited := make(map[uint]struct{}, len(idx))
	for _, root := range roots {
		visited[root.ID] = struct{}{}
	}
	for _, root := range roots {
		attach(root, idx, visited)
	}
}

func attach(node *models.Post, idx Index, visited map[uint]struct{}) {
	children := idx.Children(node.ID)
	replies := make([]*models.Post, 0, len(children))
	for _, child := range children {
		if _, seen := visited[child.ID]; seen {
			continue
		}
		visited[child.ID] = struct{}{}
		replies = append(replies, child)
	}
	node.Replies = replies
	for _, child := range replies {
		attach(child, idx, visited)
	}
}

// Size counts every node below the given roots.
func Size(roots []*models.Post) int {
	n := 0
	for _, r := range roots {
		n += len(r.Replies) + Size(r.Replies)
	}
	return n
}

func sortChronologically(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].CreatedAt.Before(posts[j].CreatedAt)
	})
}
