// Package community holds the feed domain: posts, replies and their ranking.
package community

import "time"

// CategoryAll is the sentinel category meaning "no filter".
const CategoryAll = "Todos"

// Categories is the fixed set of post categories, including the sentinel.
var Categories = []string{CategoryAll, "Apoio", "Dicas", "Eventos", "Geral"}

// ValidCategory reports whether c names a real category (the sentinel is
// not one).
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known && c != CategoryAll {
			return true
		}
	}
	return false
}

// Author is the denormalized profile slice joined onto posts and replies.
type Author struct {
	Name   string
	Avatar string
}

// Post is a community feed entry. Counters are mutated only by increment
// operations; the trending flag is set outside this backend.
type Post struct {
	ID           string
	UserID       string
	Title        string
	Content      string
	Category     string
	Image        string
	LikesCount   int
	RepliesCount int
	IsTrending   bool
	CreatedAt    time.Time
	Author       *Author
}

// Reply is a comment on a post. ParentReplyID empty means top-level; set,
// it must reference a reply of the same post. Nesting is capped at two
// levels, so Replies is only populated on top-level entries.
type Reply struct {
	ID            string
	PostID        string
	UserID        string // empty for anonymous replies
	AuthorName    string
	Content       string
	ParentReplyID string
	Likes         int // no reply-like mechanism yet, always 0
	CreatedAt     time.Time
	Author        *Author
	Replies       []Reply
}

// CountReplies returns the total number of entries in a two-level tree.
func CountReplies(tree []Reply) int {
	n := len(tree)
	for _, r := range tree {
		n += len(r.Replies)
	}
	return n
}
