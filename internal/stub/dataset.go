package stub

import (
	"fmt"
	"strings"

	"apicontract/internal/core"
)

const postsPerUser = 10

var words = []string{
	"sunt", "aut", "facere", "repellat", "provident", "occaecati", "excepturi", "optio",
	"reprehenderit", "qui", "est", "esse", "ea", "molestias", "quasi", "dolorem",
	"nesciunt", "quas", "odio", "eum", "et", "magnam", "voluptate", "laborum",
}

// Dataset is an immutable, deterministic set of posts and their comments
type Dataset struct {
	posts    []core.Post
	comments map[int][]core.Comment
}

// DefaultDataset mirrors the shape of the public dataset: 100 posts, 5 comments each.
func DefaultDataset() *Dataset {
	return NewDataset(100, 5)
}

// NewDataset builds posts with ids 1..posts, ten per user, and commentsPerPost
// comments for each post. Comment ids are globally unique and every email has an '@'.
func NewDataset(posts, commentsPerPost int) *Dataset {
	d := &Dataset{
		posts:    make([]core.Post, 0, posts),
		comments: make(map[int][]core.Comment, posts),
	}
	for id := 1; id <= posts; id++ {
		d.posts = append(d.posts, core.Post{
			ID:     id,
			UserID: (id-1)/postsPerUser + 1,
			Title:  phrase(id, 6),
			Body:   phrase(id*7, 18),
		})
		comments := make([]core.Comment, 0, commentsPerPost)
		for j := 1; j <= commentsPerPost; j++ {
			cid := (id-1)*commentsPerPost + j
			comments = append(comments, core.Comment{
				PostID: id,
				ID:     cid,
				Name:   phrase(cid*3, 5),
				Email:  fmt.Sprintf("%s.%d@example.com", words[cid%len(words)], cid),
				Body:   phrase(cid*11, 14),
			})
		}
		d.comments[id] = comments
	}
	return d
}

// Posts returns all posts, optionally filtered by user id (0 means no filter).
func (d *Dataset) Posts(userID int) []core.Post {
	if userID == 0 {
		return d.posts
	}
	out := make([]core.Post, 0, postsPerUser)
	for _, p := range d.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out
}

// Post returns the post with the given id.
func (d *Dataset) Post(id int) (core.Post, bool) {
	if id < 1 || id > len(d.posts) {
		return core.Post{}, false
	}
	return d.posts[id-1], true
}

// Comments returns the comments of a post. Unknown posts yield an empty, non-nil slice.
func (d *Dataset) Comments(postID int) []core.Comment {
	if c, ok := d.comments[postID]; ok {
		return c
	}
	return []core.Comment{}
}

func phrase(seed, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = words[(seed*31+i*17)%len(words)]
	}
	return strings.Join(parts, " ")
}
