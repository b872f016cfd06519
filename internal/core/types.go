package core

// Post is a post record as served by the posts API.
type Post struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Comment is a comment record attached to a post.
type Comment struct {
	PostID int    `json:"postId"`
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Body   string `json:"body"`
}

// API paths of the posts service
const (
	PostsPath       = "/posts"
	PostPathFmt     = "/posts/%d"
	CommentsPathFmt = "/posts/%d/comments"
)
