package models

import "time"

// AuthorView is the public projection of a post author.
type AuthorView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CommenterView is the public projection of a comment author.
type CommenterView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// CommentView is a comment with its author resolved. Author is nil when the
// author no longer exists.
type CommentView struct {
	ID        string         `json:"id"`
	Author    *CommenterView `json:"author"`
	Text      string         `json:"text"`
	CreatedAt time.Time      `json:"createdAt"`
}

// PostView is a post with its author and commenters resolved.
type PostView struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Content    string        `json:"content"`
	Author     *AuthorView   `json:"author"`
	Tags       []string      `json:"tags"`
	Likes      LikeSet       `json:"likes"`
	LikesCount int           `json:"likesCount"`
	Comments   []CommentView `json:"comments"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// PostPage is one page of the post listing.
type PostPage struct {
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Posts []*PostView `json:"posts"`
}

// LikeResult reports the state of a like after a toggle.
type LikeResult struct {
	LikesCount int  `json:"likesCount"`
	Liked      bool `json:"liked"`
}

// ProfileView is returned after a profile update.
type ProfileView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// NewPostView projects p, resolving user IDs through users. Missing users
// leave the corresponding author nil.
func NewPostView(p *Post, users map[string]*User) *PostView {
	v := &PostView{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		Tags:       p.Tags,
		Likes:      p.Likes,
		LikesCount: len(p.Likes),
		Comments:   make([]CommentView, 0, len(p.Comments)),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if v.Likes == nil {
		v.Likes = LikeSet{}
	}
	if u, ok := users[p.AuthorID]; ok {
		v.Author = &AuthorView{ID: u.ID, Username: u.Username, Email: u.Email}
	}
	for _, c := range p.Comments {
		cv := CommentView{ID: c.ID, Text: c.Text, CreatedAt: c.CreatedAt}
		if u, ok := users[c.AuthorID]; ok {
			cv.Author = &CommenterView{ID: u.ID, Username: u.Username}
		}
		v.Comments = append(v.Comments, cv)
	}
	return v
}

// UserIDs returns the distinct user IDs referenced by p: its author followed
// by its commenters in order of first appearance.
func (p *Post) UserIDs() []string {
	seen := map[string]bool{p.AuthorID: true}
	ids := []string{p.AuthorID}
	for _, c := range p.Comments {
		if !seen[c.AuthorID] {
			seen[c.AuthorID] = true
			ids = append(ids, c.AuthorID)
		}
	}
	return ids
}
