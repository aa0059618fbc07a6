// Package models contains data structures for the application's domain models.
package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is the aggregate root of the blog: one row holds the post together with
// its like set and comment sequence, so a read always sees them as one unit.
type Post struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  string    `gorm:"type:uuid;not null;index" json:"authorId"`
	Tags      []string  `gorm:"type:jsonb;serializer:json;not null" json:"tags"`
	Likes     LikeSet   `gorm:"type:jsonb;serializer:json;not null" json:"likes"`
	Comments  []Comment `gorm:"type:jsonb;serializer:json;not null" json:"comments"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is embedded in its parent Post and has no existence of its own.
type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate assigns the post ID and normalizes the embedded collections
// so they are stored as empty JSON arrays rather than null.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.normalize()
	return nil
}

// BeforeSave keeps the embedded collections non-null on full saves.
func (p *Post) BeforeSave(_ *gorm.DB) error {
	p.normalize()
	return nil
}

func (p *Post) normalize() {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Likes == nil {
		p.Likes = LikeSet{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}

// NewComment builds a comment with a fresh ID.
func NewComment(authorID, text string, now time.Time) Comment {
	return Comment{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: now.UTC(),
	}
}

// FindComment returns the comment with the given ID.
func (p *Post) FindComment(id string) (Comment, bool) {
	i := p.commentIndex(id)
	if i < 0 {
		return Comment{}, false
	}
	return p.Comments[i], true
}

// AppendComment adds c to the end of the comment sequence.
func (p *Post) AppendComment(c Comment) {
	p.Comments = append(p.Comments, c)
}

// RemoveComment deletes the comment with the given ID, keeping the relative
// order of the others. It reports false when no such comment exists.
func (p *Post) RemoveComment(id string) bool {
	i := p.commentIndex(id)
	if i < 0 {
		return false
	}
	p.Comments = slices.Delete(slices.Clone(p.Comments), i, i+1)
	return true
}

func (p *Post) commentIndex(id string) int {
	return slices.IndexFunc(p.Comments, func(c Comment) bool { return c.ID == id })
}

// LikeSet is the set of principal IDs that liked a post. Order carries no
// meaning; each ID appears at most once.
type LikeSet []string

// Has reports whether id is a member of the set.
func (s LikeSet) Has(id string) bool {
	return slices.Contains(s, id)
}

// ToggleLike flips the membership of actorID. It returns the new set and
// whether actorID is a member afterwards. The input set is not modified.
func ToggleLike(likes LikeSet, actorID string) (LikeSet, bool) {
	if likes.Has(actorID) {
		next := make(LikeSet, 0, len(likes)-1)
		for _, id := range likes {
			if id != actorID {
				next = append(next, id)
			}
		}
		return next, false
	}
	next := make(LikeSet, 0, len(likes)+1)
	next = append(next, likes...)
	return append(next, actorID), true
}
