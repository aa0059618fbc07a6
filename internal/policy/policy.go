// Package policy holds the authorization rules for posts and comments.
package policy

import "inkpost/internal/models"

// CanModifyPost reports whether actor may update or delete post.
// Only the post's author may.
func CanModifyPost(post *models.Post, actor models.Actor) bool {
	return post != nil && actor.ID != "" && actor.ID == post.AuthorID
}

// CanDeleteComment reports whether actor may remove comment from post: the
// comment's author, the post's author and administrators may.
func CanDeleteComment(post *models.Post, comment models.Comment, actor models.Actor) bool {
	if post == nil {
		return false
	}
	if actor.Role.IsAdmin() {
		return true
	}
	if actor.ID == "" {
		return false
	}
	return actor.ID == comment.AuthorID || actor.ID == post.AuthorID
}
