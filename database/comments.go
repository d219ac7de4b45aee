package database

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListComments returns the comments of a post oldest first.
func ListComments(db *gorm.DB, postID uint) ([]Comment, error) {
	var comments []Comment
	err := db.Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments of post %d: %w", postID, err)
	}
	return comments, nil
}

// GetComment looks a comment up by id, scoped to the post it belongs to.
func GetComment(db *gorm.DB, postID, commentID uint) (*Comment, error) {
	var comment Comment
	err := db.Preload("Author").
		Where("id = ? AND post_id = ?", commentID, postID).
		First(&comment).Error
	if err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func CountComments(db *gorm.DB, postID uint) (int64, error) {
	var n int64
	err := db.Model(&Comment{}).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}

func CreateComment(db *gorm.DB, comment *Comment) error {
	return db.Omit(clause.Associations).Create(comment).Error
}

func UpdateCommentText(db *gorm.DB, comment *Comment, text string) error {
	if err := db.Model(&Comment{}).Where("id = ?", comment.ID).Update("text", text).Error; err != nil {
		return err
	}
	comment.Text = text
	return nil
}

func DeleteComment(db *gorm.DB, comment *Comment) error {
	return db.Delete(&Comment{}, comment.ID).Error
}
