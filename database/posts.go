package database

import (
	"fmt"
	"time"

	"blogicum/constants"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Visible keeps posts that are published, not scheduled after now, and either
// uncategorized or in a published category.
func Visible(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.
			Joins("LEFT JOIN categories ON categories.id = posts.category_id").
			Where("posts.is_published = ? AND posts.pub_date <= ?", true, now).
			Where("(posts.category_id IS NULL OR categories.is_published = ?)", true)
	}
}

// WithCommentCount fills Post.CommentCount.
func WithCommentCount(tx *gorm.DB) *gorm.DB {
	return tx.Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count")
}

func withRelations(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Author").Preload("Category").Preload("Location")
}

// PostFilter describes a post listing. The zero value lists every visible
// post as of the zero time, so Now should always be set.
type PostFilter struct {
	Now time.Time

	// IncludeHidden skips the visibility filter, used when an author looks
	// at their own profile.
	IncludeHidden bool
	AuthorID      uint
	CategoryID    uint
}

func (f PostFilter) scope(tx *gorm.DB) *gorm.DB {
	if !f.IncludeHidden {
		tx = tx.Scopes(Visible(f.Now))
	}
	if f.AuthorID != 0 {
		tx = tx.Where("posts.author_id = ?", f.AuthorID)
	}
	if f.CategoryID != 0 {
		tx = tx.Where("posts.category_id = ?", f.CategoryID)
	}
	return tx
}

// ListPosts returns the requested page of posts, newest publication first,
// with comment counts and author/category/location loaded.
func ListPosts(db *gorm.DB, filter PostFilter, pageParam string) (Page[Post], error) {
	var total int64
	if err := db.Model(&Post{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return Page[Post]{}, fmt.Errorf("count posts: %w", err)
	}

	page := newPage[Post](total, constants.POSTS_PER_PAGE, pageParam)

	err := db.Model(&Post{}).
		Scopes(filter.scope, WithCommentCount, withRelations).
		Order("posts.pub_date DESC").
		Order("posts.id DESC").
		Limit(page.PerPage).
		Offset(page.Offset()).
		Find(&page.Items).Error
	if err != nil {
		return Page[Post]{}, fmt.Errorf("list posts: %w", err)
	}
	return page, nil
}

func GetPost(db *gorm.DB, id uint) (*Post, error) {
	var post Post
	err := db.Model(&Post{}).
		Scopes(WithCommentCount, withRelations).
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func CreatePost(db *gorm.DB, post *Post) error {
	return db.Omit(clause.Associations).Create(post).Error
}

// UpdatePost saves every column of post. Loaded associations are ignored, only
// the *ID fields decide the relations.
func UpdatePost(db *gorm.DB, post *Post) error {
	return db.Omit(clause.Associations).Save(post).Error
}

// DeletePost removes the post and its comments in one transaction. The
// foreign key cascades the same way, the explicit delete covers connections
// that do not enforce it.
func DeletePost(db *gorm.DB, post *Post) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments of post %d: %w", post.ID, err)
		}
		if err := tx.Delete(&Post{}, post.ID).Error; err != nil {
			return fmt.Errorf("delete post %d: %w", post.ID, err)
		}
		return nil
	})
}
