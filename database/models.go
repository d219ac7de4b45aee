package database

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

type User struct {
	ID           uint    `gorm:"primaryKey"`
	Username     string  `gorm:"size:150;uniqueIndex;not null"`
	FirstName    string  `gorm:"size:150"`
	LastName     string  `gorm:"size:150"`
	Email        string  `gorm:"size:254"`
	PasswordHash []byte  `json:"-"`
	SessionToken *string `gorm:"uniqueIndex" json:"-"`
	CreatedAt    time.Time
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) == nil
}

// FullName falls back to the username when no name was given.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}

type Category struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:256;not null"`
	Description string `gorm:"type:text"`
	Slug        string `gorm:"size:64;uniqueIndex;not null"`
	IsPublished bool   `gorm:"not null"`
	CreatedAt   time.Time
}

type Location struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:256;not null"`
	IsPublished bool   `gorm:"not null"`
	CreatedAt   time.Time
}

type ImageMeta struct {
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
	OriginalName string `json:"original_name"`
}

type Post struct {
	ID          uint      `gorm:"primaryKey"`
	Title       string    `gorm:"size:256;not null"`
	Text        string    `gorm:"type:text;not null"`
	PubDate     time.Time `gorm:"index;not null"`
	IsPublished bool      `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Image is the media storage key, empty when the post has no image.
	Image     string `gorm:"size:255"`
	ImageMeta datatypes.JSONType[ImageMeta]

	AuthorID   uint      `gorm:"not null;index"`
	Author     User      `gorm:"constraint:OnDelete:CASCADE"`
	LocationID *uint     `gorm:"index"`
	Location   *Location `gorm:"constraint:OnDelete:SET NULL"`
	CategoryID *uint     `gorm:"index"`
	Category   *Category `gorm:"constraint:OnDelete:SET NULL"`

	CommentCount int64 `gorm:"->;-:migration"`
}

// IsVisible reports whether the post may be shown to anyone other than its
// author. Category must be loaded when CategoryID is set.
func (p *Post) IsVisible(now time.Time) bool {
	if !p.IsPublished || p.PubDate.After(now) {
		return false
	}
	return p.Category == nil || p.Category.IsPublished
}

func (p *Post) IsScheduled(now time.Time) bool {
	return p.PubDate.After(now)
}

type Comment struct {
	ID        uint      `gorm:"primaryKey"`
	Text      string    `gorm:"type:text;not null"`
	PostID    uint      `gorm:"not null;index"`
	Post      Post      `gorm:"constraint:OnDelete:CASCADE"`
	AuthorID  uint      `gorm:"not null;index"`
	Author    User      `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"index"`
}
