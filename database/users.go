package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrUsernameTaken = errors.New("username already taken")

func CreateUser(db *gorm.DB, user *User) error {
	exists, err := UsernameExists(db, user.Username)
	if err != nil {
		return err
	}
	if exists {
		return ErrUsernameTaken
	}

	err = db.Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUsernameTaken
	}
	return err
}

func UsernameExists(db *gorm.DB, username string) (bool, error) {
	var n int64
	if err := db.Model(&User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func GetUserByUsername(db *gorm.DB, username string) (*User, error) {
	var user User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func GetUserBySessionToken(db *gorm.DB, token string) (*User, error) {
	var user User
	if err := db.Where("session_token = ?", token).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// SetSessionToken stores token on the user, nil signs the user out.
func SetSessionToken(db *gorm.DB, user *User, token *string) error {
	err := db.Model(&User{}).Where("id = ?", user.ID).Update("session_token", token).Error
	if err != nil {
		return fmt.Errorf("set session token for user %d: %w", user.ID, err)
	}
	user.SessionToken = token
	return nil
}

// UpdateProfile saves the editable profile fields. The username never changes.
func UpdateProfile(db *gorm.DB, user *User) error {
	return db.Model(&User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"email":      user.Email,
	}).Error
}
