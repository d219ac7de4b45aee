package database

import (
	"errors"
	"fmt"
	"log"

	"blogicum/config"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// GetPublishedCategory returns ErrNotFound for unknown and unpublished slugs alike.
func GetPublishedCategory(db *gorm.DB, categorySlug string) (*Category, error) {
	var category Category
	err := db.Where("slug = ? AND is_published = ?", categorySlug, true).First(&category).Error
	if err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func GetCategory(db *gorm.DB, id uint) (*Category, error) {
	var category Category
	if err := db.First(&category, id).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func ListCategories(db *gorm.DB) ([]Category, error) {
	var categories []Category
	err := db.Order("title ASC").Find(&categories).Error
	return categories, err
}

// CreateCategory derives the slug from the title when none is given.
func CreateCategory(db *gorm.DB, category *Category) error {
	if category.Slug == "" {
		category.Slug = slug.Make(category.Title)
	}
	return db.Create(category).Error
}

func GetLocation(db *gorm.DB, id uint) (*Location, error) {
	var location Location
	if err := db.First(&location, id).Error; err != nil {
		return nil, translate(err)
	}
	return &location, nil
}

func ListLocations(db *gorm.DB) ([]Location, error) {
	var locations []Location
	err := db.Order("name ASC").Find(&locations).Error
	return locations, err
}

func CreateLocation(db *gorm.DB, location *Location) error {
	return db.Create(location).Error
}

// Seed creates the configured categories and locations that do not exist
// yet. Existing rows are left untouched.
func Seed(db *gorm.DB, seed config.SeedConfig) error {
	for _, c := range seed.Categories {
		category := Category{
			Title:       c.Title,
			Slug:        c.Slug,
			Description: c.Description,
			IsPublished: c.Published == nil || *c.Published,
		}
		if category.Slug == "" {
			category.Slug = slug.Make(category.Title)
		}

		var existing Category
		err := db.Where("slug = ?", category.Slug).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("look up category %q: %w", category.Slug, err)
		}
		if err := CreateCategory(db, &category); err != nil {
			return fmt.Errorf("seed category %q: %w", category.Slug, err)
		}
		log.Printf("Seeded category %q", category.Slug)
	}

	for _, l := range seed.Locations {
		location := Location{
			Name:        l.Name,
			IsPublished: l.Published == nil || *l.Published,
		}

		var existing Location
		err := db.Where("name = ?", location.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("look up location %q: %w", location.Name, err)
		}
		if err := CreateLocation(db, &location); err != nil {
			return fmt.Errorf("seed location %q: %w", location.Name, err)
		}
		log.Printf("Seeded location %q", location.Name)
	}
	return nil
}
