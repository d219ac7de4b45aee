package site

import (
	"fmt"
	"log"
	"net/http"

	"blogicum/database"
	"blogicum/forms"
	"blogicum/media"

	"github.com/go-chi/chi/v5"
	"gorm.io/datatypes"
)

// storeImage uploads the image and points post at it.
func (s *Site) storeImage(r *http.Request, post *database.Post, upload *forms.Upload) error {
	file, err := upload.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	key := media.NewImageKey(upload.ContentType)
	if err := s.media.Put(r.Context(), key, upload.ContentType, file, upload.Size()); err != nil {
		return fmt.Errorf("store image %s: %w", key, err)
	}

	post.Image = key
	post.ImageMeta = datatypes.NewJSONType(database.ImageMeta{
		ContentType:  upload.ContentType,
		Size:         upload.Size(),
		OriginalName: upload.Filename(),
	})
	return nil
}

func clearImage(post *database.Post) {
	post.Image = ""
	post.ImageMeta = datatypes.NewJSONType(database.ImageMeta{})
}

// removeImage deletes a stored image. Failures only leave an orphaned object
// behind, so they are logged.
func (s *Site) removeImage(r *http.Request, key string) {
	if key == "" {
		return
	}
	if err := s.media.Remove(r.Context(), key); err != nil {
		log.Printf("Remove image %s: %v", key, err)
	}
}

func (s *Site) ServeMedia(w http.ResponseWriter, r *http.Request) {
	key, err := media.CleanKey(chi.URLParam(r, "*"))
	if err != nil {
		s.notFound(w, r)
		return
	}
	s.media.ServeObject(w, r, key)
}
