package site

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"blogicum/database"
	"blogicum/media"
)

type apiPost struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Text         string    `json:"text"`
	PubDate      time.Time `json:"pub_date"`
	Author       string    `json:"author"`
	Category     string    `json:"category,omitempty"`
	Location     string    `json:"location,omitempty"`
	CommentCount int64     `json:"comment_count"`
	Image        string    `json:"image,omitempty"`
}

type apiPostsPage struct {
	Page     int       `json:"page"`
	NumPages int       `json:"num_pages"`
	Count    int64     `json:"count"`
	Next     *int      `json:"next"`
	Previous *int      `json:"previous"`
	Results  []apiPost `json:"results"`
}

// APIPosts is the home listing as JSON.
func (s *Site) APIPosts(w http.ResponseWriter, r *http.Request) {
	page, err := database.ListPosts(s.dbFor(r), database.PostFilter{Now: s.now()}, r.URL.Query().Get("page"))
	if err != nil {
		log.Printf("List posts for the API: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := apiPostsPage{
		Page:     page.Number,
		NumPages: page.NumPages,
		Count:    page.Total,
		Results:  make([]apiPost, 0, len(page.Items)),
	}
	if page.HasNext() {
		next := page.NextNumber()
		resp.Next = &next
	}
	if page.HasPrevious() {
		prev := page.PreviousNumber()
		resp.Previous = &prev
	}

	for _, post := range page.Items {
		item := apiPost{
			ID:           post.ID,
			Title:        post.Title,
			Text:         post.Text,
			PubDate:      post.PubDate,
			Author:       post.Author.Username,
			CommentCount: post.CommentCount,
			Image:        media.URL(post.Image),
		}
		if post.Category != nil {
			item.Category = post.Category.Slug
		}
		if post.Location != nil && post.Location.IsPublished {
			item.Location = post.Location.Name
		}
		resp.Results = append(resp.Results, item)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
