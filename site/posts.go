package site

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"blogicum/constants"
	"blogicum/database"
	"blogicum/forms"

	"github.com/go-chi/chi/v5"
)

type listingData struct {
	Page database.Page[database.Post]
}

type categoryData struct {
	Category *database.Category
	Page     database.Page[database.Post]
}

type profileData struct {
	Profile *database.User
	IsOwner bool
	Page    database.Page[database.Post]
}

type detailData struct {
	Post     *database.Post
	Comments []database.Comment
	Form     *forms.CommentForm
	IsOwner  bool
}

type postFormData struct {
	Form       *forms.PostForm
	Post       *database.Post
	Deleting   bool
	Categories []database.Category
	Locations  []database.Location
}

func (s *Site) Index(w http.ResponseWriter, r *http.Request) {
	page, err := database.ListPosts(s.dbFor(r), database.PostFilter{Now: s.now()}, r.URL.Query().Get("page"))
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.RenderTemplate(w, r, "index", listingData{Page: page})
}

func (s *Site) CategoryPosts(w http.ResponseWriter, r *http.Request) {
	category, err := database.GetPublishedCategory(s.dbFor(r), chi.URLParam(r, "categorySlug"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	filter := database.PostFilter{Now: s.now(), CategoryID: category.ID}
	page, err := database.ListPosts(s.dbFor(r), filter, r.URL.Query().Get("page"))
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.RenderTemplate(w, r, "category", categoryData{Category: category, Page: page})
}

// canView lets authors see their own hidden posts.
func (s *Site) canView(r *http.Request, post *database.Post) bool {
	if post.IsVisible(s.now()) {
		return true
	}
	user := getSignedInUserOrNil(r)
	return user != nil && user.ID == post.AuthorID
}

// loadViewablePost fetches the post named in the URL and writes the 404 page
// when it is missing or hidden from the current user.
func (s *Site) loadViewablePost(w http.ResponseWriter, r *http.Request) (*database.Post, bool) {
	postID, ok := urlIDParam(r, "postID")
	if !ok {
		s.notFound(w, r)
		return nil, false
	}
	post, err := database.GetPost(s.dbFor(r), postID)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if !s.canView(r, post) {
		s.notFound(w, r)
		return nil, false
	}
	return post, true
}

func (s *Site) renderDetail(w http.ResponseWriter, r *http.Request, post *database.Post, form *forms.CommentForm) {
	comments, err := database.ListComments(s.dbFor(r), post.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	user := getSignedInUserOrNil(r)
	s.RenderTemplate(w, r, "detail", detailData{
		Post:     post,
		Comments: comments,
		Form:     form,
		IsOwner:  user != nil && user.ID == post.AuthorID,
	})
}

func (s *Site) PostDetail(w http.ResponseWriter, r *http.Request) {
	post, ok := s.loadViewablePost(w, r)
	if !ok {
		return
	}
	s.renderDetail(w, r, post, forms.NewCommentForm())
}

// loadOwnedPost fetches the post named in the URL for a mutation. Anyone but
// the author is sent back to the post page.
func (s *Site) loadOwnedPost(w http.ResponseWriter, r *http.Request) (*database.Post, bool) {
	postID, ok := urlIDParam(r, "postID")
	if !ok {
		s.notFound(w, r)
		return nil, false
	}
	post, err := database.GetPost(s.dbFor(r), postID)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if post.AuthorID != getSignedInUser(r).ID {
		http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)
		return nil, false
	}
	return post, true
}

func (s *Site) renderPostForm(w http.ResponseWriter, r *http.Request, data postFormData) {
	var err error
	if data.Categories, err = database.ListCategories(s.dbFor(r)); err != nil {
		s.serverError(w, r, err)
		return
	}
	if data.Locations, err = database.ListLocations(s.dbFor(r)); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.RenderTemplate(w, r, "create", data)
}

// parsePostForm reads and validates a submitted post, including that the
// chosen category and location exist.
func (s *Site) parsePostForm(w http.ResponseWriter, r *http.Request) (*forms.PostForm, bool, error) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MAX_IMAGE_SIZE+1<<20)
	form := forms.ParsePost(r)
	valid := form.Validate()

	if id := form.CategoryID(); id != nil {
		if _, err := database.GetCategory(s.dbFor(r), *id); errors.Is(err, database.ErrNotFound) {
			form.InvalidChoice("category")
			valid = false
		} else if err != nil {
			return nil, false, err
		}
	}
	if id := form.LocationID(); id != nil {
		if _, err := database.GetLocation(s.dbFor(r), *id); errors.Is(err, database.ErrNotFound) {
			form.InvalidChoice("location")
			valid = false
		} else if err != nil {
			return nil, false, err
		}
	}
	return form, valid, nil
}

func (s *Site) CreatePost(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.renderPostForm(w, r, postFormData{Form: forms.NewPostForm(s.now())})

	case "POST":
		form, valid, err := s.parsePostForm(w, r)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		if !valid {
			s.renderPostForm(w, r, postFormData{Form: form})
			return
		}

		user := getSignedInUser(r)
		post := &database.Post{AuthorID: user.ID}
		form.Apply(post)

		if form.Image != nil {
			if err := s.storeImage(r, post, form.Image); err != nil {
				s.serverError(w, r, err)
				return
			}
		}

		if err := database.CreatePost(s.dbFor(r), post); err != nil {
			s.removeImage(r, post.Image)
			s.serverError(w, r, fmt.Errorf("create post: %w", err))
			return
		}
		s.metrics.PostsCreated.Inc()

		http.Redirect(w, r, profileURL(user.Username), http.StatusSeeOther)

	default:
		methodNotAllowed(w)
	}
}

func (s *Site) EditPost(w http.ResponseWriter, r *http.Request) {
	post, ok := s.loadOwnedPost(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		s.renderPostForm(w, r, postFormData{Form: forms.PostFormFor(post), Post: post})

	case "POST":
		form, valid, err := s.parsePostForm(w, r)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		if !valid {
			form.CurrentImage = post.Image
			s.renderPostForm(w, r, postFormData{Form: form, Post: post})
			return
		}

		form.Apply(post)

		oldImage := post.Image
		switch {
		case form.Image != nil:
			if err := s.storeImage(r, post, form.Image); err != nil {
				s.serverError(w, r, err)
				return
			}
		case form.ClearImage:
			clearImage(post)
		}

		if err := database.UpdatePost(s.dbFor(r), post); err != nil {
			if post.Image != oldImage {
				s.removeImage(r, post.Image)
			}
			s.serverError(w, r, fmt.Errorf("update post %d: %w", post.ID, err))
			return
		}
		if post.Image != oldImage {
			s.removeImage(r, oldImage)
		}

		http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)

	default:
		methodNotAllowed(w)
	}
}

// DeletePost asks for confirmation on GET and deletes on POST.
func (s *Site) DeletePost(w http.ResponseWriter, r *http.Request) {
	post, ok := s.loadOwnedPost(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		s.renderPostForm(w, r, postFormData{Form: forms.PostFormFor(post), Post: post, Deleting: true})

	case "POST":
		if err := database.DeletePost(s.dbFor(r), post); err != nil {
			s.serverError(w, r, err)
			return
		}
		s.removeImage(r, post.Image)
		s.metrics.PostsDeleted.Inc()

		log.Printf("Post %d deleted by its author", post.ID)
		http.Redirect(w, r, profileURL(getSignedInUser(r).Username), http.StatusSeeOther)

	default:
		methodNotAllowed(w)
	}
}
