package site

import (
	"net/http"

	"blogicum/database"
	"blogicum/forms"
)

type commentData struct {
	PostID  uint
	Comment *database.Comment
	// Form is nil on the delete confirmation page.
	Form *forms.CommentForm
}

// AddComment accepts comments on any post the user is allowed to see.
func (s *Site) AddComment(w http.ResponseWriter, r *http.Request) {
	post, ok := s.loadViewablePost(w, r)
	if !ok {
		return
	}

	form := forms.ParseComment(r)
	if !form.Validate() {
		s.renderDetail(w, r, post, form)
		return
	}

	comment := &database.Comment{
		Text:     form.Text,
		PostID:   post.ID,
		AuthorID: getSignedInUser(r).ID,
	}
	if err := database.CreateComment(s.dbFor(r), comment); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.metrics.CommentsCreated.Inc()

	http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)
}

// loadOwnedComment fetches the comment named in the URL, which must belong to
// the post in the URL. Anyone but its author is sent back to the post page.
func (s *Site) loadOwnedComment(w http.ResponseWriter, r *http.Request) (*database.Comment, bool) {
	postID, ok := urlIDParam(r, "postID")
	if !ok {
		s.notFound(w, r)
		return nil, false
	}
	commentID, ok := urlIDParam(r, "commentID")
	if !ok {
		s.notFound(w, r)
		return nil, false
	}

	comment, err := database.GetComment(s.dbFor(r), postID, commentID)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if comment.AuthorID != getSignedInUser(r).ID {
		http.Redirect(w, r, postURL(postID), http.StatusSeeOther)
		return nil, false
	}
	return comment, true
}

func (s *Site) EditComment(w http.ResponseWriter, r *http.Request) {
	comment, ok := s.loadOwnedComment(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		s.RenderTemplate(w, r, "comment", commentData{PostID: comment.PostID, Comment: comment, Form: forms.CommentFormFor(comment)})

	case "POST":
		form := forms.ParseComment(r)
		if !form.Validate() {
			s.RenderTemplate(w, r, "comment", commentData{PostID: comment.PostID, Comment: comment, Form: form})
			return
		}
		if err := database.UpdateCommentText(s.dbFor(r), comment, form.Text); err != nil {
			s.serverError(w, r, err)
			return
		}
		http.Redirect(w, r, postURL(comment.PostID), http.StatusSeeOther)

	default:
		methodNotAllowed(w)
	}
}

func (s *Site) DeleteComment(w http.ResponseWriter, r *http.Request) {
	comment, ok := s.loadOwnedComment(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		s.RenderTemplate(w, r, "comment", commentData{PostID: comment.PostID, Comment: comment})

	case "POST":
		if err := database.DeleteComment(s.dbFor(r), comment); err != nil {
			s.serverError(w, r, err)
			return
		}
		http.Redirect(w, r, postURL(comment.PostID), http.StatusSeeOther)

	default:
		methodNotAllowed(w)
	}
}
