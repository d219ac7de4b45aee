package site

import (
	"net/http"

	"blogicum/database"
	"blogicum/forms"

	"github.com/go-chi/chi/v5"
)

// Profile lists a user's posts. Owners also see their drafts and scheduled
// posts.
func (s *Site) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := database.GetUserByUsername(s.dbFor(r), chi.URLParam(r, "username"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	viewer := getSignedInUserOrNil(r)
	isOwner := viewer != nil && viewer.ID == profile.ID

	filter := database.PostFilter{Now: s.now(), AuthorID: profile.ID, IncludeHidden: isOwner}
	page, err := database.ListPosts(s.dbFor(r), filter, r.URL.Query().Get("page"))
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.RenderTemplate(w, r, "profile", profileData{Profile: profile, IsOwner: isOwner, Page: page})
}

func (s *Site) EditProfile(w http.ResponseWriter, r *http.Request) {
	user := getSignedInUser(r)

	switch r.Method {
	case "GET":
		s.RenderTemplate(w, r, "user", forms.ProfileFormFor(user))

	case "POST":
		form := forms.ParseProfile(r, user)
		if !form.Validate() {
			s.RenderTemplate(w, r, "user", form)
			return
		}

		form.Apply(user)
		if err := database.UpdateProfile(s.dbFor(r), user); err != nil {
			s.serverError(w, r, err)
			return
		}
		http.Redirect(w, r, profileURL(user.Username), http.StatusSeeOther)

	default:
		methodNotAllowed(w)
	}
}
