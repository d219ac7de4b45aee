// Package site serves the blog over HTTP.
package site

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"blogicum/config"
	"blogicum/database"
	"blogicum/media"
	"blogicum/metrics"
	"blogicum/pages"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"gorm.io/gorm"
)

type Site struct {
	db      *gorm.DB
	media   media.Storage
	metrics *metrics.Metrics
	cfg     config.ServerConfig
	now     func() time.Time
}

func New(db *gorm.DB, store media.Storage, m *metrics.Metrics, cfg config.ServerConfig) *Site {
	return &Site{
		db:      db,
		media:   store,
		metrics: m,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Site) Routes() http.Handler {
	r := chi.NewRouter()

	CORSMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	r.Use(CORSMiddleware.Handler)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(httprate.LimitByIP(s.cfg.RateLimitPerMinute, time.Minute))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(s.metrics.Middleware)
	r.Use(s.TryPutUserInContextMiddleware)

	r.NotFound(s.notFound)

	r.Get("/", s.Index)
	r.Get("/posts/{postID}", s.PostDetail)
	r.Get("/category/{categorySlug}", s.CategoryPosts)
	r.Get("/profile/{username}", s.Profile)

	r.Group(func(r chi.Router) {
		r.Use(GuestOnlyMiddleware)
		r.HandleFunc("/auth/login", s.UserSignIn)
		r.HandleFunc("/auth/registration", s.UserSignUp)
	})
	r.Post("/auth/logout", s.UserLogout)

	r.Group(func(r chi.Router) {
		r.Use(AuthProtectedMiddleware)
		r.HandleFunc("/posts/create", s.CreatePost)
		r.HandleFunc("/posts/{postID}/edit", s.EditPost)
		r.HandleFunc("/posts/{postID}/delete", s.DeletePost)
		r.Post("/posts/{postID}/comment", s.AddComment)
		r.HandleFunc("/posts/{postID}/edit_comment/{commentID}", s.EditComment)
		r.HandleFunc("/posts/{postID}/delete_comment/{commentID}", s.DeleteComment)
		r.HandleFunc("/edit_profile", s.EditProfile)
	})

	r.Get("/media/*", s.ServeMedia)

	r.Route("/api", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Get("/posts", s.APIPosts)
		})
	})

	r.Handle("/metrics", s.metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	return r
}

// dbFor scopes database calls to the request.
func (s *Site) dbFor(r *http.Request) *gorm.DB {
	return s.db.WithContext(r.Context())
}

func (s *Site) layoutProps(r *http.Request) pages.LayoutProps {
	props := pages.LayoutProps{}
	if user := getSignedInUserOrNil(r); user != nil {
		props.CurrentUser = user.Username
	}
	return props
}

func (s *Site) notFound(w http.ResponseWriter, r *http.Request) {
	if err := pages.Write(w, http.StatusNotFound, pages.NotFound(s.layoutProps(r))); err != nil {
		log.Printf("Render not found page: %v", err)
	}
}

func (s *Site) serverError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("%s %s [%s]: %v", r.Method, r.URL.Path, middleware.GetReqID(r.Context()), err)
	if err := pages.Write(w, http.StatusInternalServerError, pages.ServerError(s.layoutProps(r))); err != nil {
		log.Printf("Render server error page: %v", err)
	}
}

// fail shows the 404 page for missing records and the 500 page otherwise.
func (s *Site) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, database.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	s.serverError(w, r, err)
}

func urlIDParam(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

func postURL(id uint) string {
	return "/posts/" + strconv.FormatUint(uint64(id), 10)
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username)
}
