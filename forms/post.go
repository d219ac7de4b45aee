package forms

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"blogicum/constants"
	"blogicum/database"
	"blogicum/media"
)

// Upload is an image submitted with a post form. ContentType is sniffed from
// the file contents, not taken from the client.
type Upload struct {
	Header      *multipart.FileHeader
	ContentType string
}

func (u *Upload) Open() (multipart.File, error) {
	return u.Header.Open()
}

func (u *Upload) Size() int64 {
	return u.Header.Size
}

func (u *Upload) Filename() string {
	return u.Header.Filename
}

type PostForm struct {
	Title       string
	Text        string
	PubDate     string
	Category    string
	Location    string
	IsPublished bool
	ClearImage  bool

	// CurrentImage is the stored image key of the post being edited.
	CurrentImage string
	Image        *Upload

	Errors Errors

	pubDate    time.Time
	categoryID *uint
	locationID *uint
}

func NewPostForm(now time.Time) *PostForm {
	return &PostForm{
		PubDate:     now.UTC().Format(DateTimeLocalLayout),
		IsPublished: true,
		Errors:      Errors{},
	}
}

func PostFormFor(post *database.Post) *PostForm {
	f := &PostForm{
		Title:        post.Title,
		Text:         post.Text,
		PubDate:      post.PubDate.UTC().Format(DateTimeLocalLayout),
		IsPublished:  post.IsPublished,
		CurrentImage: post.Image,
		Errors:       Errors{},
	}
	if post.CategoryID != nil {
		f.Category = strconv.FormatUint(uint64(*post.CategoryID), 10)
	}
	if post.LocationID != nil {
		f.Location = strconv.FormatUint(uint64(*post.LocationID), 10)
	}
	return f
}

// ParsePost reads a multipart or urlencoded post form. A body that cannot be
// read is reported as a form error rather than returned.
func ParsePost(r *http.Request) *PostForm {
	f := &PostForm{Errors: Errors{}}

	err := r.ParseMultipartForm(constants.MAX_IMAGE_SIZE)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		f.Errors.Add(NonFieldErrors, "The submitted form could not be read.")
	}

	f.Title = strings.TrimSpace(r.PostFormValue("title"))
	f.Text = r.PostFormValue("text")
	f.PubDate = strings.TrimSpace(r.PostFormValue("pub_date"))
	f.Category = strings.TrimSpace(r.PostFormValue("category"))
	f.Location = strings.TrimSpace(r.PostFormValue("location"))
	f.IsPublished = r.PostFormValue("is_published") == "on"
	f.ClearImage = r.PostFormValue("image-clear") == "on"

	if r.MultipartForm != nil {
		if headers := r.MultipartForm.File["image"]; len(headers) > 0 && headers[0].Size > 0 {
			upload, err := sniffUpload(headers[0])
			if err != nil {
				f.Errors.Add("image", "The submitted file could not be read.")
			} else {
				f.Image = upload
			}
		}
	}
	return f
}

func sniffUpload(header *multipart.FileHeader) (*Upload, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &Upload{Header: header, ContentType: http.DetectContentType(buf[:n])}, nil
}

func (f *PostForm) Validate() bool {
	if required(f.Errors, "title", f.Title) {
		maxLength(f.Errors, "title", f.Title, constants.MAX_TITLE_LENGTH)
	}
	required(f.Errors, "text", f.Text)

	if required(f.Errors, "pub_date", f.PubDate) {
		date, err := tryParseDate(f.PubDate)
		if err != nil {
			f.Errors.Add("pub_date", "Enter a valid date/time.")
		} else {
			f.pubDate = date
		}
	}

	f.categoryID = parseChoice(f.Errors, "category", f.Category)
	f.locationID = parseChoice(f.Errors, "location", f.Location)

	if f.Image != nil {
		if _, ok := media.AllowedImageTypes[f.Image.ContentType]; !ok {
			f.Errors.Add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		} else if f.Image.Size() > constants.MAX_IMAGE_SIZE {
			f.Errors.Add("image", fmt.Sprintf("The image must be at most %d MB.", constants.MAX_IMAGE_SIZE>>20))
		}
	}
	return !f.Errors.Any()
}

func parseChoice(errs Errors, field, value string) *uint {
	if value == "" {
		return nil
	}
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		errs.Add(field, invalidChoice)
		return nil
	}
	v := uint(id)
	return &v
}

const invalidChoice = "Select a valid choice. That choice is not one of the available choices."

// InvalidChoice marks a category or location that passed parsing but does
// not exist.
func (f *PostForm) InvalidChoice(field string) {
	f.Errors.Add(field, invalidChoice)
}

func (f *PostForm) CategoryID() *uint { return f.categoryID }
func (f *PostForm) LocationID() *uint { return f.locationID }

// Apply copies the validated values onto post. The image is left to the
// caller since it involves the media store.
func (f *PostForm) Apply(post *database.Post) {
	post.Title = f.Title
	post.Text = f.Text
	post.PubDate = f.pubDate
	post.IsPublished = f.IsPublished
	post.CategoryID = f.categoryID
	post.Category = nil
	post.LocationID = f.locationID
	post.Location = nil
}

type CommentForm struct {
	Text   string
	Errors Errors
}

func NewCommentForm() *CommentForm {
	return &CommentForm{Errors: Errors{}}
}

func CommentFormFor(comment *database.Comment) *CommentForm {
	return &CommentForm{Text: comment.Text, Errors: Errors{}}
}

func ParseComment(r *http.Request) *CommentForm {
	return &CommentForm{
		Text:   strings.TrimSpace(r.PostFormValue("text")),
		Errors: Errors{},
	}
}

func (f *CommentForm) Validate() bool {
	required(f.Errors, "text", f.Text)
	return !f.Errors.Any()
}
