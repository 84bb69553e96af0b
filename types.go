package folio

import "time"

// User is an account that can sign in. Only admins reach the back-office.
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
}

// Category groups posts one-to-many.
type Category struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	CreatedAt time.Time `db:"created_at"`
	// PostCount is only filled by the counting list queries.
	PostCount int `db:"post_count"`
}

// Tag labels posts many-to-many.
type Tag struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	CreatedAt time.Time `db:"created_at"`
	PostCount int       `db:"post_count"`
}

// Post is a blog entry. Content always holds sanitized HTML.
type Post struct {
	ID              int64     `db:"id"`
	Title           string    `db:"title"`
	Slug            string    `db:"slug"`
	Summary         string    `db:"summary"`
	Content         string    `db:"content"`
	Published       bool      `db:"published"`
	FeaturedImage   string    `db:"featured_image"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
	MetaDescription string    `db:"meta_description"`
	MetaKeywords    string    `db:"meta_keywords"`
	AuthorID        int64     `db:"author_id"`
	CategoryID      *int64    `db:"category_id"`

	// Filled by the eager-loading getters, see Store.GetPostBySlug.
	AuthorName   string `db:"author_name"`
	CategoryName string `db:"category_name"`
	CategorySlug string `db:"category_slug"`
	Tags         []Tag  `db:"-"`
}

// LastModified is the sitemap timestamp for the post.
func (p Post) LastModified() time.Time {
	if p.UpdatedAt.IsZero() {
		return p.CreatedAt
	}
	return p.UpdatedAt
}

// TagIDs returns the ids of the loaded tags.
func (p Post) TagIDs() []int64 {
	ids := make([]int64, len(p.Tags))
	for i, t := range p.Tags {
		ids[i] = t.ID
	}
	return ids
}

// Media is the metadata row for an uploaded gallery file.
type Media struct {
	ID         int64     `db:"id"`
	Filename   string    `db:"filename"`
	Filepath   string    `db:"filepath"`
	Filetype   string    `db:"filetype"`
	Filesize   int64     `db:"filesize"`
	AltText    string    `db:"alt_text"`
	UploadedBy int64     `db:"uploaded_by"`
	CreatedAt  time.Time `db:"created_at"`

	UploaderName string `db:"uploader_name"`
	// URL is resolved by the handler from the media backend.
	URL string `db:"-"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items   []T
	Number  int
	PerPage int
	Total   int
}

// Pages returns the number of pages, at least 1.
func (p Page[T]) Pages() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

func (p Page[T]) HasPrev() bool { return p.Number > 1 }
func (p Page[T]) HasNext() bool { return p.Number < p.Pages() }

// PageMeta carries per-page SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	Keywords    string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}
