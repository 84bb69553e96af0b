package folio

import "time"

// Flash is a one-shot message stored in the session.
type Flash struct {
	Kind    string // "success", "info" or "error"
	Message string
}

// Sidebar is shown beside public listings.
type Sidebar struct {
	Categories  []Category
	PopularTags []Tag
	Recent      []Post
}

// PageData is passed to every view.
type PageData struct {
	Site    SiteConfig
	Meta    PageMeta
	Caller  Caller
	CSRF    string
	Flashes []Flash
	Sidebar Sidebar
	// Path is the request path, used to mark the active nav entry.
	Path string
	// MediaURL resolves a stored media path to its public URL.
	MediaURL func(string) string
}

// PostEditor is the data for the admin post form.
type PostEditor struct {
	ID         int64 // zero for a new post
	Post       Post
	Form       PostForm
	Categories []Category
	Tags       []Tag
	Error      *ValidationError
}

// Selected reports whether tag id is checked in the form.
func (e PostEditor) Selected(id int64) bool {
	for _, t := range e.Form.TagIDs {
		if t == id {
			return true
		}
	}
	return false
}

// TermEditor is the data for the category and tag forms.
type TermEditor struct {
	Kind  string // "category" or "tag"
	ID    int64
	Form  TermForm
	Error *ValidationError
}

// UserEditor is the data for the admin user form.
type UserEditor struct {
	ID    int64
	Form  UserForm
	Error *ValidationError
}

// Dashboard is the admin landing page.
type Dashboard struct {
	Counts Counts
	Recent []Post
	System SystemInfo
}

// SystemInfo describes the running instance.
type SystemInfo struct {
	Version      string
	GoVersion    string
	Driver       string
	MediaBackend string
	StartedAt    time.Time
}
