// Package views is the default theme: html/template pages wrapped as templ
// components so they plug into folio.ViewFuncs.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/folio"
)

//go:embed templates
var files embed.FS

// parse builds one page: the layout, the shared partials and the page body.
func parse(layout, page string) *template.Template {
	return template.Must(template.New(page).Funcs(funcs).ParseFS(files,
		"templates/"+layout,
		"templates/partials.html",
		"templates/"+page,
	))
}

// component renders t's layout with data.
func component(t *template.Template, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, "layout", data)
	})
}

type listing struct {
	folio.PageData
	Heading string
	Posts   folio.Page[folio.Post]
	Query   string
}

type postView struct {
	folio.PageData
	Post    folio.Post
	Related []folio.Post
}

type searchView struct {
	listing
	Categories []folio.Category
}

type contactView struct {
	folio.PageData
	Form  folio.ContactForm
	Error *folio.ValidationError
}

type loginView struct {
	folio.PageData
	Form    folio.LoginForm
	Message string
}

type errorView struct {
	folio.PageData
	Code    int
	Heading string
	Message string
}

type dashboardView struct {
	folio.PageData
	Dash folio.Dashboard
}

type adminPostsView struct {
	folio.PageData
	Posts folio.Page[folio.Post]
	Query string
}

type postEditorView struct {
	folio.PageData
	Editor folio.PostEditor
}

type termsView struct {
	folio.PageData
	Kind   string
	Plural string
	Terms  []termRow
}

// termRow flattens categories and tags for the shared listing.
type termRow struct {
	ID        int64
	Name      string
	Slug      string
	PostCount int
}

type termEditorView struct {
	folio.PageData
	Editor folio.TermEditor
}

type usersView struct {
	folio.PageData
	Users []folio.User
}

type userEditorView struct {
	folio.PageData
	Editor folio.UserEditor
}

type mediaView struct {
	folio.PageData
	Items folio.Page[folio.Media]
}

// Default returns the built-in theme.
func Default() folio.ViewFuncs {
	var (
		index      = parse("base.html", "listing.html")
		post       = parse("base.html", "post.html")
		search     = parse("base.html", "search.html")
		about      = parse("base.html", "about.html")
		contact    = parse("base.html", "contact.html")
		login      = parse("base.html", "login.html")
		errPage    = parse("base.html", "error.html")
		dashboard  = parse("admin.html", "admin_dashboard.html")
		adminPosts = parse("admin.html", "admin_posts.html")
		postForm   = parse("admin.html", "admin_post_form.html")
		terms      = parse("admin.html", "admin_terms.html")
		termForm   = parse("admin.html", "admin_term_form.html")
		users      = parse("admin.html", "admin_users.html")
		userForm   = parse("admin.html", "admin_user_form.html")
		mediaList  = parse("admin.html", "admin_media.html")
	)

	errorPage := func(code int, heading, msg string) func(folio.PageData) templ.Component {
		return func(d folio.PageData) templ.Component {
			return component(errPage, errorView{PageData: d, Code: code, Heading: heading, Message: msg})
		}
	}

	return folio.ViewFuncs{
		Index: func(d folio.PageData, posts folio.Page[folio.Post]) templ.Component {
			return component(index, listing{PageData: d, Heading: "Latest posts", Posts: posts})
		},
		Post: func(d folio.PageData, p folio.Post, related []folio.Post) templ.Component {
			return component(post, postView{PageData: d, Post: p, Related: related})
		},
		Category: func(d folio.PageData, c folio.Category, posts folio.Page[folio.Post]) templ.Component {
			return component(index, listing{PageData: d, Heading: "Category: " + c.Name, Posts: posts})
		},
		Tag: func(d folio.PageData, t folio.Tag, posts folio.Page[folio.Post]) templ.Component {
			return component(index, listing{PageData: d, Heading: "Tag: " + t.Name, Posts: posts})
		},
		Search: func(d folio.PageData, q string, posts folio.Page[folio.Post], cats []folio.Category) templ.Component {
			return component(search, searchView{
				listing:    listing{PageData: d, Heading: "Search results for \"" + q + "\"", Posts: posts, Query: q},
				Categories: cats,
			})
		},
		About: func(d folio.PageData) templ.Component {
			return component(about, d)
		},
		Contact: func(d folio.PageData, f folio.ContactForm, verr *folio.ValidationError) templ.Component {
			return component(contact, contactView{PageData: d, Form: f, Error: verr})
		},
		Login: func(d folio.PageData, f folio.LoginForm, msg string) templ.Component {
			return component(login, loginView{PageData: d, Form: f, Message: msg})
		},

		AdminDashboard: func(d folio.PageData, dash folio.Dashboard) templ.Component {
			return component(dashboard, dashboardView{PageData: d, Dash: dash})
		},
		AdminPosts: func(d folio.PageData, posts folio.Page[folio.Post], q string) templ.Component {
			return component(adminPosts, adminPostsView{PageData: d, Posts: posts, Query: q})
		},
		AdminPostForm: func(d folio.PageData, e folio.PostEditor) templ.Component {
			return component(postForm, postEditorView{PageData: d, Editor: e})
		},
		AdminCategories: func(d folio.PageData, cats []folio.Category) templ.Component {
			rows := make([]termRow, len(cats))
			for i, c := range cats {
				rows[i] = termRow{ID: c.ID, Name: c.Name, Slug: c.Slug, PostCount: c.PostCount}
			}
			return component(terms, termsView{PageData: d, Kind: "category", Plural: "categories", Terms: rows})
		},
		AdminTags: func(d folio.PageData, tags []folio.Tag) templ.Component {
			rows := make([]termRow, len(tags))
			for i, t := range tags {
				rows[i] = termRow{ID: t.ID, Name: t.Name, Slug: t.Slug, PostCount: t.PostCount}
			}
			return component(terms, termsView{PageData: d, Kind: "tag", Plural: "tags", Terms: rows})
		},
		AdminTermForm: func(d folio.PageData, e folio.TermEditor) templ.Component {
			return component(termForm, termEditorView{PageData: d, Editor: e})
		},
		AdminUsers: func(d folio.PageData, u []folio.User) templ.Component {
			return component(users, usersView{PageData: d, Users: u})
		},
		AdminUserForm: func(d folio.PageData, e folio.UserEditor) templ.Component {
			return component(userForm, userEditorView{PageData: d, Editor: e})
		},
		AdminMedia: func(d folio.PageData, items folio.Page[folio.Media]) templ.Component {
			return component(mediaList, mediaView{PageData: d, Items: items})
		},

		NotFound:    errorPage(404, "Page not found", "The page you were looking for does not exist."),
		Forbidden:   errorPage(403, "Forbidden", "You do not have permission to view this page."),
		ServerError: errorPage(500, "Something went wrong", "An unexpected error occurred. Please try again later."),
	}
}
