package folio

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/media"
)

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

// PostForm is the admin post editor. The featured image is read from the
// multipart body separately.
type PostForm struct {
	Title           string  `form:"title" validate:"required,min=3,max=255"`
	Summary         string  `form:"summary" validate:"max=500"`
	Content         string  `form:"content" validate:"required"`
	Format          string  `form:"format" validate:"omitempty,oneof=html markdown"`
	Published       bool    `form:"published"`
	MetaDescription string  `form:"meta_description" validate:"max=255"`
	MetaKeywords    string  `form:"meta_keywords" validate:"max=255"`
	CategoryID      int64   `form:"category_id" validate:"gte=0"`
	TagIDs          []int64 `form:"tags" validate:"dive,gt=0"`
}

// Input converts the form for the service.
func (f PostForm) Input() PostInput {
	format := f.Format
	if format == "" {
		format = FormatHTML
	}
	return PostInput{
		Title:           f.Title,
		Summary:         f.Summary,
		Content:         f.Content,
		Format:          format,
		Published:       f.Published,
		MetaDescription: f.MetaDescription,
		MetaKeywords:    f.MetaKeywords,
		CategoryID:      f.CategoryID,
		TagIDs:          f.TagIDs,
	}
}

// PostFormFrom fills the editor with an existing post.
func PostFormFrom(p Post) PostForm {
	return PostForm{
		Title:           p.Title,
		Summary:         p.Summary,
		Content:         p.Content,
		Format:          FormatHTML,
		Published:       p.Published,
		MetaDescription: p.MetaDescription,
		MetaKeywords:    p.MetaKeywords,
		CategoryID:      derefID(p.CategoryID),
		TagIDs:          p.TagIDs(),
	}
}

// TermForm edits a category or a tag.
type TermForm struct {
	Name string `form:"name" validate:"required,min=2,max=50"`
}

// UserForm edits an account. Password may be left blank on edit.
type UserForm struct {
	Username string `form:"username" validate:"required,min=3,max=50"`
	Email    string `form:"email" validate:"required,email,max=120"`
	Password string `form:"password" validate:"omitempty,min=6"`
	Confirm  string `form:"confirm_password" validate:"eqfield=Password"`
	IsAdmin  bool   `form:"is_admin"`
}

// Input converts the form for the service.
func (f UserForm) Input() UserInput {
	return UserInput{Username: f.Username, Email: f.Email, Password: f.Password, IsAdmin: f.IsAdmin}
}

// ContactForm is the public contact form. Submissions are acknowledged,
// not stored.
type ContactForm struct {
	Name    string `form:"name" validate:"required,min=2,max=100"`
	Email   string `form:"email" validate:"required,email"`
	Subject string `form:"subject" validate:"required,min=2,max=200"`
	Message string `form:"message" validate:"required,min=10"`
}

// MediaForm carries the fields sent with a gallery upload.
type MediaForm struct {
	AltText string `form:"alt_text" validate:"max=255"`
	Kind    string `form:"image_type" validate:"omitempty,oneof=featured content"`
}

// MediaKind returns the requested kind, defaulting to content.
func (f MediaForm) MediaKind() media.Kind {
	if f.Kind == "" {
		return media.Content
	}
	return media.Kind(f.Kind)
}

// formValidator adapts validator/v10 to echo.Validator and reports the first
// failing field as a *ValidationError.
type formValidator struct {
	v *validator.Validate
}

func newFormValidator() *formValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &formValidator{v: v}
}

func (fv *formValidator) Validate(i any) error {
	err := fv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return invalid(fe.Field(), fieldMessage(fe))
}

func fieldMessage(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "eqfield":
		return "passwords must match"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	}
	return label + " is invalid"
}

// bindForm binds the request into dst and validates it. Malformed input is
// reported as a validation error so the form can be shown again.
func bindForm(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return invalid("form", "the form could not be read")
	}
	return c.Validate(dst)
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
