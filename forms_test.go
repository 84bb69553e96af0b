package folio

import (
	"testing"

	"github.com/eringen/folio/media"
)

func TestFormValidator(t *testing.T) {
	v := newFormValidator()

	tests := []struct {
		name      string
		form      any
		wantField string
		wantMsg   string
	}{
		{
			name: "valid post",
			form: &PostForm{Title: "Hello", Content: "x", Format: "markdown", TagIDs: []int64{1, 2}},
		},
		{
			name:      "short title",
			form:      &PostForm{Title: "Hi", Content: "x"},
			wantField: "title",
			wantMsg:   "title must be at least 3 characters",
		},
		{
			name:      "missing content",
			form:      &PostForm{Title: "Hello"},
			wantField: "content",
			wantMsg:   "content is required",
		},
		{
			name:      "unknown format",
			form:      &PostForm{Title: "Hello", Content: "x", Format: "rst"},
			wantField: "format",
			wantMsg:   "format must be one of: html markdown",
		},
		{
			name:      "zero tag id",
			form:      &PostForm{Title: "Hello", Content: "x", TagIDs: []int64{0}},
			wantField: "tags[0]",
		},
		{
			name:      "bad email",
			form:      &LoginForm{Email: "nope", Password: "x"},
			wantField: "email",
			wantMsg:   "enter a valid email address",
		},
		{
			name:      "password mismatch",
			form:      &UserForm{Username: "alice", Email: "a@example.com", Password: "secret123", Confirm: "secret124"},
			wantField: "confirm_password",
			wantMsg:   "passwords must match",
		},
		{
			name: "user edit without password",
			form: &UserForm{Username: "alice", Email: "a@example.com"},
		},
		{
			name:      "short password",
			form:      &UserForm{Username: "alice", Email: "a@example.com", Password: "abc", Confirm: "abc"},
			wantField: "password",
		},
		{
			name:      "one letter term",
			form:      &TermForm{Name: "x"},
			wantField: "name",
			wantMsg:   "name must be at least 2 characters",
		},
		{
			name:      "unknown media kind",
			form:      &MediaForm{Kind: "avatar"},
			wantField: "image_type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.form)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate = %v, want nil", err)
				}
				return
			}
			verr, ok := AsValidation(err)
			if !ok {
				t.Fatalf("Validate = %v, want ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
			if tt.wantMsg != "" && verr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", verr.Message, tt.wantMsg)
			}
		})
	}
}

func TestPostFormInput(t *testing.T) {
	in := PostForm{Title: "T", Content: "c", CategoryID: 3, TagIDs: []int64{4}}.Input()
	if in.Format != FormatHTML {
		t.Errorf("Format = %q, want html by default", in.Format)
	}
	if in.CategoryID != 3 || len(in.TagIDs) != 1 {
		t.Errorf("Input = %+v", in)
	}

	cat := int64(7)
	form := PostFormFrom(Post{Title: "T", CategoryID: &cat, Tags: []Tag{{ID: 1}, {ID: 2}}, Published: true})
	if form.CategoryID != 7 || !form.Published || len(form.TagIDs) != 2 {
		t.Errorf("PostFormFrom = %+v", form)
	}
	e := PostEditor{Form: form}
	if !e.Selected(2) || e.Selected(3) {
		t.Error("Selected reports the wrong tags")
	}
}

func TestMediaFormKind(t *testing.T) {
	if k := (MediaForm{}).MediaKind(); k != media.Content {
		t.Errorf("default kind = %q, want content", k)
	}
	if k := (MediaForm{Kind: "featured"}).MediaKind(); k != media.Featured {
		t.Errorf("kind = %q, want featured", k)
	}
}
