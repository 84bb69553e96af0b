package folio

import (
	"testing"
)

func TestVisible(t *testing.T) {
	admin := Caller{UserID: 1, Authenticated: true, IsAdmin: true}
	member := Caller{UserID: 2, Authenticated: true}
	anonymous := Caller{}
	// An unauthenticated caller carrying a stale admin flag is still anonymous.
	forged := Caller{IsAdmin: true}

	tests := []struct {
		name      string
		published bool
		caller    Caller
		want      bool
	}{
		{"published to anonymous", true, anonymous, true},
		{"published to member", true, member, true},
		{"published to admin", true, admin, true},
		{"draft to anonymous", false, anonymous, false},
		{"draft to member", false, member, false},
		{"draft to admin", false, admin, true},
		{"draft to forged flag", false, forged, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Visible(Post{Published: tt.published}, tt.caller)
			if got != tt.want {
				t.Errorf("Visible = %v, want %v", got, tt.want)
			}
		})
	}
}

func ids(posts []Post) []int64 {
	out := make([]int64, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestSelectRelated(t *testing.T) {
	pub := func(id int64) Post { return Post{ID: id, Published: true} }
	current := pub(1)

	tests := []struct {
		name       string
		byTag      []Post
		byCategory []Post
		want       []int64
	}{
		{"tag matches fill the list", []Post{pub(5), pub(4), pub(3)}, []Post{pub(9)}, []int64{5, 4}},
		{"pads from category", []Post{pub(5)}, []Post{pub(9), pub(8)}, []int64{5, 9}},
		{"skips self and duplicates", []Post{pub(1), pub(5)}, []Post{pub(5), pub(1), pub(7)}, []int64{5, 7}},
		{"skips drafts", []Post{{ID: 6}}, []Post{{ID: 7}, pub(8)}, []int64{8}},
		{"no candidates", nil, nil, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(SelectRelated(current, tt.byTag, tt.byCategory, RelatedLimit))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
