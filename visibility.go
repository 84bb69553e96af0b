package folio

// Caller is the identity behind a request. The zero value is an anonymous
// visitor.
type Caller struct {
	UserID        int64
	Username      string
	Authenticated bool
	IsAdmin       bool
}

// CanAdminister reports whether c may use the back-office.
func CanAdminister(c Caller) bool {
	return c.Authenticated && c.IsAdmin
}

// Visible reports whether c may see p. Drafts are visible to admins only.
func Visible(p Post, c Caller) bool {
	return p.Published || CanAdminister(c)
}

// RelatedLimit is how many related posts are shown under a post.
const RelatedLimit = 2

// SelectRelated picks up to n posts for p: first from byTag, then padded
// from byCategory. Both inputs are expected newest first. p itself,
// unpublished posts and duplicates are skipped.
func SelectRelated(p Post, byTag, byCategory []Post, n int) []Post {
	seen := map[int64]bool{p.ID: true}
	out := make([]Post, 0, n)
	for _, group := range [][]Post{byTag, byCategory} {
		for _, candidate := range group {
			if len(out) == n {
				return out
			}
			if seen[candidate.ID] || !candidate.Published {
				continue
			}
			seen[candidate.ID] = true
			out = append(out, candidate)
		}
	}
	return out
}
