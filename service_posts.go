package folio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eringen/folio/markdown"
	"github.com/eringen/folio/media"
	"github.com/eringen/folio/sanitize"
)

// Content formats accepted in PostInput.Format.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// PostInput is the validated content of a post form.
type PostInput struct {
	Title           string
	Summary         string
	Content         string
	Format          string
	Published       bool
	MetaDescription string
	MetaKeywords    string
	CategoryID      int64
	TagIDs          []int64
	FeaturedImage   *Upload
}

// renderContent turns the submitted body into sanitized HTML.
func renderContent(body, format string) (string, error) {
	if format == FormatMarkdown {
		html, err := markdown.ToHTML(body)
		if err != nil {
			return "", fmt.Errorf("render markdown: %w", err)
		}
		body = html
	}
	return sanitize.HTML(body), nil
}

func (s *Service) checkReferences(ctx context.Context, in PostInput) error {
	if in.CategoryID > 0 {
		if _, err := s.store.GetCategory(ctx, in.CategoryID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return invalid("category_id", "unknown category")
			}
			return err
		}
	}
	if len(in.TagIDs) > 0 {
		uniq := dedupeIDs(in.TagIDs)
		n, err := s.store.CountTags(ctx, uniq)
		if err != nil {
			return err
		}
		if n != len(uniq) {
			return invalid("tags", "unknown tag")
		}
	}
	return nil
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// saveFeatured stores the optional featured image and returns its path.
func (s *Service) saveFeatured(ctx context.Context, up *Upload) (string, error) {
	if up == nil {
		return "", nil
	}
	obj, err := s.media.Save(ctx, media.Featured, up.Filename, up.Body)
	if err != nil {
		return "", uploadError("featured_image", err)
	}
	return obj.Path, nil
}

// discard removes a file that no row points to any more.
func (s *Service) discard(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.media.Remove(ctx, path); err != nil {
		s.log.Error("remove orphaned file", "path", path, "error", err)
	}
}

// CreatePost sanitizes the content, assigns a unique slug and stores the
// post as authored by author.
func (s *Service) CreatePost(ctx context.Context, in PostInput, author Caller) (Post, error) {
	if err := s.checkReferences(ctx, in); err != nil {
		return Post{}, err
	}
	content, err := renderContent(in.Content, in.Format)
	if err != nil {
		return Post{}, err
	}
	featured, err := s.saveFeatured(ctx, in.FeaturedImage)
	if err != nil {
		return Post{}, err
	}

	now := s.now()
	p := Post{
		Title:           strings.TrimSpace(in.Title),
		Summary:         strings.TrimSpace(in.Summary),
		Content:         content,
		Published:       in.Published,
		FeaturedImage:   featured,
		CreatedAt:       now,
		UpdatedAt:       now,
		MetaDescription: strings.TrimSpace(in.MetaDescription),
		MetaKeywords:    strings.TrimSpace(in.MetaKeywords),
		AuthorID:        author.UserID,
		CategoryID:      optionalID(in.CategoryID),
	}
	err = s.assignSlug(ctx, "posts", "title", p.Title, 0, func(sl string) error {
		p.Slug = sl
		return s.store.CreatePost(ctx, &p, in.TagIDs)
	})
	if err != nil {
		s.discard(ctx, featured)
		return Post{}, err
	}
	s.log.Info("post created", "id", p.ID, "slug", p.Slug, "published", p.Published)
	return p, nil
}

// UpdatePost rewrites post id. The slug only changes when the title did.
// A replaced featured image is removed after the update is stored.
func (s *Service) UpdatePost(ctx context.Context, id int64, in PostInput) (Post, error) {
	current, err := s.store.GetPost(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if err := s.checkReferences(ctx, in); err != nil {
		return Post{}, err
	}
	content, err := renderContent(in.Content, in.Format)
	if err != nil {
		return Post{}, err
	}
	featured, err := s.saveFeatured(ctx, in.FeaturedImage)
	if err != nil {
		return Post{}, err
	}

	p := current
	p.Title = strings.TrimSpace(in.Title)
	p.Summary = strings.TrimSpace(in.Summary)
	p.Content = content
	p.Published = in.Published
	p.MetaDescription = strings.TrimSpace(in.MetaDescription)
	p.MetaKeywords = strings.TrimSpace(in.MetaKeywords)
	p.CategoryID = optionalID(in.CategoryID)
	p.UpdatedAt = s.now()
	if featured != "" {
		p.FeaturedImage = featured
	}

	if p.Title != current.Title {
		err = s.assignSlug(ctx, "posts", "title", p.Title, id, func(sl string) error {
			p.Slug = sl
			return s.store.UpdatePost(ctx, &p, in.TagIDs)
		})
	} else {
		err = s.store.UpdatePost(ctx, &p, in.TagIDs)
	}
	if err != nil {
		s.discard(ctx, featured)
		return Post{}, err
	}
	if featured != "" && current.FeaturedImage != "" {
		s.discard(ctx, current.FeaturedImage)
	}
	s.log.Info("post updated", "id", p.ID, "slug", p.Slug, "published", p.Published)
	return p, nil
}

// DeletePost deletes the post and its featured image. If the image cannot
// be removed the post is kept and the error returned.
func (s *Service) DeletePost(ctx context.Context, id int64) error {
	err := s.store.DeletePost(ctx, id, func(p Post) error {
		if p.FeaturedImage == "" {
			return nil
		}
		return s.media.Remove(ctx, p.FeaturedImage)
	})
	if err != nil {
		return err
	}
	s.log.Info("post deleted", "id", id)
	return nil
}

// PostForCaller fetches a post by slug and applies the visibility rule. A
// post the caller may not see is reported as ErrNotFound.
func (s *Service) PostForCaller(ctx context.Context, slug string, c Caller) (Post, error) {
	p, err := s.store.GetPostBySlug(ctx, slug)
	if err != nil {
		return Post{}, err
	}
	if !Visible(p, c) {
		return Post{}, ErrNotFound
	}
	return p, nil
}

// RelatedPosts returns up to RelatedLimit published posts sharing a tag with
// p, padded with recent posts from its category.
func (s *Service) RelatedPosts(ctx context.Context, p Post) ([]Post, error) {
	byTag, err := s.store.PostsSharingTags(ctx, p.TagIDs(), p.ID, RelatedLimit)
	if err != nil {
		return nil, err
	}
	var byCategory []Post
	if len(byTag) < RelatedLimit && p.CategoryID != nil {
		// Over-fetch so duplicates of byTag can be skipped.
		byCategory, err = s.store.RecentPosts(ctx, PostFilter{
			PublishedOnly: true,
			CategoryID:    *p.CategoryID,
			ExcludeID:     p.ID,
		}, RelatedLimit+len(byTag))
		if err != nil {
			return nil, err
		}
	}
	return SelectRelated(p, byTag, byCategory, RelatedLimit), nil
}

func optionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

// uploadError turns media validation failures into form errors and leaves
// storage failures as they are.
func uploadError(field string, err error) error {
	switch {
	case errors.Is(err, media.ErrUnsupportedType):
		return invalid(field, "only jpg, jpeg, png, gif and webp images are allowed")
	case errors.Is(err, media.ErrTooLarge):
		return invalid(field, "file is too large")
	case errors.Is(err, media.ErrInvalidImage):
		return invalid(field, "file is not a readable image")
	case errors.Is(err, media.ErrTypeMismatch):
		return invalid(field, "file contents do not match its extension")
	case errors.Is(err, media.ErrInvalidKind):
		return invalid(field, "unknown image type")
	}
	return err
}
