package folio

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const postColumns = `p.id, p.title, p.slug, COALESCE(p.summary, '') AS summary, p.content,
	p.published, COALESCE(p.featured_image, '') AS featured_image, p.created_at, p.updated_at,
	COALESCE(p.meta_description, '') AS meta_description, COALESCE(p.meta_keywords, '') AS meta_keywords,
	p.author_id, p.category_id, u.username AS author_name,
	COALESCE(c.name, '') AS category_name, COALESCE(c.slug, '') AS category_slug`

const postFrom = ` FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id`

const postOrder = ` ORDER BY p.created_at DESC, p.id DESC`

// PostFilter narrows a post listing. The zero value lists every post.
type PostFilter struct {
	PublishedOnly bool
	CategoryID    int64
	TagID         int64
	// Query is a case-insensitive substring matched against title and
	// content, and against summary when InSummary is set.
	Query     string
	InSummary bool
	ExcludeID int64
}

func (f PostFilter) where() (string, []any) {
	var conds []string
	var args []any
	if f.PublishedOnly {
		conds = append(conds, "p.published = ?")
		args = append(args, true)
	}
	if f.CategoryID > 0 {
		conds = append(conds, "p.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.TagID > 0 {
		conds = append(conds, "p.id IN (SELECT post_id FROM post_tags WHERE tag_id = ?)")
		args = append(args, f.TagID)
	}
	if f.ExcludeID > 0 {
		conds = append(conds, "p.id <> ?")
		args = append(args, f.ExcludeID)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		cols := []string{"p.title", "p.content"}
		if f.InSummary {
			cols = append(cols, "p.summary")
		}
		var ors []string
		for _, col := range cols {
			ors = append(ors, "LOWER(COALESCE("+col+", '')) LIKE ? ESCAPE '\\'")
			args = append(args, pattern)
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ListPosts returns one page of posts matching f, newest first, with tags
// loaded.
func (s *Store) ListPosts(ctx context.Context, f PostFilter, page, perPage int) (Page[Post], error) {
	where, args := f.where()
	result := Page[Post]{Number: max(page, 1), PerPage: perPage}

	if err := s.get(ctx, s.db, &result.Total, "SELECT COUNT(*) FROM posts p"+where, args...); err != nil {
		return result, fmt.Errorf("count posts: %w", err)
	}

	limit, off := offset(page, perPage)
	query := "SELECT " + postColumns + postFrom + where + postOrder + " LIMIT ? OFFSET ?"
	if err := s.selectAll(ctx, s.db, &result.Items, query, append(args, limit, off)...); err != nil {
		return result, fmt.Errorf("list posts: %w", err)
	}
	if err := s.loadTags(ctx, result.Items); err != nil {
		return result, err
	}
	return result, nil
}

// RecentPosts returns up to limit posts matching f, newest first, with tags
// loaded.
func (s *Store) RecentPosts(ctx context.Context, f PostFilter, limit int) ([]Post, error) {
	where, args := f.where()
	var posts []Post
	query := "SELECT " + postColumns + postFrom + where + postOrder + " LIMIT ?"
	if err := s.selectAll(ctx, s.db, &posts, query, append(args, limit)...); err != nil {
		return nil, fmt.Errorf("recent posts: %w", err)
	}
	if err := s.loadTags(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// PostsSharingTags returns up to limit published posts, other than
// excludeID, that carry any of tagIDs. Tags are not loaded.
func (s *Store) PostsSharingTags(ctx context.Context, tagIDs []int64, excludeID int64, limit int) ([]Post, error) {
	if len(tagIDs) == 0 || limit <= 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT "+postColumns+postFrom+
		" WHERE p.published = ? AND p.id <> ? AND p.id IN (SELECT post_id FROM post_tags WHERE tag_id IN (?))"+
		postOrder+" LIMIT ?", true, excludeID, tagIDs, limit)
	if err != nil {
		return nil, err
	}
	var posts []Post
	if err := s.selectAll(ctx, s.db, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("posts sharing tags: %w", err)
	}
	return posts, nil
}

// AllPublishedPosts returns every published post, newest first, without tags.
func (s *Store) AllPublishedPosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	query := "SELECT " + postColumns + postFrom + " WHERE p.published = ?" + postOrder
	if err := s.selectAll(ctx, s.db, &posts, query, true); err != nil {
		return nil, fmt.Errorf("published posts: %w", err)
	}
	return posts, nil
}

// GetPostBySlug loads a post with author, category and tags regardless of
// its publication state. Visibility is the caller's decision.
func (s *Store) GetPostBySlug(ctx context.Context, slug string) (Post, error) {
	return s.getPost(ctx, "p.slug = ?", slug)
}

// GetPost loads a post by id with author, category and tags.
func (s *Store) GetPost(ctx context.Context, id int64) (Post, error) {
	return s.getPost(ctx, "p.id = ?", id)
}

func (s *Store) getPost(ctx context.Context, cond string, arg any) (Post, error) {
	var p Post
	if err := s.get(ctx, s.db, &p, "SELECT "+postColumns+postFrom+" WHERE "+cond, arg); err != nil {
		return Post{}, err
	}
	posts := []Post{p}
	if err := s.loadTags(ctx, posts); err != nil {
		return Post{}, err
	}
	return posts[0], nil
}

// loadTags fills Tags on every post with one query.
func (s *Store) loadTags(ctx context.Context, posts []Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]int64, len(posts))
	index := make(map[int64]int, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		index[p.ID] = i
		posts[i].Tags = []Tag{}
	}
	query, args, err := sqlx.In(`SELECT pt.post_id, t.id, t.name, t.slug, t.created_at
		FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (?) ORDER BY t.name`, ids)
	if err != nil {
		return err
	}
	var rows []struct {
		PostID int64 `db:"post_id"`
		Tag
	}
	if err := s.selectAll(ctx, s.db, &rows, query, args...); err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	for _, r := range rows {
		i := index[r.PostID]
		posts[i].Tags = append(posts[i].Tags, r.Tag)
	}
	return nil
}

const postInsert = `INSERT INTO posts (title, slug, summary, content, published, featured_image,
	created_at, updated_at, meta_description, meta_keywords, author_id, category_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// CreatePost inserts p and its tag links in one transaction and sets p.ID.
// A slug collision is reported as a duplicate on column "slug".
func (s *Store) CreatePost(ctx context.Context, p *Post, tagIDs []int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		id, err := s.insert(ctx, tx, postInsert,
			p.Title, p.Slug, nullString(p.Summary), p.Content, p.Published, nullString(p.FeaturedImage),
			p.CreatedAt, p.UpdatedAt, nullString(p.MetaDescription), nullString(p.MetaKeywords),
			p.AuthorID, nullCategory(p.CategoryID))
		if err != nil {
			return classifyUnique(err, "slug")
		}
		p.ID = id
		return s.setPostTags(ctx, tx, id, tagIDs)
	})
}

// UpdatePost rewrites every column except author and created_at and replaces
// the tag links.
func (s *Store) UpdatePost(ctx context.Context, p *Post, tagIDs []int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		err := expectRow(s.exec(ctx, tx, `UPDATE posts SET title = ?, slug = ?, summary = ?, content = ?,
			published = ?, featured_image = ?, updated_at = ?, meta_description = ?, meta_keywords = ?,
			category_id = ? WHERE id = ?`,
			p.Title, p.Slug, nullString(p.Summary), p.Content, p.Published, nullString(p.FeaturedImage),
			p.UpdatedAt, nullString(p.MetaDescription), nullString(p.MetaKeywords),
			nullCategory(p.CategoryID), p.ID))
		if err != nil {
			return classifyUnique(err, "slug")
		}
		if _, err := s.exec(ctx, tx, "DELETE FROM post_tags WHERE post_id = ?", p.ID); err != nil {
			return err
		}
		return s.setPostTags(ctx, tx, p.ID, tagIDs)
	})
}

func (s *Store) setPostTags(ctx context.Context, tx *sqlx.Tx, postID int64, tagIDs []int64) error {
	seen := make(map[int64]bool, len(tagIDs))
	for _, tagID := range tagIDs {
		if seen[tagID] {
			continue
		}
		seen[tagID] = true
		if _, err := s.exec(ctx, tx, "INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)", postID, tagID); err != nil {
			return fmt.Errorf("link tag %d: %w", tagID, err)
		}
	}
	return nil
}

// DeletePost removes the post and its tag links. beforeCommit runs inside
// the transaction with the deleted post; if it fails nothing is deleted.
func (s *Store) DeletePost(ctx context.Context, id int64, beforeCommit func(Post) error) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var p Post
		err := s.get(ctx, tx, &p, "SELECT "+postColumns+postFrom+" WHERE p.id = ?", id)
		if err != nil {
			return err
		}
		if _, err := s.exec(ctx, tx, "DELETE FROM post_tags WHERE post_id = ?", id); err != nil {
			return err
		}
		if err := expectRow(s.exec(ctx, tx, "DELETE FROM posts WHERE id = ?", id)); err != nil {
			return err
		}
		if beforeCommit != nil {
			return beforeCommit(p)
		}
		return nil
	})
}

func nullCategory(id *int64) any {
	if id == nil || *id <= 0 {
		return nil
	}
	return *id
}
