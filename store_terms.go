package folio

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ListCategories returns all categories by name. PostCount counts every
// post, published or not.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	return s.listCategories(ctx, false)
}

// ListCategoriesPublished returns all categories by name with PostCount
// limited to published posts.
func (s *Store) ListCategoriesPublished(ctx context.Context) ([]Category, error) {
	return s.listCategories(ctx, true)
}

func (s *Store) listCategories(ctx context.Context, publishedOnly bool) ([]Category, error) {
	join := "p.category_id = c.id"
	var args []any
	if publishedOnly {
		join += " AND p.published = ?"
		args = append(args, true)
	}
	var out []Category
	err := s.selectAll(ctx, s.db, &out, `SELECT c.id, c.name, c.slug, c.created_at, COUNT(p.id) AS post_count
		FROM categories c LEFT JOIN posts p ON `+join+`
		GROUP BY c.id, c.name, c.slug, c.created_at
		ORDER BY c.name`, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// GetCategory loads a category by id.
func (s *Store) GetCategory(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := s.get(ctx, s.db, &c, "SELECT id, name, slug, created_at FROM categories WHERE id = ?", id)
	return c, err
}

// GetCategoryBySlug loads a category by slug.
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (Category, error) {
	var c Category
	err := s.get(ctx, s.db, &c, "SELECT id, name, slug, created_at FROM categories WHERE slug = ?", slug)
	return c, err
}

// CreateCategory inserts c and sets its id.
func (s *Store) CreateCategory(ctx context.Context, c *Category) error {
	id, err := s.insert(ctx, s.db, "INSERT INTO categories (name, slug, created_at) VALUES (?, ?, ?)",
		c.Name, c.Slug, c.CreatedAt)
	if err != nil {
		return classifyUnique(err, "slug")
	}
	c.ID = id
	return nil
}

// UpdateCategory renames c.
func (s *Store) UpdateCategory(ctx context.Context, c *Category) error {
	err := expectRow(s.exec(ctx, s.db, "UPDATE categories SET name = ?, slug = ? WHERE id = ?", c.Name, c.Slug, c.ID))
	return classifyUnique(err, "slug")
}

// DeleteCategory removes a category that owns no posts. It returns
// ErrCategoryInUse otherwise.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var n int
		if err := s.get(ctx, tx, &n, "SELECT COUNT(*) FROM posts WHERE category_id = ?", id); err != nil {
			return err
		}
		if n > 0 {
			return ErrCategoryInUse
		}
		return expectRow(s.exec(ctx, tx, "DELETE FROM categories WHERE id = ?", id))
	})
}

// ListTags returns all tags by name with PostCount over every post.
func (s *Store) ListTags(ctx context.Context) ([]Tag, error) {
	var out []Tag
	err := s.selectAll(ctx, s.db, &out, `SELECT t.id, t.name, t.slug, t.created_at, COUNT(pt.post_id) AS post_count
		FROM tags t LEFT JOIN post_tags pt ON pt.tag_id = t.id
		GROUP BY t.id, t.name, t.slug, t.created_at
		ORDER BY t.name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return out, nil
}

// PopularTags returns up to limit tags ordered by how many published posts
// carry them. Tags with no published posts are omitted.
func (s *Store) PopularTags(ctx context.Context, limit int) ([]Tag, error) {
	var out []Tag
	err := s.selectAll(ctx, s.db, &out, `SELECT t.id, t.name, t.slug, t.created_at, COUNT(p.id) AS post_count
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		JOIN posts p ON p.id = pt.post_id AND p.published = ?
		GROUP BY t.id, t.name, t.slug, t.created_at
		ORDER BY post_count DESC, t.name
		LIMIT ?`, true, limit)
	if err != nil {
		return nil, fmt.Errorf("popular tags: %w", err)
	}
	return out, nil
}

// GetTag loads a tag by id.
func (s *Store) GetTag(ctx context.Context, id int64) (Tag, error) {
	var t Tag
	err := s.get(ctx, s.db, &t, "SELECT id, name, slug, created_at FROM tags WHERE id = ?", id)
	return t, err
}

// GetTagBySlug loads a tag by slug.
func (s *Store) GetTagBySlug(ctx context.Context, slug string) (Tag, error) {
	var t Tag
	err := s.get(ctx, s.db, &t, "SELECT id, name, slug, created_at FROM tags WHERE slug = ?", slug)
	return t, err
}

// CountTags returns how many of ids name existing tags.
func (s *Store) CountTags(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In("SELECT COUNT(*) FROM tags WHERE id IN (?)", ids)
	if err != nil {
		return 0, err
	}
	var n int
	err = s.get(ctx, s.db, &n, query, args...)
	return n, err
}

// CreateTag inserts t and sets its id.
func (s *Store) CreateTag(ctx context.Context, t *Tag) error {
	id, err := s.insert(ctx, s.db, "INSERT INTO tags (name, slug, created_at) VALUES (?, ?, ?)",
		t.Name, t.Slug, t.CreatedAt)
	if err != nil {
		return classifyUnique(err, "slug")
	}
	t.ID = id
	return nil
}

// UpdateTag renames t.
func (s *Store) UpdateTag(ctx context.Context, t *Tag) error {
	err := expectRow(s.exec(ctx, s.db, "UPDATE tags SET name = ?, slug = ? WHERE id = ?", t.Name, t.Slug, t.ID))
	return classifyUnique(err, "slug")
}

// DeleteTag detaches the tag from every post and removes it. The posts stay.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.exec(ctx, tx, "DELETE FROM post_tags WHERE tag_id = ?", id); err != nil {
			return err
		}
		return expectRow(s.exec(ctx, tx, "DELETE FROM tags WHERE id = ?", id))
	})
}
