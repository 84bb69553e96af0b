package folio

import (
	"context"
	"strings"
)

// CreateCategory stores a category named name under a unique slug.
func (s *Service) CreateCategory(ctx context.Context, name string) (Category, error) {
	c := Category{Name: strings.TrimSpace(name), CreatedAt: s.now()}
	err := s.assignSlug(ctx, "categories", "name", c.Name, 0, func(sl string) error {
		c.Slug = sl
		return s.store.CreateCategory(ctx, &c)
	})
	if err != nil {
		return Category{}, err
	}
	return c, nil
}

// UpdateCategory renames category id, re-slugging only if the name changed.
func (s *Service) UpdateCategory(ctx context.Context, id int64, name string) (Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return Category{}, err
	}
	name = strings.TrimSpace(name)
	if name == c.Name {
		return c, nil
	}
	c.Name = name
	err = s.assignSlug(ctx, "categories", "name", name, id, func(sl string) error {
		c.Slug = sl
		return s.store.UpdateCategory(ctx, &c)
	})
	if err != nil {
		return Category{}, err
	}
	return c, nil
}

// DeleteCategory deletes an unused category; see Store.DeleteCategory.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.store.DeleteCategory(ctx, id)
}

// CreateTag stores a tag named name under a unique slug.
func (s *Service) CreateTag(ctx context.Context, name string) (Tag, error) {
	t := Tag{Name: strings.TrimSpace(name), CreatedAt: s.now()}
	err := s.assignSlug(ctx, "tags", "name", t.Name, 0, func(sl string) error {
		t.Slug = sl
		return s.store.CreateTag(ctx, &t)
	})
	if err != nil {
		return Tag{}, err
	}
	return t, nil
}

// UpdateTag renames tag id, re-slugging only if the name changed.
func (s *Service) UpdateTag(ctx context.Context, id int64, name string) (Tag, error) {
	t, err := s.store.GetTag(ctx, id)
	if err != nil {
		return Tag{}, err
	}
	name = strings.TrimSpace(name)
	if name == t.Name {
		return t, nil
	}
	t.Name = name
	err = s.assignSlug(ctx, "tags", "name", name, id, func(sl string) error {
		t.Slug = sl
		return s.store.UpdateTag(ctx, &t)
	})
	if err != nil {
		return Tag{}, err
	}
	return t, nil
}

// DeleteTag detaches and deletes the tag. Its posts are kept.
func (s *Service) DeleteTag(ctx context.Context, id int64) error {
	return s.store.DeleteTag(ctx, id)
}
