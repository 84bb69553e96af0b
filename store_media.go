package folio

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const mediaColumns = `m.id, m.filename, m.filepath, m.filetype, m.filesize,
	COALESCE(m.alt_text, '') AS alt_text, m.uploaded_by, m.created_at, u.username AS uploader_name`

const mediaFrom = " FROM media m JOIN users u ON u.id = m.uploaded_by"

// ListMedia returns one page of media records, newest first.
func (s *Store) ListMedia(ctx context.Context, page, perPage int) (Page[Media], error) {
	result := Page[Media]{Number: max(page, 1), PerPage: perPage}
	if err := s.get(ctx, s.db, &result.Total, "SELECT COUNT(*) FROM media"); err != nil {
		return result, fmt.Errorf("count media: %w", err)
	}
	limit, off := offset(page, perPage)
	err := s.selectAll(ctx, s.db, &result.Items,
		"SELECT "+mediaColumns+mediaFrom+" ORDER BY m.created_at DESC, m.id DESC LIMIT ? OFFSET ?", limit, off)
	if err != nil {
		return result, fmt.Errorf("list media: %w", err)
	}
	return result, nil
}

// GetMedia loads a media record by id.
func (s *Store) GetMedia(ctx context.Context, id int64) (Media, error) {
	var m Media
	err := s.get(ctx, s.db, &m, "SELECT "+mediaColumns+mediaFrom+" WHERE m.id = ?", id)
	return m, err
}

// CreateMedia inserts m and sets its id.
func (s *Store) CreateMedia(ctx context.Context, m *Media) error {
	id, err := s.insert(ctx, s.db, `INSERT INTO media (filename, filepath, filetype, filesize, alt_text, uploaded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Filename, m.Filepath, m.Filetype, m.Filesize, nullString(m.AltText), m.UploadedBy, m.CreatedAt)
	if err != nil {
		return classifyUnique(err, "filepath")
	}
	m.ID = id
	return nil
}

// DeleteMedia deletes the record and runs removeFile inside the same
// transaction. The row is only gone if removeFile succeeded and the
// transaction committed.
func (s *Store) DeleteMedia(ctx context.Context, id int64, removeFile func(Media) error) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var m Media
		if err := s.get(ctx, tx, &m, "SELECT "+mediaColumns+mediaFrom+" WHERE m.id = ?", id); err != nil {
			return err
		}
		if err := expectRow(s.exec(ctx, tx, "DELETE FROM media WHERE id = ?", id)); err != nil {
			return err
		}
		return removeFile(m)
	})
}
