package folio

import (
	"context"
	"path"
	"strings"

	"github.com/eringen/folio/media"
)

// UploadMedia stores a gallery file and records it. The file is written
// first; if the record cannot be inserted the file is removed again.
func (s *Service) UploadMedia(ctx context.Context, kind media.Kind, up Upload, altText string, actor Caller) (Media, error) {
	obj, err := s.media.Save(ctx, kind, up.Filename, up.Body)
	if err != nil {
		return Media{}, uploadError("file", err)
	}
	m := Media{
		Filename:   path.Base(strings.ReplaceAll(up.Filename, `\`, "/")),
		Filepath:   obj.Path,
		Filetype:   obj.ContentType,
		Filesize:   obj.Size,
		AltText:    strings.TrimSpace(altText),
		UploadedBy: actor.UserID,
		CreatedAt:  s.now(),
	}
	if err := s.store.CreateMedia(ctx, &m); err != nil {
		s.discard(ctx, obj.Path)
		return Media{}, err
	}
	m.URL = s.media.URL(m.Filepath)
	s.log.Info("media uploaded", "id", m.ID, "path", m.Filepath, "size", m.Filesize)
	return m, nil
}

// DeleteMedia removes the file and its record together. If the file cannot
// be removed the record stays and the error is returned.
func (s *Service) DeleteMedia(ctx context.Context, id int64) error {
	err := s.store.DeleteMedia(ctx, id, func(m Media) error {
		return s.media.Remove(ctx, m.Filepath)
	})
	if err != nil {
		return err
	}
	s.log.Info("media deleted", "id", id)
	return nil
}

// UploadEditorImage stores an image inserted from the rich-text editor and
// returns its public URL. Editor images are not gallery records.
func (s *Service) UploadEditorImage(ctx context.Context, up Upload) (string, error) {
	obj, err := s.media.Save(ctx, media.Content, up.Filename, up.Body)
	if err != nil {
		return "", uploadError("file", err)
	}
	return s.media.URL(obj.Path), nil
}
