// Package media stores uploaded images under media/<kind>/ with random names,
// enforcing the image allow-list and optionally downscaling large images.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Kind selects the directory an upload is stored under.
type Kind string

const (
	Featured Kind = "featured"
	Content  Kind = "content"
)

// Valid reports whether k names a known upload directory.
func (k Kind) Valid() bool {
	return k == Featured || k == Content
}

const (
	// Root is the directory, relative to the static root, that holds all uploads.
	Root = "media"

	DefaultMaxWidth  = 1200
	DefaultMaxHeight = 800
	DefaultMaxBytes  = 16 << 20

	jpegQuality  = 85
	maxNameTries = 5
)

var (
	ErrUnsupportedType = errors.New("media: file type not allowed")
	ErrTooLarge        = errors.New("media: file too large")
	ErrInvalidImage    = errors.New("media: not a valid image")
	ErrTypeMismatch    = errors.New("media: contents do not match the extension")
	ErrInvalidKind     = errors.New("media: unknown upload kind")
	// ErrExists is returned by a Backend when the target path is already taken.
	ErrExists = errors.New("media: object exists")
)

var allowedTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// AllowedExtensions returns the accepted extensions, with leading dots.
func AllowedExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
}

// Backend persists objects addressed by forward-slash relative paths.
type Backend interface {
	// Put writes the object and fails with ErrExists if p is taken.
	Put(ctx context.Context, p string, r io.Reader, size int64, contentType string) error
	// Delete removes the object. A missing object is not an error.
	Delete(ctx context.Context, p string) error
	URL(p string) string
}

// Object describes a stored upload.
type Object struct {
	Path        string
	Size        int64
	ContentType string
	Width       int
	Height      int
}

// Store validates, normalizes and persists uploads through a Backend.
type Store struct {
	backend   Backend
	maxWidth  int
	maxHeight int
	maxBytes  int64
	newName   func() string
}

// Option configures a Store.
type Option func(*Store)

// WithBounds sets the bounding box images are downscaled into. A zero
// dimension disables resizing.
func WithBounds(width, height int) Option {
	return func(s *Store) {
		s.maxWidth = width
		s.maxHeight = height
	}
}

// WithMaxBytes caps the size of a single upload.
func WithMaxBytes(n int64) Option {
	return func(s *Store) {
		s.maxBytes = n
	}
}

// NewStore returns a Store writing through backend.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		maxWidth:  DefaultMaxWidth,
		maxHeight: DefaultMaxHeight,
		maxBytes:  DefaultMaxBytes,
		newName:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ext returns the lower-cased extension of name if it is allowed.
func Ext(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedTypes[ext]; !ok {
		return "", ErrUnsupportedType
	}
	return ext, nil
}

// Save validates the upload and writes it under media/<kind>/. The returned
// path never contains any part of originalName except its extension.
func (s *Store) Save(ctx context.Context, kind Kind, originalName string, r io.Reader) (Object, error) {
	if !kind.Valid() {
		return Object{}, ErrInvalidKind
	}
	ext, err := Ext(originalName)
	if err != nil {
		return Object{}, err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return Object{}, fmt.Errorf("media: read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return Object{}, ErrTooLarge
	}

	data, w, h, err := s.normalize(data, ext)
	if err != nil {
		return Object{}, err
	}

	obj := Object{
		Size:        int64(len(data)),
		ContentType: allowedTypes[ext],
		Width:       w,
		Height:      h,
	}
	for range maxNameTries {
		obj.Path = path.Join(Root, string(kind), s.newName()+ext)
		err = s.backend.Put(ctx, obj.Path, bytes.NewReader(data), obj.Size, obj.ContentType)
		if errors.Is(err, ErrExists) {
			continue
		}
		if err != nil {
			return Object{}, fmt.Errorf("media: write %s: %w", obj.Path, err)
		}
		return obj, nil
	}
	return Object{}, fmt.Errorf("media: no free name after %d tries: %w", maxNameTries, ErrExists)
}

// Remove deletes the object at p.
func (s *Store) Remove(ctx context.Context, p string) error {
	if p == "" {
		return nil
	}
	if err := s.backend.Delete(ctx, p); err != nil {
		return fmt.Errorf("media: remove %s: %w", p, err)
	}
	return nil
}

// URL returns the public URL for a stored path.
func (s *Store) URL(p string) string {
	return s.backend.URL(p)
}

// normalize fully decodes data, requires the decoded format to match ext
// and shrinks jpeg and png images that exceed the bounding box. gif and webp
// are kept byte for byte.
func (s *Store) normalize(data []byte, ext string) ([]byte, int, int, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, ErrInvalidImage
	}
	if "image/"+format != allowedTypes[ext] {
		return nil, 0, 0, ErrTypeMismatch
	}

	if format == "gif" {
		// Every frame, not just the first.
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil || len(g.Image) == 0 {
			return nil, 0, 0, ErrInvalidImage
		}
		return data, cfg.Width, cfg.Height, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, ErrInvalidImage
	}
	if format == "webp" || !s.exceeds(cfg.Width, cfg.Height) {
		return data, cfg.Width, cfg.Height, nil
	}

	w, h := Fit(cfg.Width, cfg.Height, s.maxWidth, s.maxHeight)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, dst)
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, 0, 0, fmt.Errorf("media: encode %s: %w", ext, err)
	}
	return buf.Bytes(), w, h, nil
}

func (s *Store) exceeds(w, h int) bool {
	if s.maxWidth <= 0 || s.maxHeight <= 0 {
		return false
	}
	return w > s.maxWidth || h > s.maxHeight
}

// Fit scales w×h down to fit within maxW×maxH, keeping the aspect ratio.
// Dimensions already inside the box are returned unchanged.
func Fit(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	// Compare w/maxW against h/maxH without floating point.
	if w*maxH >= h*maxW {
		nh := h * maxW / w
		return maxW, max(nh, 1)
	}
	nw := w * maxH / h
	return max(nw, 1), maxH
}
