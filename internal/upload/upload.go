// Package upload validates single-image multipart uploads and stores them
// through a Storage backend. Stored files are addressed by public paths of
// the form /uploads/<dir>/<name>.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxSize is the largest accepted image, in bytes.
	MaxSize = 500 * 1024

	// Directories under the uploads root.
	DirPosts   = "posts"
	DirProfile = "profil"

	// Form fields carrying the image.
	FieldPostImage    = "postImage"
	FieldProfileImage = "profileImage"

	// PathPrefix is the public prefix of every stored file.
	PathPrefix = "/uploads/"

	// formOverhead leaves room for the text fields sent with the image.
	formOverhead = 64 << 10
)

// RuleMessage is shown to clients whose file breaks a rule.
const RuleMessage = "Le fichier doit être une image au format PNG, JPG ou JPEG, et ne doit pas dépasser 500 Ko."

var (
	// ErrNoFile is returned when the request carries no file in the expected field.
	ErrNoFile = errors.New("no file uploaded")

	allowedExt  = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
	allowedMIME = map[string]bool{"image/jpeg": true, "image/jpg": true, "image/png": true}
)

// Error is a file that failed validation.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return "upload rejected: " + e.Reason }

// Storage persists uploaded files by key (dir/name).
type Storage interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
	Remove(ctx context.Context, key string) error
}

// Uploader validates and stores images.
type Uploader struct {
	storage Storage
	now     func() time.Time
}

func New(storage Storage) *Uploader {
	return &Uploader{storage: storage, now: time.Now}
}

// Parse reads the multipart form of r and returns the single file sent in
// field. Form values are available through r.FormValue afterwards. Nothing
// is stored yet.
func (u *Uploader) Parse(w http.ResponseWriter, r *http.Request, field string) (*multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxSize+formOverhead)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, ErrNoFile
		}
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, &Error{Reason: "file too large"}
		}
		return nil, &Error{Reason: "malformed multipart body: " + err.Error()}
	}

	for name, files := range r.MultipartForm.File {
		if name != field {
			return nil, &Error{Reason: fmt.Sprintf("unexpected field %q", name)}
		}
		if len(files) > 1 {
			return nil, &Error{Reason: "only one file is accepted"}
		}
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, ErrNoFile
	}

	fh := files[0]
	if err := check(fh); err != nil {
		return nil, err
	}
	return fh, nil
}

// check enforces the extension, declared MIME type, sniffed content and size.
func check(fh *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return &Error{Reason: "extension " + ext + " not allowed"}
	}
	declared := strings.ToLower(fh.Header.Get("Content-Type"))
	if !allowedMIME[declared] {
		return &Error{Reason: "mime type " + declared + " not allowed"}
	}
	if fh.Size > MaxSize {
		return &Error{Reason: "file too large"}
	}

	f, err := fh.Open()
	if err != nil {
		return &Error{Reason: "unreadable file"}
	}
	defer f.Close()
	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	if sniffed := http.DetectContentType(head[:n]); !allowedMIME[sniffed] {
		return &Error{Reason: "content is " + sniffed}
	}
	return nil
}

// Save stores fh in dir under a generated name and returns its public path.
func (u *Uploader) Save(ctx context.Context, dir string, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	name := fmt.Sprintf("%d-%d%s", u.now().UnixMilli(), uuid.New().ID(), strings.ToLower(filepath.Ext(fh.Filename)))
	key := dir + "/" + name
	if err := u.storage.Save(ctx, key, f, fh.Size, fh.Header.Get("Content-Type")); err != nil {
		return "", err
	}
	return PathPrefix + key, nil
}

// Remove deletes the file behind a public path. Paths outside the uploads
// tree are ignored.
func (u *Uploader) Remove(ctx context.Context, publicPath string) error {
	key, ok := KeyFromPath(publicPath)
	if !ok {
		return nil
	}
	return u.storage.Remove(ctx, key)
}

// KeyFromPath maps "/uploads/posts/x.png" or "./uploads/posts/x.png" to
// "posts/x.png".
func KeyFromPath(p string) (string, bool) {
	key, ok := strings.CutPrefix(strings.TrimPrefix(p, "."), PathPrefix)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
