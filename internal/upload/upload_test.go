package upload

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ayush/social-feed/backend/internal/store"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type part struct {
	field, filename, contentType string
	data                         []byte
}

func multipartRequest(t *testing.T, fields map[string]string, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func png(size int) []byte {
	b := make([]byte, size)
	copy(b, pngHeader)
	return b
}

func newTestUploader(t *testing.T) (*Uploader, string) {
	dir := t.TempDir()
	u := New(store.NewDiskStore(dir))
	u.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return u, dir
}

func TestParse_AcceptsPNG(t *testing.T) {
	u, _ := newTestUploader(t)
	req := multipartRequest(t, map[string]string{"userId": "abc"},
		part{FieldProfileImage, "me.PNG", "image/png", png(1024)})

	fh, err := u.Parse(httptest.NewRecorder(), req, FieldProfileImage)
	require.NoError(t, err)
	assert.Equal(t, "me.PNG", fh.Filename)
	assert.Equal(t, "abc", req.FormValue("userId"))
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		parts []part
	}{
		{"gif extension", []part{{FieldPostImage, "a.gif", "image/gif", []byte("GIF89a....")}}},
		{"png extension with gif mime", []part{{FieldPostImage, "a.png", "image/gif", png(64)}}},
		{"png name with text content", []part{{FieldPostImage, "a.png", "image/png", []byte("hello there, not an image")}}},
		{"too large", []part{{FieldPostImage, "a.png", "image/png", png(MaxSize + 1)}}},
		{"way too large", []part{{FieldPostImage, "a.png", "image/png", png(600 * 1024)}}},
		{"two files", []part{
			{FieldPostImage, "a.png", "image/png", png(64)},
			{FieldPostImage, "b.png", "image/png", png(64)},
		}},
		{"unexpected field", []part{{"other", "a.png", "image/png", png(64)}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u, _ := newTestUploader(t)
			req := multipartRequest(t, nil, tc.parts...)
			_, err := u.Parse(httptest.NewRecorder(), req, FieldPostImage)
			var uerr *Error
			require.ErrorAs(t, err, &uerr)
		})
	}
}

func TestParse_NoFile(t *testing.T) {
	u, _ := newTestUploader(t)

	req := multipartRequest(t, map[string]string{"message": "hi"})
	_, err := u.Parse(httptest.NewRecorder(), req, FieldPostImage)
	require.ErrorIs(t, err, ErrNoFile)
	assert.Equal(t, "hi", req.FormValue("message"))

	form := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString("message=yo"))
	form.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, err = u.Parse(httptest.NewRecorder(), form, FieldPostImage)
	require.ErrorIs(t, err, ErrNoFile)
	assert.Equal(t, "yo", form.FormValue("message"))
}

func TestSaveAndRemove(t *testing.T) {
	u, dir := newTestUploader(t)
	req := multipartRequest(t, nil, part{FieldPostImage, "cat.jpg", "image/jpeg", append([]byte("\xff\xd8\xff\xe0"), make([]byte, 100)...)})
	fh, err := u.Parse(httptest.NewRecorder(), req, FieldPostImage)
	require.NoError(t, err)

	p, err := u.Save(context.Background(), DirPosts, fh)
	require.NoError(t, err)
	assert.Regexp(t, `^/uploads/posts/1700000000000-\d+\.jpg$`, p)

	key, ok := KeyFromPath(p)
	require.True(t, ok)
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)

	require.NoError(t, u.Remove(context.Background(), p))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, u.Remove(context.Background(), p), store.ErrNotFound)
}

func TestSave_UniqueNames(t *testing.T) {
	u, _ := newTestUploader(t)
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		req := multipartRequest(t, nil, part{FieldPostImage, "a.png", "image/png", png(32)})
		fh, err := u.Parse(httptest.NewRecorder(), req, FieldPostImage)
		require.NoError(t, err)
		p, err := u.Save(context.Background(), DirPosts, fh)
		require.NoError(t, err)
		assert.False(t, seen[p], "duplicate path %s", p)
		seen[p] = true
	}
}

func TestKeyFromPath(t *testing.T) {
	tests := []struct {
		in   string
		key  string
		isOK bool
	}{
		{"/uploads/posts/a.png", "posts/a.png", true},
		{"./uploads/profil/random-user.png", "profil/random-user.png", true},
		{"/uploads/", "", false},
		{"https://example.com/a.png", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		key, ok := KeyFromPath(tc.in)
		assert.Equal(t, tc.isOK, ok, tc.in)
		assert.Equal(t, tc.key, key, tc.in)
	}
}

func TestFileServer(t *testing.T) {
	u, dir := newTestUploader(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "posts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "posts", "x.png"), pngHeader, 0o644))
	srv := u.FileServer(zap.NewNop())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/posts/x.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngHeader, rec.Body.Bytes())

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/posts/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/other/x.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
