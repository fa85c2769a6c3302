package storage

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicbridge/complaint-service/internal/config"
	apperrors "github.com/civicbridge/complaint-service/pkg/util/errorutil"
)

type part struct {
	name        string
	contentType string
	size        int
}

// fileHeaders round-trips parts through a real multipart body so FileHeader.Open works.
func fileHeaders(t *testing.T, parts ...part) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="images"; filename="`+p.name+`"`)
		h.Set("Content-Type", p.contentType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(bytes.Repeat([]byte{0xff}, p.size))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["images"]
}

func newStore(t *testing.T) *BlobStore {
	t.Helper()
	store, err := NewBlobStore(config.UploadConfig{
		Dir:          filepath.Join(t.TempDir(), "uploads"),
		PublicPrefix: "/uploads",
		MaxFileBytes: 5 * 1024 * 1024,
		MaxFiles:     5,
		AllowedTypes: []string{"image/jpeg", "image/jpg", "image/png"},
	}, zap.NewNop())
	require.NoError(t, err)
	return store
}

func dirEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestSaveAllStoresEveryFile(t *testing.T) {
	store := newStore(t)
	files := fileHeaders(t,
		part{"a.jpg", "image/jpeg", 1024},
		part{"b.JPG", "image/jpeg", 2048},
		part{"c.png", "image/png", 10},
	)

	refs, err := store.SaveAll("images", files)
	require.NoError(t, err)
	require.Len(t, refs, 3)

	pattern := regexp.MustCompile(`^/uploads/images-\d+-\d{1,9}\.(jpg|png)$`)
	for _, ref := range refs {
		assert.Regexp(t, pattern, ref)
		_, err := os.Stat(filepath.Join(store.Dir(), strings.TrimPrefix(ref, "/uploads/")))
		assert.NoError(t, err)
	}
	assert.True(t, strings.HasSuffix(refs[1], ".jpg"))
	assert.Len(t, dirEntries(t, store.Dir()), 3)
}

func TestSaveAllRejectsOversizedWithoutWriting(t *testing.T) {
	store := newStore(t)
	files := fileHeaders(t,
		part{"ok.jpg", "image/jpeg", 100},
		part{"big.png", "image/png", 6 * 1024 * 1024},
	)

	refs, err := store.SaveAll("images", files)
	require.Error(t, err)
	assert.Nil(t, refs)

	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidation, de.Code)
	assert.Equal(t, "File is too large. Maximum size is 5MB.", de.Message)
	assert.Empty(t, dirEntries(t, store.Dir()))
}

func TestValidateRejectsWrongTypeAndTooMany(t *testing.T) {
	store := newStore(t)

	err := store.Validate(fileHeaders(t, part{"doc.pdf", "application/pdf", 10}))
	require.Error(t, err)
	assert.Equal(t, "Invalid file type. Only JPG, JPEG and PNG are allowed.", apperrors.ToDomainError(err).Message)

	six := make([]part, 6)
	for i := range six {
		six[i] = part{"x.jpg", "image/jpeg", 1}
	}
	err = store.Validate(fileHeaders(t, six...))
	require.Error(t, err)
	assert.Equal(t, "Maximum 5 images allowed.", apperrors.ToDomainError(err).Message)

	assert.NoError(t, store.Validate(nil))
}

func TestRemoveDeletesStoredBlobs(t *testing.T) {
	store := newStore(t)
	refs, err := store.SaveAll("images", fileHeaders(t, part{"a.png", "image/png", 10}))
	require.NoError(t, err)

	store.Remove(append(refs, "/uploads/never-existed.png"))
	assert.Empty(t, dirEntries(t, store.Dir()))
}
