package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"antigravity/domain"
	"antigravity/errs"
)

// pngBytes is a minimal PNG signature plus padding, enough for content
// type sniffing.
func pngBytes() []byte {
	return append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 64)...)
}

func jpegBytes() []byte {
	return append([]byte{0xff, 0xd8, 0xff, 0xe0}, make([]byte, 64)...)
}

func TestImageCreate(t *testing.T) {
	dir := t.TempDir()
	is := NewImageService(dir, "http://localhost:3000/")

	img := &domain.Image{
		File:     bytes.NewReader(pngBytes()),
		Filename: "avatar.png",
	}
	require.NoError(t, is.Create(img))

	// The client filename is replaced by a timestamped one.
	assert.NotEqual(t, "avatar.png", img.Filename)
	assert.True(t, strings.HasSuffix(img.Filename, ".png"))
	assert.Equal(t, "http://localhost:3000/uploads/"+img.Filename, img.URL)

	written, err := os.ReadFile(filepath.Join(dir, img.Filename))
	require.NoError(t, err)
	assert.Equal(t, pngBytes(), written)
}

func TestImageCreateJpgExtension(t *testing.T) {
	is := NewImageService(t.TempDir(), "http://localhost:3000")

	img := &domain.Image{
		File:     bytes.NewReader(jpegBytes()),
		Filename: "photo.jpg",
	}
	require.NoError(t, is.Create(img))
	// .jpg normalizes to .jpeg so it matches the sniffed content type.
	assert.True(t, strings.HasSuffix(img.Filename, ".jpeg"))
}

func TestImageCreateRejectsExtension(t *testing.T) {
	is := NewImageService(t.TempDir(), "http://localhost:3000")

	img := &domain.Image{
		File:     bytes.NewReader(pngBytes()),
		Filename: "script.svg",
	}
	err := is.Create(img)
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestImageCreateRejectsNonImageContent(t *testing.T) {
	is := NewImageService(t.TempDir(), "http://localhost:3000")

	img := &domain.Image{
		File:     bytes.NewReader([]byte("<html>not an image</html>")),
		Filename: "page.png",
	}
	err := is.Create(img)
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestImageCreateRejectsMismatch(t *testing.T) {
	is := NewImageService(t.TempDir(), "http://localhost:3000")

	// Real PNG bytes behind a jpeg extension.
	img := &domain.Image{
		File:     bytes.NewReader(pngBytes()),
		Filename: "photo.jpeg",
	}
	err := is.Create(img)
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}
