package storage

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"antigravity/domain"
	"antigravity/errs"
)

// MaxUploadSize caps uploaded images at 5 megabytes.
const MaxUploadSize int64 = 5 << 20

// ImageService stores uploaded images on disk and hands back the public
// URL they will be served from. It implements the domain.ImageService
// interface.
type ImageService struct {
	imageValidator
}

// imageValidator runs validations and normalizations on incoming images.
// On success, it passes the data on to imageDisk.
type imageValidator struct {
	imageDisk
}

// imageDisk writes validated images below the upload directory.
type imageDisk struct {
	dir     string
	baseURL string
}

// NewImageService returns an ImageService writing to dir and building
// URLs from baseURL.
func NewImageService(dir, baseURL string) *ImageService {
	return &ImageService{
		imageValidator{
			imageDisk{
				dir:     dir,
				baseURL: strings.TrimSuffix(baseURL, "/"),
			},
		},
	}
}

// Ensure the ImageService struct properly implements the domain.ImageService interface.
var _ domain.ImageService = &ImageService{}

// Create validates the image and writes it to disk. The content type is
// sniffed from the bytes, never trusted from the request.
func (iv *imageValidator) Create(img *domain.Image) error {
	err := runImageValFns(img,
		iv.extensionValid,
		iv.contentTypeValid,
		iv.contentTypeExtensionMatch,
		iv.belowMaxSize,
		iv.fileNameUnique,
	)
	if err != nil {
		return err
	}
	return iv.imageDisk.Create(img)
}

// An imageValFn is any function that takes in a pointer to a domain.Image object and returns an error.
type imageValFn func(img *domain.Image) error

func runImageValFns(img *domain.Image, fns ...imageValFn) error {
	for _, fn := range fns {
		if err := fn(img); err != nil {
			return err
		}
	}
	return nil
}

// extensionValid makes sure the filename carries a known image extension.
func (iv *imageValidator) extensionValid(img *domain.Image) error {
	ext := strings.ToLower(filepath.Ext(img.Filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return errs.Errorf(errs.EINVALID, "Image %s invalid extension, must be .jpeg or .png.", img.Filename)
	}
	if ext == ".jpg" {
		ext = ".jpeg"
	}
	img.Extension = ext
	return nil
}

// contentTypeValid sniffs the actual content type from the first bytes.
func (iv *imageValidator) contentTypeValid(img *domain.Image) error {
	buffer := make([]byte, 512)
	if _, err := img.File.Read(buffer); err != nil && err != io.EOF {
		return err
	}
	if err := resetReaderPosition(img); err != nil {
		return err
	}
	contentType := http.DetectContentType(buffer)
	if contentType != "image/jpeg" && contentType != "image/png" {
		return errs.Errorf(errs.EINVALID, "Image %s invalid content-type, must be image/jpeg or image/png.", img.Filename)
	}
	img.ContentType = contentType
	return nil
}

// contentTypeExtensionMatch makes sure the sniffed type matches the extension.
func (iv *imageValidator) contentTypeExtensionMatch(img *domain.Image) error {
	contentType := strings.TrimPrefix(img.ContentType, "image/")
	ext := strings.TrimPrefix(img.Extension, ".")
	if contentType != ext {
		return errs.Errorf(errs.EINVALID, "Image %s content-type %s does not match extension %s.", img.Filename, img.ContentType, img.Extension)
	}
	return nil
}

// belowMaxSize makes sure the image does not exceed the upload size limit.
func (iv *imageValidator) belowMaxSize(img *domain.Image) error {
	size, err := img.File.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if err := resetReaderPosition(img); err != nil {
		return err
	}
	if size > MaxUploadSize {
		return errs.Errorf(errs.EINVALID, "Image %s exceeds upload size limit of %dMB.", img.Filename, MaxUploadSize/1000000)
	}
	return nil
}

// fileNameUnique replaces the client filename with a timestamped one.
func (iv *imageValidator) fileNameUnique(img *domain.Image) error {
	img.Filename = strconv.FormatInt(time.Now().UnixMicro(), 10) + img.Extension
	return nil
}

// resetReaderPosition seeks back to the beginning of the file, so that
// subsequent reads will work.
func resetReaderPosition(img *domain.Image) error {
	_, err := img.File.Seek(0, io.SeekStart)
	return err
}

// Create writes the validated image below the upload directory and sets
// its public URL.
func (id *imageDisk) Create(img *domain.Image) error {
	if err := os.MkdirAll(id.dir, 0755); err != nil {
		return err
	}
	dst, err := os.Create(filepath.Join(id.dir, img.Filename))
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, img.File); err != nil {
		return err
	}
	img.URL = id.baseURL + "/uploads/" + img.Filename
	return nil
}
