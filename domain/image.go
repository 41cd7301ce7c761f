package domain

import "io"

// Image is an uploaded picture on its way to the object store. File and
// the metadata fields are inputs; URL is set by the store on success.
type Image struct {
	File        io.ReadSeeker `json:"-"`
	Filename    string        `json:"-"`
	ContentType string        `json:"-"`
	Extension   string        `json:"-"`
	URL         string        `json:"url"`
}

// ImageService stores uploaded images and hands back a retrievable URL.
type ImageService interface {
	Create(img *Image) error
}
