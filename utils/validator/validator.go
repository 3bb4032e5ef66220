package validator

import (
	"io"
	"net/http"
)

// allowedImageMimeTypes are the upload formats the gallery accepts.
var allowedImageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// IsImage sniffs the file content and reports whether it is an allowed
// image type. The reader is rewound afterwards.
func IsImage(file io.ReadSeeker) (bool, error) {
	buffer := make([]byte, 512)
	_, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return false, err
	}

	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		return false, err
	}

	mimeType := http.DetectContentType(buffer)

	if _, ok := allowedImageMimeTypes[mimeType]; ok {
		return true, nil
	}

	return false, nil
}

// DetectMimeType sniffs and returns the MIME type, rewinding the reader.
func DetectMimeType(file io.ReadSeeker) (string, error) {
	buffer := make([]byte, 512)
	_, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return http.DetectContentType(buffer), nil
}
