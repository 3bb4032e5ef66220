package utils

import "fmt"

// BuildArtworkURL returns the public URL for an artwork binary.
func BuildArtworkURL(baseURL, identifier string) string {
	return fmt.Sprintf("%s/artworks/%s", baseURL, identifier)
}

// BuildThumbnailURL returns the public URL for an artwork thumbnail.
func BuildThumbnailURL(baseURL, identifier string) string {
	return fmt.Sprintf("%s/thumbnails/%s", baseURL, identifier)
}
