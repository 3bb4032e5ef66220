package artworks

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDimensions(t *testing.T) {
	width, height := DecodeDimensions(bytes.NewReader(testPNG(t, 30, 20)))
	assert.Equal(t, 30, width)
	assert.Equal(t, 20, height)
}

func TestDecodeDimensions_NotAnImage(t *testing.T) {
	width, height := DecodeDimensions(bytes.NewReader([]byte("garbage")))
	assert.Zero(t, width)
	assert.Zero(t, height)
}

func TestGenerateThumbnail_ScalesLongestEdge(t *testing.T) {
	thumb, err := GenerateThumbnail(bytes.NewReader(testPNG(t, 200, 100)), 50)
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 50, cfg.Width)
	assert.Equal(t, 25, cfg.Height)
}

func TestGenerateThumbnail_PortraitOrientation(t *testing.T) {
	thumb, err := GenerateThumbnail(bytes.NewReader(testPNG(t, 100, 200)), 50)
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestGenerateThumbnail_NoUpscaling(t *testing.T) {
	thumb, err := GenerateThumbnail(bytes.NewReader(testPNG(t, 10, 10)), 100)
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Width)
	assert.Equal(t, 10, cfg.Height)
}

func TestGenerateThumbnail_InvalidInput(t *testing.T) {
	_, err := GenerateThumbnail(bytes.NewReader([]byte("not an image")), 50)
	assert.Error(t, err)
}
