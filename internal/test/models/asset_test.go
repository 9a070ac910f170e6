package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"contentflow-backend/internal/models"
)

func TestFileTypeForMIME(t *testing.T) {
	cases := map[string]string{
		"video/mp4":        models.FileTypeVideo,
		"video/quicktime":  models.FileTypeVideo,
		"audio/mpeg":       models.FileTypeAudio,
		"audio/wav":        models.FileTypeAudio,
		"audio/ogg":        models.FileTypeAudio,
		"text/plain":       models.FileTypeText,
		"text/markdown":    models.FileTypeMarkdown,
		"text/html":        models.FileTypeOther,
		"application/json": models.FileTypeOther,
		"":                 models.FileTypeOther,
	}

	for mimeType, expected := range cases {
		assert.Equal(t, expected, models.FileTypeForMIME(mimeType), mimeType)
	}
}
