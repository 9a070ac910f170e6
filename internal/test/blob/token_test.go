package blob_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"contentflow-backend/internal/blob"
	"contentflow-backend/internal/models"
)

func validMetadata() models.UploadMetadata {
	return models.UploadMetadata{
		ProjectID: "9f0e2b36-45f4-4c2a-9c63-0a4b3e2f1d8c",
		Title:     "interview",
		FileType:  models.FileTypeAudio,
		MimeType:  "audio/mpeg",
		Size:      1024,
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := blob.NewTokenIssuer("test-secret")
	meta := validMetadata()

	token, err := issuer.IssueToken("project/interview.mp3", meta)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	pathname, got, err := issuer.VerifyToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "project/interview.mp3", pathname)
	assert.Equal(t, meta, got)
}

func TestTokenIssuer_RequiresPathname(t *testing.T) {
	issuer := blob.NewTokenIssuer("test-secret")

	_, err := issuer.IssueToken("", validMetadata())
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsDisallowedContentType(t *testing.T) {
	issuer := blob.NewTokenIssuer("test-secret")

	meta := validMetadata()
	meta.MimeType = "application/x-msdownload"
	_, err := issuer.IssueToken("project/app.exe", meta)
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsOversizedFile(t *testing.T) {
	issuer := blob.NewTokenIssuer("test-secret")

	meta := validMetadata()
	meta.Size = blob.MaxUploadBytes + 1
	_, err := issuer.IssueToken("project/huge.mp4", meta)
	assert.Error(t, err)

	meta.Size = blob.MaxUploadBytes
	_, err = issuer.IssueToken("project/huge.mp4", meta)
	assert.NoError(t, err)
}

func TestTokenIssuer_RejectsForeignToken(t *testing.T) {
	issuer := blob.NewTokenIssuer("test-secret")
	other := blob.NewTokenIssuer("different-secret")

	token, err := other.IssueToken("project/interview.mp3", validMetadata())
	assert.NoError(t, err)

	_, _, err = issuer.VerifyToken(token)
	assert.Error(t, err)
}

func TestContentTypeAllowed(t *testing.T) {
	for _, allowed := range []string{
		"video/mp4", "video/quicktime",
		"audio/mpeg", "audio/wav", "audio/ogg",
		"text/plain", "text/markdown",
	} {
		assert.True(t, blob.ContentTypeAllowed(allowed), allowed)
	}

	assert.False(t, blob.ContentTypeAllowed("image/png"))
	assert.False(t, blob.ContentTypeAllowed("application/pdf"))
	assert.False(t, blob.ContentTypeAllowed(""))
}
