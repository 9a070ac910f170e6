package blob

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"contentflow-backend/internal/models"
)

// MaxUploadBytes caps a single upload at 5 GiB.
const MaxUploadBytes = int64(5) << 30

// AllowedContentTypes lists the MIME types an upload token will be issued for.
var AllowedContentTypes = []string{
	"video/mp4",
	"video/quicktime",
	"audio/mpeg",
	"audio/wav",
	"audio/ogg",
	"text/plain",
	"text/markdown",
}

func ContentTypeAllowed(contentType string) bool {
	for _, allowed := range AllowedContentTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

// TokenIssuer signs and verifies the short-lived client tokens that authorize
// a direct-to-storage upload. The token binds the destination pathname and
// the client's metadata payload, so the completion callback can trust both.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    time.Hour,
	}
}

func (i *TokenIssuer) IssueToken(pathname string, meta models.UploadMetadata) (string, error) {
	if pathname == "" {
		return "", fmt.Errorf("pathname is required")
	}
	if !ContentTypeAllowed(meta.MimeType) {
		return "", fmt.Errorf("content type %q is not allowed", meta.MimeType)
	}
	if meta.Size <= 0 || meta.Size > MaxUploadBytes {
		return "", fmt.Errorf("size %d exceeds maximum of %d bytes", meta.Size, MaxUploadBytes)
	}

	payload, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"pathname": pathname,
		"payload":  string(payload),
		"iat":      now.Unix(),
		"exp":      now.Add(i.ttl).Unix(),
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// VerifyToken validates a client token and returns the pathname and metadata
// payload it was issued for.
func (i *TokenIssuer) VerifyToken(tokenString string) (string, models.UploadMetadata, error) {
	var meta models.UploadMetadata

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", meta, fmt.Errorf("invalid upload token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", meta, fmt.Errorf("invalid upload token claims")
	}

	pathname, ok := claims["pathname"].(string)
	if !ok || pathname == "" {
		return "", meta, fmt.Errorf("upload token missing pathname")
	}

	payload, ok := claims["payload"].(string)
	if !ok {
		return "", meta, fmt.Errorf("upload token missing payload")
	}
	if err := json.Unmarshal([]byte(payload), &meta); err != nil {
		return "", meta, fmt.Errorf("failed to parse token payload: %w", err)
	}

	return pathname, meta, nil
}
