package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"buzzsway/internal/config"
	"buzzsway/internal/models"
	"buzzsway/internal/observability"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultMediaUploadDir       = "/tmp/buzzsway/uploads"
	DefaultMediaMaxUploadSizeMB = 100
	MediaImageMaxEdge           = 2048
	MediaWebPQuality            = 70
)

// MediaService is a content-addressed local blob store for post media.
// Blobs are keyed by the sha256 of their bytes, so the same upload always
// lands at the same path and duplicate uploads cost nothing. Images are
// downscaled and re-encoded as webp; everything else is stored verbatim.
type MediaService struct {
	uploadDir          string
	maxUploadSizeBytes int64
}

// NewMediaService returns a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	uploadDir := DefaultMediaUploadDir
	maxUploadSizeMB := DefaultMediaMaxUploadSizeMB

	if cfg != nil {
		if cfg.MediaUploadDir != "" {
			uploadDir = cfg.MediaUploadDir
		}
		if cfg.MediaMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.MediaMaxUploadSizeMB
		}
	}

	return &MediaService{
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Save stores the content and returns the URL it will be served under.
func (s *MediaService) Save(_ context.Context, content []byte, contentType string) (string, error) {
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detected := http.DetectContentType(content)
	if strings.HasPrefix(detected, "image/") {
		return s.saveImage(content)
	}
	return s.saveBlob(content, extensionFor(detected, contentType))
}

// Remove deletes the blob a previously returned URL points at. Callers treat
// failures as best-effort: the post row is already gone and an orphaned blob
// is harmless.
func (s *MediaService) Remove(url string) error {
	hash, filename, ok := parseMediaURL(url)
	if !ok {
		return models.NewValidationError("Invalid media URL")
	}
	path := filepath.Join(s.uploadDir, hash, filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return models.NewInternalError(err)
	}
	// Leave the hash directory behind if anything else still lives in it.
	_ = os.Remove(filepath.Join(s.uploadDir, hash))
	return nil
}

// UploadDir exposes the blob root so the server can mount a static handler
// over it.
func (s *MediaService) UploadDir() string {
	return s.uploadDir
}

func (s *MediaService) saveImage(content []byte) (string, error) {
	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	resized := resizeToFit(decoded, MediaImageMaxEdge, MediaImageMaxEdge)

	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, resized, &webp.Options{Quality: MediaWebPQuality}); err != nil {
		return "", models.NewInternalError(err)
	}
	return s.saveBlob(buf.Bytes(), ".webp")
}

func (s *MediaService) saveBlob(content []byte, ext string) (string, error) {
	hash := contentHash(content)
	filename := "blob" + ext
	path := filepath.Join(s.uploadDir, hash, filename)

	// Same bytes, same path: a re-upload is a no-op.
	if _, err := os.Stat(path); err == nil {
		return mediaURL(hash, filename), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return "", models.NewInternalError(err)
	}
	observability.MediaStoreBytes.Add(float64(len(content)))

	return mediaURL(hash, filename), nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func mediaURL(hash, filename string) string {
	return fmt.Sprintf("/media/%s/%s", hash, filename)
}

// parseMediaURL extracts (hash, filename) from a /media/<hash>/<file> URL.
// The hash must be lowercase hex to rule out path traversal via a crafted URL.
func parseMediaURL(url string) (hash, filename string, ok bool) {
	rest, found := strings.CutPrefix(url, "/media/")
	if !found {
		return "", "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || !isHexHash(parts[0]) {
		return "", "", false
	}
	filename = parts[1]
	if filename == "" || strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		return "", "", false
	}
	return parts[0], filename, true
}

func isHexHash(hash string) bool {
	if len(hash) != 64 {
		return false
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func extensionFor(detected, provided string) string {
	for _, ct := range []string{detected, provided} {
		switch strings.ToLower(strings.TrimSpace(strings.Split(ct, ";")[0])) {
		case "video/mp4":
			return ".mp4"
		case "video/webm":
			return ".webm"
		case "video/quicktime":
			return ".mov"
		case "audio/mpeg":
			return ".mp3"
		case "application/pdf":
			return ".pdf"
		}
	}
	return ".bin"
}
