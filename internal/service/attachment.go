package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/noah-isme/intern-portal-api/internal/models"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
)

// AttachmentPolicy bounds uploaded files.
type AttachmentPolicy struct {
	MaxBytes     int64
	AllowedMIMEs []string
}

// Check sniffs the payload, replaces the client supplied mime type and
// enforces the size and type limits. A nil attachment passes.
func (p AttachmentPolicy) Check(a *models.Attachment) error {
	if a == nil {
		return nil
	}
	if len(a.Data) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "uploaded file is empty")
	}
	if p.MaxBytes > 0 && int64(len(a.Data)) > p.MaxBytes {
		return appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds the %d byte limit", p.MaxBytes))
	}

	detected := mimetype.Detect(a.Data)
	if !p.allowed(detected) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file type %s is not allowed", detected.String()))
	}
	a.MimeType = detected.String()
	a.Size = int64(len(a.Data))
	a.Filename = sanitizeFilename(a.Filename, detected.Extension())
	return nil
}

func (p AttachmentPolicy) allowed(m *mimetype.MIME) bool {
	if len(p.AllowedMIMEs) == 0 {
		return true
	}
	for _, allowed := range p.AllowedMIMEs {
		if m.Is(allowed) {
			return true
		}
	}
	return false
}

func sanitizeFilename(name, ext string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r < 32 || r == '"' || r == '/' {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." {
		name = "upload" + ext
	}
	return name
}
