package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-portal-api/internal/middleware"
	"github.com/noah-isme/intern-portal-api/internal/models"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
	"github.com/noah-isme/intern-portal-api/pkg/response"
)

// sessionFromContext writes a 401 and returns false when the route was
// reached without a resolved session.
func sessionFromContext(c *gin.Context) (models.Session, bool) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Session{}, false
	}
	return session, true
}

// pageParams reads page and limit. Malformed values fall back to zero so
// the service applies its defaults.
func pageParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		page = 0
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = 0
	}
	return page, limit
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// bind decodes a JSON body or, for multipart requests, the form fields.
func bind(c *gin.Context, dest interface{}) error {
	var err error
	if isMultipart(c) {
		err = c.ShouldBind(dest)
	} else {
		err = c.ShouldBindJSON(dest)
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload")
	}
	return nil
}

// formFile reads an optional multipart file. A missing field yields nil.
// Reads stop one byte past maxBytes so oversized uploads are rejected
// without buffering them whole.
func formFile(c *gin.Context, field string, maxBytes int64) (*models.Attachment, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart upload")
	}
	if maxBytes > 0 && header.Size > maxBytes {
		return nil, appErrors.ErrPayloadTooLarge
	}
	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Internal(err, "failed to read upload")
	}
	defer file.Close()

	reader := io.Reader(file)
	if maxBytes > 0 {
		reader = io.LimitReader(file, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to read upload")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, appErrors.ErrPayloadTooLarge
	}
	return &models.Attachment{
		Data:     data,
		MimeType: header.Header.Get("Content-Type"),
		Size:     int64(len(data)),
		Filename: header.Filename,
	}, nil
}

func sendAttachment(c *gin.Context, attachment *models.Attachment, download bool) {
	if !attachment.Present() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no file attached"))
		return
	}
	response.Binary(c, attachment.Filename, attachment.MimeType, attachment.Data, download)
}
