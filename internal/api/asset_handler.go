package api

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agencycms/internal/api/middleware"
)

// FileScanner vets an upload before it is stored. A nil scanner skips
// the check.
type FileScanner func(*multipart.FileHeader) error

// ClamdScanner streams uploads through the clamd daemon at addr. An
// empty address yields a nil scanner (local dev without the daemon).
func ClamdScanner(addr string) FileScanner {
	if strings.TrimSpace(addr) == "" {
		return nil
	}
	return func(file *multipart.FileHeader) error {
		reader, err := file.Open()
		if err != nil {
			return fmt.Errorf("open file for scan: %w", err)
		}
		defer reader.Close()

		clamdClient := clamd.NewClamd(addr)
		abortChan := make(chan bool)
		defer close(abortChan)

		scanChan, err := clamdClient.ScanStream(reader, abortChan)
		if err != nil {
			return fmt.Errorf("scan file: %w", err)
		}

		for result := range scanChan {
			if result.Status != clamd.RES_OK {
				return fmt.Errorf("malicious file detected")
			}
		}
		return nil
	}
}

// AssetHandler handles staff media uploads. Stored object keys are what
// records reference in their *_key columns.
type AssetHandler struct {
	Storage  ObjectStorage
	Logger   *slog.Logger
	Scan     FileScanner
	MaxBytes int64
}

// NewAssetHandler builds the handler.
func NewAssetHandler(storageClient ObjectStorage, logger *slog.Logger, scan FileScanner, maxBytes int64) *AssetHandler {
	return &AssetHandler{
		Storage:  storageClient,
		Logger:   logger,
		Scan:     scan,
		MaxBytes: maxBytes,
	}
}

// UploadMedia stores an uploaded file under media/ and returns its
// object key and public URL.
func (h *AssetHandler) UploadMedia(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		FieldErrors(c, map[string]string{"file": "this field is required"})
		return
	}
	if h.MaxBytes > 0 && file.Size > h.MaxBytes {
		FieldErrors(c, map[string]string{"file": fmt.Sprintf("must be at most %d bytes", h.MaxBytes)})
		return
	}

	if h.Scan != nil {
		if err := h.Scan(file); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}

	reader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	defer reader.Close()

	ext := strings.ToLower(path.Ext(file.Filename))
	objectKey := fmt.Sprintf("media/%d/%s%s", userID, uuid.NewString(), ext)
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := h.Storage.UploadFile(c.Request.Context(), objectKey, reader, file.Size, contentType); err != nil {
		h.Logger.Error("upload media", slog.String("error", err.Error()))
		Internal(c, "failed to upload file")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"object_key": objectKey,
		"url":        h.Storage.PublicURL(objectKey),
	})
}
