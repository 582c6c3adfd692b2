package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

var uploadKinds = map[string]struct{}{
	"id_document":     {},
	"receipt":         {},
	"expense_invoice": {},
}

var uploadExtensions = map[string]struct{}{
	".pdf":  {},
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
}

// UploadFile stores one multipart file under the uploads dir and returns
// its relative path for use in id_document_path / receipt_path fields.
func (s *Server) UploadFile(c *gin.Context) {
	if s.cfg.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadSize)
	}

	kind := strings.ToLower(strings.TrimSpace(c.PostForm("kind")))
	if kind == "" {
		kind = "receipt"
	}
	if _, ok := uploadKinds[kind]; !ok {
		AbortWithError(c, newValidationError("kind", "invalid_kind", "invalid upload kind"))
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "required", "file is required"))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := uploadExtensions[ext]; !ok {
		AbortWithError(c, newValidationError("file", "unsupported_type", "unsupported file type"))
		return
	}

	dir := filepath.Join(s.cfg.UploadDir, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		AbortWithError(c, err)
		return
	}

	name := fmt.Sprintf("%s%s", s.genID.Generate().String(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(dir, name)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"path": filepath.ToSlash(filepath.Join("uploads", kind, name)),
	})
}
