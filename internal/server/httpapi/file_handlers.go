package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mini-page/Secura/internal/server/models"
)

func (s *Server) handleUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file part is required"})
		return
	}

	src, err := header.Open()
	if err != nil {
		s.writeError(c, err)
		return
	}
	defer src.Close()

	// Read at most one byte past the limit so the size gate can reject
	// without the transport buffering an arbitrarily large body.
	data, err := io.ReadAll(io.LimitReader(src, s.maxUploadBytes+1))
	if err != nil {
		s.writeError(c, err)
		return
	}

	mimeType := header.Header.Get("Content-Type")

	file, err := s.vault.Upload(c.Request.Context(),
		c.GetString(ctxUserID), header.Filename, mimeType, data, c.ClientIP())
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, file.Info())
}

func (s *Server) handleListFiles(c *gin.Context) {
	files, err := s.vault.List(c.Request.Context(),
		c.GetString(ctxUserID), c.GetString(ctxRole), c.Query("owner"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	infos := make([]models.FileInfo, 0, len(files))
	for _, f := range files {
		infos = append(infos, f.Info())
	}
	c.JSON(http.StatusOK, gin.H{"files": infos})
}

func (s *Server) handleGetMetadata(c *gin.Context) {
	file, err := s.vault.GetMetadata(c.Request.Context(),
		c.GetString(ctxUserID), c.GetString(ctxRole), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, file.Info())
}

func (s *Server) handleDownload(c *gin.Context) {
	data, file, err := s.vault.Download(c.Request.Context(),
		c.GetString(ctxUserID), c.GetString(ctxRole), c.Param("id"), c.ClientIP())
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.OriginalName))
	c.Data(http.StatusOK, file.MimeType, data)
}
