package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UploadDocumentHandler stores and indexes a multipart "file" upload.
func (api *API) UploadDocumentHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			SendEngineError(c, "upload", err)
			return
		}
		result := &ValidationResult{Valid: true}
		result.AddError("file", "A file must be uploaded in the 'file' form field")
		SendValidationError(c, result)
		return
	}

	if result := ValidateFileName(fileHeader.Filename); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		SendInternalError(c, "reading upload", err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		SendInternalError(c, "reading upload", err)
		return
	}

	result, err := api.engine.Ingest(c.Request.Context(), fileHeader.Filename, content)
	if err != nil {
		SendEngineError(c, "upload", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "File '" + result.Document.Name + "' uploaded and indexed",
		"result":  result,
	})
}

// ListDocumentsHandler lists every document with a preview of its text.
func (api *API) ListDocumentsHandler(c *gin.Context) {
	docs, err := api.engine.ListDocuments(c.Request.Context())
	if err != nil {
		SendInternalError(c, "listing documents", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": docs,
		"total":     len(docs),
	})
}

// GetDocumentHandler retrieves a document with its full text
func (api *API) GetDocumentHandler(c *gin.Context) {
	documentID := c.Param("documentId")
	id, result := ValidateDocumentID(documentID)
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	doc, err := api.engine.GetDocument(c.Request.Context(), id)
	if err != nil {
		SendEngineError(c, "getting document", err)
		return
	}

	c.JSON(http.StatusOK, doc)
}
