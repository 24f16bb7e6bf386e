package distributor

import (
	"github.com/aquaponto/aquaponto/internal/http/response"

	"github.com/gin-gonic/gin"
)

// Upload stores an image (logo or product photo) and returns its URL path
func (h *Handler) Upload(c *gin.Context) {
	if _, ok := h.requireDistributor(c); !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "arquivo ausente", err)
		return
	}
	scene := c.DefaultPostForm("scene", "common")

	path, err := h.UploadService.SaveFile(file, scene)
	if err != nil {
		respondWithMappedError(c, err, uploadErrorRules, response.CodeInternal, "falha ao salvar o arquivo")
		return
	}
	response.Success(c, gin.H{"url": path})
}
