package distributor

import (
	"strconv"

	handlershared "github.com/aquaponto/aquaponto/internal/http/handlers/shared"
	"github.com/aquaponto/aquaponto/internal/http/response"
	"github.com/aquaponto/aquaponto/internal/models"
	"github.com/aquaponto/aquaponto/internal/repository"
	"github.com/aquaponto/aquaponto/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductRequest product create/update request
type ProductRequest struct {
	BrandName   string          `json:"brand_name"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Liters      decimal.Decimal `json:"liters"`
	Price       models.Money    `json:"price" binding:"required"`
	ImageURL    string          `json:"image_url"`
	IsAvailable bool            `json:"is_available"`
	SortOrder   int             `json:"sort_order"`
}

func (r *ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		BrandName:   r.BrandName,
		Name:        r.Name,
		Description: r.Description,
		Liters:      r.Liters,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		IsAvailable: r.IsAvailable,
		SortOrder:   r.SortOrder,
	}
}

// ListProducts paginated catalog listing
func (h *Handler) ListProducts(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	products, total, err := h.DistributorService.ListProducts(repository.ProductListFilter{
		Page:          page,
		PageSize:      pageSize,
		DistributorID: distributor.ID,
		Search:        c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "falha ao listar os produtos", err)
		return
	}
	response.SuccessWithPage(c, products, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.BuildTotalPages(total, pageSize),
	})
}

// CreateProduct adds a catalog item
func (h *Handler) CreateProduct(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "requisição inválida", err)
		return
	}
	product, err := h.DistributorService.CreateProduct(distributor.ID, req.toInput())
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "falha ao criar o produto")
		return
	}
	response.Success(c, product)
}

// UpdateProduct updates a catalog item
func (h *Handler) UpdateProduct(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "identificador inválido", nil)
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "requisição inválida", err)
		return
	}
	product, err := h.DistributorService.UpdateProduct(uint(productID), distributor.ID, req.toInput())
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "falha ao atualizar o produto")
		return
	}
	response.Success(c, product)
}

// DeleteProduct removes a catalog item
func (h *Handler) DeleteProduct(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "identificador inválido", nil)
		return
	}
	if err := h.DistributorService.DeleteProduct(uint(productID), distributor.ID); err != nil {
		respondError(c, response.CodeInternal, "falha ao remover o produto", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
