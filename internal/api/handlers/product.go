package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/onlinestore/catalog-admin/internal/models"
	service "github.com/onlinestore/catalog-admin/internal/services"
	"github.com/onlinestore/catalog-admin/internal/utils"
	"github.com/onlinestore/catalog-admin/internal/utils/response"
)

type ProductHandler struct {
	productService service.ProductService
	validator      *validator.Validate
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService, validator: utils.NewValidator()}
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid product id", http.StatusBadRequest)

		return 0, false
	}

	return id, true
}

func (h *ProductHandler) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.CreateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		req.NameEn = utils.Sanitize(req.NameEn)
		req.NameAr = utils.Sanitize(req.NameAr)
		req.DescriptionEn = utils.Sanitize(req.DescriptionEn)
		req.DescriptionAr = utils.Sanitize(req.DescriptionAr)

		product, err := h.productService.CreateProduct(r.Context(), &req)
		if err != nil {
			slog.Error("Error during product creation", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		slog.Info("Product created successfully", slog.Int64("productId", product.ID))
		response.Success(w, http.StatusCreated, product)
	}
}

func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, ok := productID(w, r)
		if !ok {
			return
		}

		product, err := h.productService.GetProduct(r.Context(), id)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

// ListProducts serves the filtered admin listing.
// e.g. GET /products?page=1&pageSize=10&categoryId=3&isPublished=true
func (h *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		filter := parseProductFilter(r)

		products, total, err := h.productService.ListProducts(r.Context(), filter)
		if err != nil {
			slog.Error("Failed to fetch products", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, models.NewPaginatedResponse(products, total, filter.Page, filter.PageSize))
	}
}

func parseProductFilter(r *http.Request) models.ProductFilter {

	query := r.URL.Query()

	filter := models.ProductFilter{
		SearchTerm: utils.Sanitize(query.Get("searchTerm")),
		Sorting:    query.Get("sorting"),
	}

	filter.Page, _ = strconv.Atoi(query.Get("page"))
	filter.PageSize, _ = strconv.Atoi(query.Get("pageSize"))

	if v := query.Get("categoryId"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.CategoryID = &id
		}
	}

	for name, dest := range map[string]**bool{
		"isActive":     &filter.IsActive,
		"isPublished":  &filter.IsPublished,
		"isLowStock":   &filter.IsLowStock,
		"isOutOfStock": &filter.IsOutOfStock,
	} {
		if v := query.Get(name); v != "" {
			if parsed, err := strconv.ParseBool(v); err == nil {
				*dest = &parsed
			}
		}
	}

	if v := query.Get("minPrice"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = &price
		}
	}

	if v := query.Get("maxPrice"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = &price
		}
	}

	return filter
}

func (h *ProductHandler) GetProductsByCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		categoryID, err := strconv.Atoi(r.PathValue("categoryId"))
		if err != nil || categoryID <= 0 {
			http.Error(w, "Invalid category id", http.StatusBadRequest)

			return
		}

		onlyPublished, _ := strconv.ParseBool(r.URL.Query().Get("onlyPublished"))

		products, err := h.productService.GetProductsByCategory(r.Context(), categoryID, onlyPublished)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, products)
	}
}

func (h *ProductHandler) GetPublishedProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var categoryID *int

		if v := r.URL.Query().Get("categoryId"); v != "" {
			id, err := strconv.Atoi(v)
			if err != nil || id <= 0 {
				http.Error(w, "Invalid category id", http.StatusBadRequest)

				return
			}

			categoryID = &id
		}

		products, err := h.productService.GetPublishedProducts(r.Context(), categoryID)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, products)
	}
}

func (h *ProductHandler) GetLowStockProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var threshold *int

		if v := r.URL.Query().Get("threshold"); v != "" {
			t, err := strconv.Atoi(v)
			if err != nil || t <= 0 {
				http.Error(w, "Invalid threshold", http.StatusBadRequest)

				return
			}

			threshold = &t
		}

		products, err := h.productService.GetLowStockProducts(r.Context(), threshold)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, products)
	}
}

func (h *ProductHandler) GetOutOfStockProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		products, err := h.productService.GetOutOfStockProducts(r.Context())
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, products)
	}
}

func (h *ProductHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, ok := productID(w, r)
		if !ok {
			return
		}

		var req models.UpdateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		utils.SanitizePtr(req.NameEn)
		utils.SanitizePtr(req.NameAr)
		utils.SanitizePtr(req.DescriptionEn)
		utils.SanitizePtr(req.DescriptionAr)

		product, err := h.productService.UpdateProduct(r.Context(), id, &req)
		if err != nil {
			slog.Error("Error during product update", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) DeleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, ok := productID(w, r)
		if !ok {
			return
		}

		if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
			slog.Error("Error during product deletion", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *ProductHandler) PublishProduct() http.HandlerFunc {
	return h.setPublished(true)
}

func (h *ProductHandler) UnpublishProduct() http.HandlerFunc {
	return h.setPublished(false)
}

func (h *ProductHandler) setPublished(published bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, ok := productID(w, r)
		if !ok {
			return
		}

		var (
			product *models.Product
			err     error
		)

		if published {
			product, err = h.productService.PublishProduct(r.Context(), id)
		} else {
			product, err = h.productService.UnpublishProduct(r.Context(), id)
		}

		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) UpdateStock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, ok := productID(w, r)
		if !ok {
			return
		}

		var req models.UpdateStockRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.productService.UpdateStock(r.Context(), id, &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) AdjustStock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, ok := productID(w, r)
		if !ok {
			return
		}

		var req models.AdjustStockRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.productService.AdjustStock(r.Context(), id, &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) BulkUpdateStock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.BulkUpdateStockRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if err := h.productService.BulkUpdateStock(r.Context(), &req); err != nil {
			slog.Error("Error during bulk stock update", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *ProductHandler) CheckStock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.CheckStockRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		result, err := h.productService.CheckStock(r.Context(), &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, result)
	}
}
