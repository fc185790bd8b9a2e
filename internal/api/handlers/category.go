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

type CategoryHandler struct {
	categoryService service.CategoryService
	validator       *validator.Validate
}

func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, validator: utils.NewValidator()}
}

func categoryID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		http.Error(w, "Invalid category id", http.StatusBadRequest)

		return 0, false
	}

	return id, true
}

func (h *CategoryHandler) CreateCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.CreateCategoryRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		req.NameEn = utils.Sanitize(req.NameEn)
		req.NameAr = utils.Sanitize(req.NameAr)
		req.DescriptionEn = utils.Sanitize(req.DescriptionEn)
		req.DescriptionAr = utils.Sanitize(req.DescriptionAr)

		category, err := h.categoryService.CreateCategory(r.Context(), &req)
		if err != nil {
			slog.Error("Error during category creation", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		slog.Info("Category created successfully", slog.Int("categoryId", category.ID))
		response.Success(w, http.StatusCreated, category)
	}
}

func (h *CategoryHandler) GetCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, ok := categoryID(w, r)
		if !ok {
			return
		}

		category, err := h.categoryService.GetCategory(r.Context(), id)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, category)
	}
}

// ListCategories serves the paginated admin listing.
// e.g. GET /categories?page=1&pageSize=10&isActive=true&searchTerm=shoes
func (h *CategoryHandler) ListCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		filter := models.CategoryFilter{
			SearchTerm: utils.Sanitize(r.URL.Query().Get("searchTerm")),
			Sorting:    r.URL.Query().Get("sorting"),
		}

		filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
		filter.PageSize, _ = strconv.Atoi(r.URL.Query().Get("pageSize"))

		if v := r.URL.Query().Get("isActive"); v != "" {
			if isActive, err := strconv.ParseBool(v); err == nil {
				filter.IsActive = &isActive
			}
		}

		categories, total, err := h.categoryService.ListCategories(r.Context(), filter)
		if err != nil {
			slog.Error("Failed to fetch categories", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, models.NewPaginatedResponse(categories, total, filter.Page, filter.PageSize))
	}
}

func (h *CategoryHandler) GetActiveCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		categories, err := h.categoryService.GetActiveCategories(r.Context())
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, categories)
	}
}

func (h *CategoryHandler) UpdateCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, ok := categoryID(w, r)
		if !ok {
			return
		}

		var req models.UpdateCategoryRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		utils.SanitizePtr(req.NameEn)
		utils.SanitizePtr(req.NameAr)
		utils.SanitizePtr(req.DescriptionEn)
		utils.SanitizePtr(req.DescriptionAr)

		category, err := h.categoryService.UpdateCategory(r.Context(), id, &req)
		if err != nil {
			slog.Error("Error during category update", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, category)
	}
}

func (h *CategoryHandler) DeleteCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, ok := categoryID(w, r)
		if !ok {
			return
		}

		if err := h.categoryService.DeleteCategory(r.Context(), id); err != nil {
			slog.Error("Error during category deletion", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *CategoryHandler) CanDeleteCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, ok := categoryID(w, r)
		if !ok {
			return
		}

		canDelete, err := h.categoryService.CanDeleteCategory(r.Context(), id)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, map[string]bool{"canDelete": canDelete})
	}
}

func (h *CategoryHandler) ActivateCategory() http.HandlerFunc {
	return h.setActive(true)
}

func (h *CategoryHandler) DeactivateCategory() http.HandlerFunc {
	return h.setActive(false)
}

func (h *CategoryHandler) setActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, ok := categoryID(w, r)
		if !ok {
			return
		}

		var (
			category *models.Category
			err      error
		)

		if active {
			category, err = h.categoryService.ActivateCategory(r.Context(), id)
		} else {
			category, err = h.categoryService.DeactivateCategory(r.Context(), id)
		}

		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, category)
	}
}

type changeDisplayOrderRequest struct {
	DisplayOrder int `json:"displayOrder" validate:"gte=0"`
}

func (h *CategoryHandler) ChangeDisplayOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, ok := categoryID(w, r)
		if !ok {
			return
		}

		var req changeDisplayOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		category, err := h.categoryService.ChangeDisplayOrder(r.Context(), id, req.DisplayOrder)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, category)
	}
}
