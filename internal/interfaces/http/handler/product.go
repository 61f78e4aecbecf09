package handler

import (
	"errors"
	"net/http"

	catalogapp "github.com/catalogadmin/backend/internal/application/catalog"
	"github.com/catalogadmin/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ProductHandler handles the product list, the create and edit forms and
// product deletion
type ProductHandler struct {
	BaseHandler
	service     *catalogapp.ProductLifecycleService
	redirectURL string
}

// NewProductHandler creates a new ProductHandler. Successful form
// submissions redirect to redirectURL.
func NewProductHandler(service *catalogapp.ProductLifecycleService, redirectURL string) *ProductHandler {
	if redirectURL == "" {
		redirectURL = "/"
	}
	return &ProductHandler{
		service:     service,
		redirectURL: redirectURL,
	}
}

// List godoc
// @ID           listProducts
// @Summary      List products
// @Description  Every product ordered by SKU, with the URL of its current image
// @Tags         products
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductListItem}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BasicAuth
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Get godoc
// @ID           getProduct
// @Summary      Get a product
// @Description  One product as shown on the edit form
// @Tags         products
// @Produce      json
// @Param        sku path string true "Product SKU"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BasicAuth
// @Router       /products/{sku} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.service.Get(c.Request.Context(), c.Param("sku"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @ID           createProduct
// @Summary      Create a product
// @Description  Handles the create form. An empty SKU is generated. Redirects to the admin UI on success.
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        sku formData string false "Product SKU"
// @Param        title formData string true "Title"
// @Param        title_en formData string false "English title"
// @Param        brand formData string false "Brand"
// @Param        category formData string false "Category"
// @Param        description formData string false "Description"
// @Param        materials formData string false "Materials"
// @Param        case_pack_size formData integer false "Units per case"
// @Param        msrp formData number false "Suggested retail price"
// @Param        barcode formData string false "Barcode"
// @Param        dimensions_cm formData string false "Dimensions in cm"
// @Param        weight_g formData integer false "Weight in grams"
// @Param        origin formData string false "Country of origin"
// @Param        in_stock formData string false "One of: In Stock, Out of Stock, Discontinued"
// @Param        file formData file false "Product image"
// @Success      303
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BasicAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}

	attrs, details := form.attributes()
	if len(details) > 0 {
		h.ValidationError(c, details)
		return
	}

	image, err := readImage(c)
	if err != nil {
		h.handleFormError(c, err)
		return
	}

	_, err = h.service.Create(c.Request.Context(), catalogapp.CreateProductInput{
		SKU:        form.SKU,
		Attributes: attrs,
		Image:      image,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, h.redirectURL)
}

// Update godoc
// @ID           updateProduct
// @Summary      Update a product
// @Description  Handles the edit form. The file field is optional; a new file replaces the current image.
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        sku path string true "Product SKU"
// @Param        title formData string true "Title"
// @Param        title_en formData string false "English title"
// @Param        brand formData string false "Brand"
// @Param        category formData string false "Category"
// @Param        description formData string false "Description"
// @Param        materials formData string false "Materials"
// @Param        case_pack_size formData integer false "Units per case"
// @Param        msrp formData number false "Suggested retail price"
// @Param        barcode formData string false "Barcode"
// @Param        dimensions_cm formData string false "Dimensions in cm"
// @Param        weight_g formData integer false "Weight in grams"
// @Param        origin formData string false "Country of origin"
// @Param        in_stock formData string false "One of: In Stock, Out of Stock, Discontinued"
// @Param        existing_image_file formData string false "Current image file name"
// @Param        file formData file false "Replacement image"
// @Success      303
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BasicAuth
// @Router       /products/{sku} [post]
func (h *ProductHandler) Update(c *gin.Context) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}

	attrs, details := form.attributes()
	if len(details) > 0 {
		h.ValidationError(c, details)
		return
	}

	image, err := readImage(c)
	if err != nil {
		h.handleFormError(c, err)
		return
	}

	_, err = h.service.Update(c.Request.Context(), catalogapp.UpdateProductInput{
		SKU:               c.Param("sku"),
		Attributes:        attrs,
		ExistingImageFile: form.ExistingImageFile,
		Image:             image,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, h.redirectURL)
}

// Delete godoc
// @ID           deleteProduct
// @Summary      Delete a product
// @Description  Removes the product row and every image stored under its SKU
// @Tags         products
// @Produce      json
// @Param        sku path string true "Product SKU"
// @Success      303
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BasicAuth
// @Router       /products/{sku}/delete [get]
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("sku")); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, h.redirectURL)
}

func (h *ProductHandler) bindForm(c *gin.Context) (*productForm, bool) {
	var form productForm
	if err := c.ShouldBind(&form); err != nil {
		h.handleFormError(c, err)
		return nil, false
	}
	return &form, true
}

func (h *ProductHandler) handleFormError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &validationErrs):
		middleware.HandleValidationError(c, validationErrs)
	case errors.As(err, &maxBytesErr):
		h.HandleError(c, err)
	default:
		h.BadRequest(c, "invalid form: "+err.Error())
	}
}
