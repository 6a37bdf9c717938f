package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	"github.com/greenlibrary/catalog/internal/api/middleware"
	"github.com/greenlibrary/catalog/internal/core/domain"
	"github.com/greenlibrary/catalog/internal/core/ports"
)

const fallbackImageType = "application/octet-stream"

type ProductHandler struct {
	productService ports.ProductService
	maxImageBytes  int64
}

func NewProductHandler(productService ports.ProductService, maxImageBytes int64) *ProductHandler {
	return &ProductHandler{productService: productService, maxImageBytes: maxImageBytes}
}

// List renders the public home listing, newest first.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Success      200  {object}  listResponse
// @Router       / [get]
// @Router       /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.productService.List(c.Request().Context())
	if err != nil {
		return err
	}

	user, _ := middleware.UserFrom(c)
	return c.JSON(http.StatusOK, listResponse{
		User:     toUserResponse(user),
		Products: toProductResponses(products),
	})
}

// Submit stores a product owned by the current user. The image part is optional.
//
// @Summary      Submit a product
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        name         formData  string  true   "Product name"
// @Param        link         formData  string  true   "Absolute http(s) link"
// @Param        description  formData  string  false  "Description"
// @Param        image        formData  file    false  "Product image"
// @Success      201  {object}  productResponse
// @Success      303  "Browser redirect to /"
// @Failure      401  {object}  api.errorResponse
// @Failure      413  {object}  api.errorResponse
// @Failure      422  {object}  api.errorResponse
// @Router       /products [post]
func (h *ProductHandler) Submit(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	image, err := h.readImage(c)
	if err != nil {
		return err
	}

	product, err := h.productService.Submit(c.Request().Context(), ports.SubmitProductInput{
		Name:        req.Name,
		Link:        req.Link,
		Description: req.Description,
		Image:       image,
		OwnerID:     user.ID,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "/", toProductResponse(product))
}

// Image streams the stored image bytes. Only raster image types are echoed
// back as the content type; anything else is served as an opaque download.
//
// @Summary      Product image
// @Tags         products
// @Produce      octet-stream
// @Param        id   path  string  true  "Product id"
// @Success      200
// @Failure      404  {object}  api.errorResponse
// @Router       /products/{id}/image [get]
func (h *ProductHandler) Image(c echo.Context) error {
	image, err := h.productService.Image(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	contentType, ok := imageType(image)
	if !ok {
		contentType = fallbackImageType
	}
	c.Response().Header().Set(echo.HeaderXContentTypeOptions, "nosniff")
	return c.Blob(http.StatusOK, contentType, image)
}

// readImage returns nil when the request carries no file. Payloads that do
// not sniff as a raster image are rejected.
func (h *ProductHandler) readImage(c echo.Context) ([]byte, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, bindError(err, "invalid image upload")
	}

	if h.maxImageBytes > 0 && fh.Size > h.maxImageBytes {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("image exceeds %d bytes", h.maxImageBytes))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	if _, ok := imageType(data); !ok {
		return nil, fmt.Errorf("%w: image must be a raster image file", domain.ErrValidation)
	}
	return data, nil
}

// imageType sniffs data and reports whether it is a raster image safe to
// serve inline. SVG is excluded because it can carry script.
func imageType(data []byte) (string, bool) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") || mt.Is("image/svg+xml") {
		return "", false
	}
	return mt.String(), true
}

// bindError keeps an over-limit body as 413 whichever reader tripped it.
// echo's binder wraps the limit error in a 400, so the chain is searched.
// Every other bind failure becomes a 400 with msg.
func bindError(err error, msg string) error {
	var tooLarge *http.MaxBytesError
	if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) || errors.As(err, &tooLarge) {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "upload too large")
	}
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}
