package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/possuite/backoffice/internal/api/middleware"
	"github.com/possuite/backoffice/internal/core/ports"
)

type ProductHandler struct {
	products ports.ProductService
	reports  ports.ReportService
}

func NewProductHandler(products ports.ProductService, reports ports.ReportService) *ProductHandler {
	return &ProductHandler{products: products, reports: reports}
}

// List returns a store's products.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        storeId  path      string  true  "Store ID"
// @Success      200      {object}  productsResponse
// @Router       /api/stores/{storeId}/products [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.products.List(c.Request().Context(), c.Param(middleware.StoreParam))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productsResponse{Products: products})
}

// Create adds a product within the plan's product quota.
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        storeId  path      string                true  "Store ID"
// @Param        body     body      createProductRequest  true  "Product details"
// @Success      201      {object}  domain.Product
// @Failure      400      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Router       /api/stores/{storeId}/products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	product, err := h.products.Create(c.Request().Context(), ports.CreateProductInput{
		StoreID: c.Param(middleware.StoreParam),
		Name:    req.Name,
		SKU:     req.SKU,
		Price:   req.Price,
		Stock:   req.Stock,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, product)
}

// Delete removes a product and frees its quota slot.
//
// @Summary      Delete a product
// @Tags         products
// @Security     BearerAuth
// @Param        storeId    path  string  true  "Store ID"
// @Param        productId  path  string  true  "Product ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/stores/{storeId}/products/{productId} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	if err := h.products.Delete(c.Request().Context(), c.Param(middleware.StoreParam), c.Param("productId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AdvancedReport returns the store's inventory report.
//
// @Summary      Advanced inventory report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        storeId  path      string  true  "Store ID"
// @Success      200      {object}  advancedReportResponse
// @Failure      403      {object}  map[string]string
// @Router       /api/stores/{storeId}/reports/advanced [get]
func (h *ProductHandler) AdvancedReport(c echo.Context) error {
	report, err := h.reports.Advanced(c.Request().Context(), c.Param(middleware.StoreParam))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAdvancedReportResponse(report))
}
