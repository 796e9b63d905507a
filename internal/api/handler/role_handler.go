package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/possuite/backoffice/internal/api/middleware"
	"github.com/possuite/backoffice/internal/core/ports"
)

type RoleHandler struct {
	service ports.RoleService
}

func NewRoleHandler(service ports.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// List returns a store's roles.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        storeId  path      string  true  "Store ID"
// @Success      200      {object}  rolesResponse
// @Router       /api/stores/{storeId}/roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	roles, err := h.service.List(c.Request().Context(), c.Param(middleware.StoreParam))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rolesResponse{Roles: roles})
}

// Create adds a custom role.
//
// @Summary      Create a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        storeId  path      string       true  "Store ID"
// @Param        body     body      roleRequest  true  "Role definition"
// @Success      201      {object}  domain.Role
// @Failure      400      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Router       /api/stores/{storeId}/roles [post]
func (h *RoleHandler) Create(c echo.Context) error {
	var req roleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	role, err := h.service.Create(c.Request().Context(), ports.RoleInput{
		StoreID:     c.Param(middleware.StoreParam),
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, role)
}

// Update replaces a role's name, description and permissions.
//
// @Summary      Update a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        storeId  path      string       true  "Store ID"
// @Param        roleId   path      string       true  "Role ID"
// @Param        body     body      roleRequest  true  "Role definition"
// @Success      200      {object}  domain.Role
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /api/stores/{storeId}/roles/{roleId} [put]
func (h *RoleHandler) Update(c echo.Context) error {
	var req roleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	role, err := h.service.Update(c.Request().Context(), c.Param("roleId"), ports.RoleInput{
		StoreID:     c.Param(middleware.StoreParam),
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

// Delete removes a custom role that no staff member holds.
//
// @Summary      Delete a role
// @Tags         roles
// @Security     BearerAuth
// @Param        storeId  path  string  true  "Store ID"
// @Param        roleId   path  string  true  "Role ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/stores/{storeId}/roles/{roleId} [delete]
func (h *RoleHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param(middleware.StoreParam), c.Param("roleId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
