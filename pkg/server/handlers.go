package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/entrhq/dokimion/pkg/backend"
	"github.com/entrhq/dokimion/pkg/service"
	"github.com/entrhq/dokimion/pkg/types"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// CountResponse is the response body for GET /api/:project/attribute/count.
type CountResponse struct {
	Count int `json:"count"`
}

// DeleteResponse is the response body for DELETE /api/:project/attribute/:id.
type DeleteResponse struct {
	Deleted string `json:"deleted"`
}

// BulkDeleteResponse is the response body for DELETE /api/:project/attribute.
type BulkDeleteResponse struct {
	Deleted []string `json:"deleted"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleProject(c echo.Context) error {
	p, err := s.service.Project(c.Request().Context(), sessionFrom(c), c.Param("project"))
	if err != nil {
		return s.toHTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleList(c echo.Context) error {
	filter, err := filterFrom(c)
	if err != nil {
		return err
	}
	attrs, err := s.service.FindFiltered(c.Request().Context(), sessionFrom(c), c.Param("project"), filter)
	if err != nil {
		return s.toHTTPError(err)
	}
	return c.JSON(http.StatusOK, attrs)
}

func (s *Server) handleCount(c echo.Context) error {
	filter, err := filterFrom(c)
	if err != nil {
		return err
	}
	n, err := s.service.Count(c.Request().Context(), sessionFrom(c), c.Param("project"), filter)
	if err != nil {
		return s.toHTTPError(err)
	}
	return c.JSON(http.StatusOK, CountResponse{Count: n})
}

func (s *Server) handleGet(c echo.Context) error {
	attr, err := s.service.FindOne(c.Request().Context(), sessionFrom(c), c.Param("project"), c.Param("id"))
	if err != nil {
		return s.toHTTPError(err)
	}
	return c.JSON(http.StatusOK, attr)
}

func (s *Server) handleSave(c echo.Context) error {
	var attr types.Attribute
	if err := c.Bind(&attr); err != nil {
		s.logger.Warnf("invalid attribute request: %v", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&attr); err != nil {
		return err
	}

	saved, err := s.service.Save(c.Request().Context(), sessionFrom(c), c.Param("project"), attr)
	if err != nil {
		return s.toHTTPError(err)
	}
	return c.JSON(http.StatusOK, saved)
}

func (s *Server) handleSaveAll(c echo.Context) error {
	var attrs []types.Attribute
	if err := (&echo.DefaultBinder{}).BindBody(c, &attrs); err != nil {
		s.logger.Warnf("invalid attribute batch: %v", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(attrs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one attribute is required")
	}
	for i := range attrs {
		if err := c.Validate(&attrs[i]); err != nil {
			return err
		}
	}

	saved, err := s.service.SaveAll(c.Request().Context(), sessionFrom(c), c.Param("project"), attrs)
	if err != nil {
		return s.toHTTPError(err)
	}
	return c.JSON(http.StatusOK, saved)
}

func (s *Server) handleDeleteFiltered(c echo.Context) error {
	filter, err := filterFrom(c)
	if err != nil {
		return err
	}
	// "*" deletes everything; an empty pattern is refused
	if filter.NamePattern == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name pattern is required")
	}

	deleted, err := s.service.DeleteFiltered(c.Request().Context(), sessionFrom(c), c.Param("project"), filter)
	if err != nil {
		return s.toHTTPError(err)
	}
	return c.JSON(http.StatusOK, BulkDeleteResponse{Deleted: deleted})
}

func (s *Server) handleDelete(c echo.Context) error {
	id := c.Param("id")
	if err := s.service.Delete(c.Request().Context(), sessionFrom(c), c.Param("project"), id); err != nil {
		return s.toHTTPError(err)
	}
	return c.JSON(http.StatusOK, DeleteResponse{Deleted: id})
}

// sessionFrom reads the caller identity from the request headers.
func sessionFrom(c echo.Context) service.Session {
	header := c.Request().Header
	return service.Session{
		Login: header.Get(backend.HeaderUser),
		Roles: service.ParseRoles(header.Get(backend.HeaderRoles)),
	}
}

func filterFrom(c echo.Context) (service.Filter, error) {
	filter := service.Filter{NamePattern: c.QueryParam("name")}
	err := echo.QueryParamsBinder(c).
		Int("skip", &filter.Skip).
		Int("limit", &filter.Limit).
		BindError()
	if err != nil {
		return service.Filter{}, echo.NewHTTPError(http.StatusBadRequest, "skip and limit must be integers")
	}
	if filter.Skip < 0 || filter.Limit < 0 {
		return service.Filter{}, echo.NewHTTPError(http.StatusBadRequest, "skip and limit must not be negative")
	}
	return filter, nil
}

// toHTTPError maps service errors onto HTTP statuses.
func (s *Server) toHTTPError(err error) error {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrLockTimeout):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.As(err, &verr):
		if verr.Conflict {
			return echo.NewHTTPError(http.StatusConflict, verr.Message)
		}
		return echo.NewHTTPError(http.StatusBadRequest, verr.Message)
	default:
		s.logger.Errorf("request failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
