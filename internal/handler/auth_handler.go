package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/crockshine/backend-erp/internal/apperr"
	"github.com/crockshine/backend-erp/internal/auth"
	"github.com/crockshine/backend-erp/internal/middleware"
	"github.com/crockshine/backend-erp/pkg/logger"
	"github.com/crockshine/backend-erp/prometheus"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// EmployeeRequest is the body of POST /employees
type EmployeeRequest struct {
	Role       string  `json:"role" validate:"required,oneof=ADMIN SELLER admin seller"`
	Name       string  `json:"name" validate:"required"`
	Lastname   string  `json:"lastname" validate:"required"`
	Patronymic *string `json:"patronymic"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=6"`
}

// EmployeePatchRequest is the body of PATCH /employees/:id
type EmployeePatchRequest struct {
	Role       *string `json:"role" validate:"omitempty,oneof=ADMIN SELLER admin seller"`
	Name       *string `json:"name"`
	Lastname   *string `json:"lastname"`
	Patronymic *string `json:"patronymic"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Password   *string `json:"password" validate:"omitempty,min=6"`
}

// Login exchanges credentials for an access token
func (h *Handler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.AuthAttemptsCounter.Inc()

	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return respondError(c, err)
	}

	session, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if appErr, ok := apperr.As(err); ok && appErr.Kind == apperr.ErrUnauthorized {
			prometheus.RecordAuthError("invalid_credentials")
			log.Warn("Login failed", zap.String("email", req.Email))
		} else {
			prometheus.RecordAuthError("internal")
		}
		return respondError(c, err)
	}

	prometheus.AuthSuccessCounter.Inc()
	log.Info("Employee logged in",
		zap.String("employee_id", session.Employee.ID),
		zap.String("role", string(session.Employee.Role)))
	return c.JSON(http.StatusOK, session)
}

// Me returns the authenticated employee
func (h *Handler) Me(c echo.Context) error {
	id, ok := middleware.EmployeeID(c)
	if !ok {
		return respondError(c, apperr.Unauthorized("missing employee identity"))
	}
	employee, err := h.Auth.GetEmployee(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, employee)
}

// CreateEmployee registers a new employee
func (h *Handler) CreateEmployee(c echo.Context) error {
	log := logger.FromEcho(c)

	var req EmployeeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	employee, err := h.Auth.CreateEmployee(c.Request().Context(), auth.EmployeeInput{
		Role:       req.Role,
		Name:       req.Name,
		Lastname:   req.Lastname,
		Patronymic: req.Patronymic,
		Email:      req.Email,
		Password:   req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Employee created",
		zap.String("employee_id", employee.ID),
		zap.String("role", string(employee.Role)))
	return c.JSON(http.StatusCreated, employee)
}

// ListEmployees returns all employees
func (h *Handler) ListEmployees(c echo.Context) error {
	employees, err := h.Auth.ListEmployees(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, employees)
}

// GetEmployee returns one employee
func (h *Handler) GetEmployee(c echo.Context) error {
	employee, err := h.Auth.GetEmployee(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, employee)
}

// UpdateEmployee patches an employee
func (h *Handler) UpdateEmployee(c echo.Context) error {
	var req EmployeePatchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	employee, err := h.Auth.UpdateEmployee(c.Request().Context(), c.Param("id"), auth.EmployeePatch{
		Role:       req.Role,
		Name:       req.Name,
		Lastname:   req.Lastname,
		Patronymic: req.Patronymic,
		Email:      req.Email,
		Password:   req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	logger.FromEcho(c).Info("Employee updated", zap.String("employee_id", employee.ID))
	return c.JSON(http.StatusOK, employee)
}

// DeleteEmployee removes an employee
func (h *Handler) DeleteEmployee(c echo.Context) error {
	id := c.Param("id")
	if self, _ := middleware.EmployeeID(c); self == id {
		return respondError(c, apperr.Validation("employees cannot delete their own account"))
	}
	if err := h.Auth.DeleteEmployee(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}

	logger.FromEcho(c).Info("Employee deleted", zap.String("employee_id", id))
	return c.NoContent(http.StatusNoContent)
}
