// Package auth authenticates employees and manages their accounts.
package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/crockshine/backend-erp/internal/apperr"
	"github.com/crockshine/backend-erp/internal/model"
	"github.com/crockshine/backend-erp/pkg/jwtutil"
)

// Store is the persistence authentication needs
type Store interface {
	CreateEmployee(ctx context.Context, e *model.Employee) error
	GetEmployee(ctx context.Context, id string) (*model.Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (*model.Employee, error)
	ListEmployees(ctx context.Context) ([]model.Employee, error)
	UpdateEmployee(ctx context.Context, id string, changes map[string]interface{}) error
	DeleteEmployee(ctx context.Context, id string) error
}

// TokenIssuer signs access tokens
type TokenIssuer interface {
	GenerateToken(employeeID, email, role string) (string, time.Time, error)
}

// Service handles login and employee administration
type Service struct {
	store  Store
	tokens TokenIssuer
	cost   int
}

// NewService creates an auth service
func NewService(store Store, tokens TokenIssuer) *Service {
	return &Service{store: store, tokens: tokens, cost: bcrypt.DefaultCost}
}

var _ TokenIssuer = (*jwtutil.JWTUtil)(nil)

// Session is the result of a successful login
type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Employee  *model.Employee `json:"employee"`
}

// EmployeeInput describes a new employee
type EmployeeInput struct {
	Role       string
	Name       string
	Lastname   string
	Patronymic *string
	Email      string
	Password   string
}

// EmployeePatch holds the fields to change; nil fields are kept
type EmployeePatch struct {
	Role       *string
	Name       *string
	Lastname   *string
	Patronymic *string
	Email      *string
	Password   *string
}

// Login checks credentials and issues a token. Unknown emails and wrong
// passwords fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	employee, err := s.store.GetEmployeeByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(employee.ID, employee.Email, string(employee.Role))
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, Employee: employee}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.Validation("invalid email %q", raw)
	}
	return email, nil
}

func parseRole(raw string) (model.Role, error) {
	role := model.Role(strings.ToUpper(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", apperr.Validation("unknown role %q, expected ADMIN or SELLER", raw)
	}
	return role, nil
}

func (s *Service) hash(password string) (string, error) {
	if len(password) < 6 {
		return "", apperr.Validation("password must be at least 6 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", apperr.Validation("password cannot be hashed: %v", err)
	}
	return string(hashed), nil
}

// CreateEmployee validates in and stores the employee with a hashed password
func (s *Service) CreateEmployee(ctx context.Context, in EmployeeInput) (*model.Employee, error) {
	role, err := parseRole(in.Role)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	name, lastname := strings.TrimSpace(in.Name), strings.TrimSpace(in.Lastname)
	if name == "" || lastname == "" {
		return nil, apperr.Validation("name and lastname are required")
	}
	hashed, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	employee := &model.Employee{
		Role:         role,
		Name:         name,
		Lastname:     lastname,
		Patronymic:   trimmed(in.Patronymic),
		Email:        email,
		PasswordHash: hashed,
	}
	if err := s.store.CreateEmployee(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

// EnsureAdmin creates an administrator with email unless one exists. It
// reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if _, err := s.store.GetEmployeeByEmail(ctx, email); err == nil {
		return false, nil
	} else if !isNotFound(err) {
		return false, err
	}
	_, err := s.CreateEmployee(ctx, EmployeeInput{
		Role:     string(model.RoleAdmin),
		Name:     "Admin",
		Lastname: "Administrator",
		Email:    email,
		Password: password,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetEmployee returns one employee
func (s *Service) GetEmployee(ctx context.Context, id string) (*model.Employee, error) {
	return s.store.GetEmployee(ctx, id)
}

// ListEmployees returns every employee
func (s *Service) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	return s.store.ListEmployees(ctx)
}

// UpdateEmployee applies patch and returns the updated employee
func (s *Service) UpdateEmployee(ctx context.Context, id string, patch EmployeePatch) (*model.Employee, error) {
	changes := map[string]interface{}{}
	if patch.Role != nil {
		role, err := parseRole(*patch.Role)
		if err != nil {
			return nil, err
		}
		changes["role"] = role
	}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, apperr.Validation("name must not be blank")
		}
		changes["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Lastname != nil {
		if strings.TrimSpace(*patch.Lastname) == "" {
			return nil, apperr.Validation("lastname must not be blank")
		}
		changes["lastname"] = strings.TrimSpace(*patch.Lastname)
	}
	if patch.Patronymic != nil {
		changes["patronymic"] = trimmed(patch.Patronymic)
	}
	if patch.Email != nil {
		email, err := normalizeEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		changes["email"] = email
	}
	if patch.Password != nil {
		hashed, err := s.hash(*patch.Password)
		if err != nil {
			return nil, err
		}
		changes["password_hash"] = hashed
	}

	if len(changes) > 0 {
		if err := s.store.UpdateEmployee(ctx, id, changes); err != nil {
			return nil, err
		}
	}
	return s.store.GetEmployee(ctx, id)
}

// DeleteEmployee removes an employee and their sales
func (s *Service) DeleteEmployee(ctx context.Context, id string) error {
	return s.store.DeleteEmployee(ctx, id)
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func isNotFound(err error) bool {
	appErr, ok := apperr.As(err)
	return ok && appErr.Kind == apperr.ErrNotFound
}
