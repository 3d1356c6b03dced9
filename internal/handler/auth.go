package handler

import (
	"context"  // provides context with cancellation for DB calls
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities
	"time"     // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/smart-parking/internal/config"     // app configuration
	"github.com/iliyamo/smart-parking/internal/model"      // domain types
	"github.com/iliyamo/smart-parking/internal/repository" // DB repositories
	"github.com/iliyamo/smart-parking/internal/service"    // business logic
	"github.com/iliyamo/smart-parking/internal/utils"      // helper functions (hashing, token issuing)
)

// AuthHandler bundles dependencies for operator auth endpoints.
// Successful registrations and logins are recorded in the audit
// trail like any other administrative action.
type AuthHandler struct {
	Cfg    config.Config
	Admins repository.AdminRepository
	Audit  *service.AdminService
}

func NewAuthHandler(cfg config.Config, admins repository.AdminRepository, audit *service.AdminService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Admins: admins, Audit: audit}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Role     string `json:"role"` // ADMIN | OPERATOR
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type adminPart struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
type authResp struct {
	Admin  adminPart `json:"admin"`
	Access tokenPart `json:"access"`
}

// Register creates an operator account and returns a token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role != model.RoleAdmin && role != model.RoleOperator {
		role = model.RoleOperator
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}
	admin, err := h.Admins.Create(ctx, &model.Admin{
		Username:     req.Username,
		PasswordHash: hash,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Role:         role,
	})
	if err != nil {
		return writeError(c, err)
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, admin.Username, admin.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}

	h.Audit.LogAuth(ctx, admin.Username, model.AuditRegister, "registered account with role "+admin.Role)

	return c.JSON(http.StatusCreated, authResp{
		Admin:  adminPart{Username: admin.Username, Email: admin.Email, Role: admin.Role},
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Login verifies credentials and returns a fresh token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	admin, err := h.Admins.FindByUsername(ctx, req.Username)
	if err != nil || !admin.Active || !utils.VerifyPassword(admin.PasswordHash, req.Password) {
		// Same response for unknown user and bad password.
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, admin.Username, admin.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}

	h.Audit.LogAuth(ctx, admin.Username, model.AuditLogin, "logged in")

	return c.JSON(http.StatusOK, authResp{
		Admin:  adminPart{Username: admin.Username, Email: admin.Email, Role: admin.Role},
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}
