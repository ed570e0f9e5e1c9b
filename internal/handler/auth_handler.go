package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"attribution-console/internal/model"
	"attribution-console/pkg/database"
	"attribution-console/pkg/jwtutil"
	"attribution-console/pkg/logger"
	"attribution-console/prometheus"
)

var jwtUtil *jwtutil.JWTUtil

// Initialize wires the JWT utility used for issuing tokens on login
func Initialize(j *jwtutil.JWTUtil) {
	jwtUtil = j
}

// tenantFromHeader resolves the tenant for public routes. Login and signup
// happen before a session exists, so a missing header falls back to the
// default tenant the way the original console does in development.
func tenantFromHeader(c echo.Context) (uint, error) {
	header := c.Request().Header.Get("X-Tenant-ID")
	if header == "" {
		return 1, nil
	}
	tenantID, err := strconv.ParseUint(header, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(tenantID), nil
}

// Login authenticates a user and issues a bearer token
func Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	tenantID, err := tenantFromHeader(c)
	if err != nil {
		prometheus.RecordAuthError("invalid_tenant")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_login")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("tenant_id = ? AND email = ?", tenantID, req.Email).First(&user)
	if result.Error != nil {
		log.Warn("User not found", zap.String("email", req.Email), zap.Uint("tenant_id", tenantID))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := jwtUtil.GenerateToken(user.Email, user.ID, user.TenantID, string(user.UserType))
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.Uint("user_id", user.ID),
		zap.Uint("tenant_id", user.TenantID))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  user,
	})
}

// CreateUser registers a new console account. Duplicate emails within a
// tenant map to 409 so the client can show its dedicated conflict message.
func CreateUser(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.SignupCounter.Inc()

	tenantID, err := tenantFromHeader(c)
	if err != nil {
		prometheus.RecordAuthError("invalid_tenant")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	var req struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password"`
		UserType  string `json:"user_type"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse signup request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_signup")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	userType := model.UserTypeProduct
	if req.UserType != "" {
		userType, err = model.ParseUserType(req.UserType)
		if err != nil {
			prometheus.RecordAuthError("invalid_user_type")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.User
	result := database.GetDB().Where("tenant_id = ? AND email = ?", tenantID, req.Email).First(&existing)
	if result.Error == nil {
		log.Warn("User already exists", zap.String("email", req.Email), zap.Uint("tenant_id", tenantID))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		log.Error("Failed to check existing user", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := model.User{
		TenantID:  tenantID,
		Email:     strings.ToLower(req.Email),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashedPassword),
		UserType:  userType,
		Active:    true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.Error(result.Error))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("User registered", zap.String("email", user.Email), zap.Uint("tenant_id", tenantID))
	return c.JSON(http.StatusCreated, echo.Map{"user": user})
}

// GetProfile returns the authenticated user's record
func GetProfile(c echo.Context) error {
	log := logger.FromEcho(c)

	claims, ok := c.Get("user").(*jwtutil.UserClaims)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().First(&user, claims.UserID)
	if result.Error != nil {
		log.Error("User not found", zap.Uint("user_id", claims.UserID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"user": user})
}
