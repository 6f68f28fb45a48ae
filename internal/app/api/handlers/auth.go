package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trademint/backend/internal/app/api/middleware"
	"github.com/trademint/backend/internal/app/service/auth"
	"github.com/trademint/backend/pkg/response"
	"github.com/trademint/backend/pkg/types"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=client trader admin"`
}

type TokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	Role        types.Role `json:"role"`
}

// @Summary      Register a user
// @Description  Creates a login credential with a fixed role
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "credentials"
// @Success      200      {object}  response.APIResponse[TokenResponse]
// @Router       /api/v1/auth/register [post]
func ApiRegister(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		user, err := authSvc.Register(c.Request.Context(), req.Email, req.Password, types.Role(req.Role))
		if err != nil {
			if errors.Is(err, auth.ErrEmailExists) || errors.Is(err, auth.ErrInvalidRole) {
				badRequest(c, err)
				return
			}
			serverError(c, err)
			return
		}

		token, err := authSvc.IssueToken(user)
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(TokenResponse{AccessToken: token, TokenType: "bearer", Role: user.Role}))
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// @Summary      Login
// @Description  Verifies credentials and returns a bearer token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "credentials"
// @Success      200      {object}  response.APIResponse[TokenResponse]
// @Router       /api/v1/auth/login [post]
func ApiLogin(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		token, err := authSvc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, err.Error()))
			return
		}

		user, err := authSvc.GetByEmail(c.Request.Context(), req.Email)
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(TokenResponse{AccessToken: token, TokenType: "bearer", Role: user.Role}))
	}
}

// @Summary      Current user profile
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.APIResponse[auth.Profile]
// @Router       /api/v1/auth/me [get]
func ApiMe(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		profile, err := authSvc.Profile(c.Request.Context(), user)
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(profile))
	}
}

// @Summary      Update profile
// @Description  PAN and phone are immutable once set
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      auth.ProfileUpdate  true  "fields"
// @Success      200      {object}  response.APIResponse[auth.Profile]
// @Router       /api/v1/auth/me [patch]
func ApiUpdateProfile(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var upd auth.ProfileUpdate
		if err := c.ShouldBindJSON(&upd); err != nil {
			badRequest(c, err)
			return
		}

		user := middleware.CurrentUser(c)
		profile, err := authSvc.UpdateProfile(c.Request.Context(), user, &upd)
		if err != nil {
			if errors.Is(err, auth.ErrImmutableField) {
				badRequest(c, err)
				return
			}
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(profile))
	}
}

// @Summary      Accept terms and conditions
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.APIResponse[map[string]bool]
// @Router       /api/v1/auth/accept-terms [post]
func ApiAcceptTerms(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if err := authSvc.AcceptTerms(c.Request.Context(), user); err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]bool{"terms_accepted": true}))
	}
}

func RegisterAuthRoutes(r gin.IRouter, authSvc *auth.Service) {
	r.POST("/auth/register", ApiRegister(authSvc))
	r.POST("/auth/login", ApiLogin(authSvc))

	me := r.Group("/auth")
	me.Use(middleware.Authenticate(authSvc))
	me.GET("/me", ApiMe(authSvc))
	me.PATCH("/me", ApiUpdateProfile(authSvc))
	me.POST("/accept-terms", ApiAcceptTerms(authSvc))
}
