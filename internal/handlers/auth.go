package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yukikurage/todo-list/internal/constants"
	"github.com/yukikurage/todo-list/internal/dto"
	apierrors "github.com/yukikurage/todo-list/internal/errors"
	"github.com/yukikurage/todo-list/internal/middleware"
	"github.com/yukikurage/todo-list/internal/models"
	"github.com/yukikurage/todo-list/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// SignupForm renders the registration page.
func (h *AuthHandler) SignupForm(c *gin.Context) {
	render(c, http.StatusOK, "signup.html", gin.H{"Title": "Sign up"})
}

// Signup registers a new user and logs them in.
func (h *AuthHandler) Signup(c *gin.Context) {
	var form SignupForm
	if err := c.ShouldBind(&form); err != nil {
		h.rejectCredentials(c, "signup.html", form.Email, "", err)
		return
	}

	user, err := h.authService.Signup(services.SignupInput{
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		h.respondAuthError(c, "signup.html", form.Email, "", err)
		return
	}

	if err := startSession(c, user); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	log.Info().Uint64("user_id", user.ID).Msg("user signed up")
	if apierrors.WantsJSON(c) {
		c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
		return
	}
	redirect(c, ListPath)
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	h.renderAuthPage(c, http.StatusOK, "login.html", "", c.Query("next"), "")
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.rejectCredentials(c, "login.html", form.Email, form.Next, err)
		return
	}

	user, err := h.authService.Login(services.LoginInput{
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		h.respondAuthError(c, "login.html", form.Email, form.Next, err)
		return
	}

	if err := startSession(c, user); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	if apierrors.WantsJSON(c) {
		c.JSON(http.StatusOK, dto.ToUserDTO(*user))
		return
	}
	redirect(c, safeNext(form.Next, ListPath))
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	redirect(c, "/")
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.NotFound(c, err.Error())
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func (h *AuthHandler) renderAuthPage(c *gin.Context, status int, page, email, next, message string) {
	title := "Log in"
	if page == "signup.html" {
		title = "Sign up"
	}
	render(c, status, page, gin.H{
		"Title": title,
		"Email": email,
		"Next":  next,
		"Error": message,
	})
}

func (h *AuthHandler) rejectCredentials(c *gin.Context, page, email, next string, err error) {
	const message = "Email and password are required"
	if apierrors.WantsJSON(c) {
		apierrors.BadRequestWithDetails(c, message, fieldErrors(err))
		return
	}
	h.renderAuthPage(c, http.StatusBadRequest, page, email, next, message)
}

// respondAuthError answers a failed signup or login with the form page, or
// with a coded JSON error for API clients.
func (h *AuthHandler) respondAuthError(c *gin.Context, page, email, next string, err error) {
	status, message := authErrorMessage(err)
	if !apierrors.WantsJSON(c) {
		h.renderAuthPage(c, status, page, email, next, message)
		return
	}

	switch {
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, message)
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.RespondWithError(c, status, apierrors.NewAPIError(apierrors.ErrCodeInvalidCredentials, message))
	case status == http.StatusBadRequest:
		apierrors.BadRequest(c, message)
	default:
		apierrors.InternalError(c, message)
	}
}

func startSession(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	return session.Save()
}

func authErrorMessage(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		return http.StatusBadRequest, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength)
	case errors.Is(err, services.ErrInvalidEmail):
		return http.StatusBadRequest, "Enter a valid email address"
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict, "An account with this email already exists"
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	default:
		log.Error().Err(err).Msg("authentication failed")
		return http.StatusInternalServerError, "Something went wrong, please try again"
	}
}
