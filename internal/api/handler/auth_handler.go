package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/identity-hub/identity-service/internal/core/ports"
)

const profilePictureField = "profile_picture"

type AuthHandler struct {
	registration   ports.RegistrationService
	authService    ports.AuthService
	maxUploadBytes int64
	log            zerolog.Logger
}

func NewAuthHandler(registration ports.RegistrationService, authService ports.AuthService, maxUploadBytes int64, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		registration:   registration,
		authService:    authService,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// Register creates a new user account with the User role.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json,mpfd
// @Produce      json
// @Param        body             body      registerRequest  true   "User registration details"
// @Param        profile_picture  formData  file             false  "Profile picture (multipart only)"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]any
// @Failure      429   {object}  map[string]any
// @Failure      500   {object}  map[string]any
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	picture, err := h.profilePicture(c)
	if err != nil {
		return err
	}

	err = h.registration.Register(c.Request().Context(), ports.RegisterInput{
		Email:          strings.TrimSpace(req.Email),
		Password:       req.Password,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		PhoneNumber:    strings.TrimSpace(req.PhoneNumber),
		ProfilePicture: picture,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "User registered successfully"})
}

// profilePicture reads the optional picture of a multipart registration.
// An oversized picture is skipped; the account is still created without one.
func (h *AuthHandler) profilePicture(c echo.Context) (*ports.UploadFile, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil
	}

	fh, err := c.FormFile(profilePictureField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart payload")
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		h.log.Warn().
			Str("file", fh.Filename).
			Int64("size", fh.Size).
			Int64("max_bytes", h.maxUploadBytes).
			Msg("profile picture too large, registering without it")
		return nil, nil
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
	return &ports.UploadFile{Name: fh.Filename, Data: data}, nil
}

// Login authenticates with an email or username and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      429   {object}  map[string]any
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if strings.TrimSpace(req.identifier()) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "identifier is required")
	}

	token, user, err := h.authService.Login(c.Request().Context(), strings.TrimSpace(req.identifier()), req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{Token: token, User: user})
}

// Logout revokes the bearer token used for this request.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401   {object}  map[string]any
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
