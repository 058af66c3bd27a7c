package http

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/linkbio/internal/domain"
	"github.com/tazhibayda/linkbio/internal/queue"
	"github.com/tazhibayda/linkbio/internal/security"
)

var usernameRe = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Register godoc
// @Summary Register user
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerReq true "register"
// @Success 201
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var in registerReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if !strings.Contains(email, "@") || len(in.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email or weak password"})
		return
	}
	if !usernameRe.MatchString(username) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username must be 3-30 chars [a-z0-9_]"})
		return
	}
	hash, err := security.HashPassword(in.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash failed"})
		return
	}
	u := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Username:     username,
		DisplayName:  strings.TrimSpace(in.Name),
		Provider:     "local",
		Role:         domain.RoleUser,
	}
	if err := h.Store.CreateUser(c.Request.Context(), u); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	h.publish(c, queue.KeyUserRegistered,
		queue.UserRegistered{UserID: u.ID, Email: u.Email, Username: u.Username})

	c.Status(http.StatusCreated)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginResp struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginReq true "login"
// @Success 200 {object} loginResp
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	u, err := h.Store.FindUserByEmail(c.Request.Context(), email)
	if err != nil || u == nil || !security.CheckPassword(u.PasswordHash, in.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if u.Banned {
		c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
		return
	}
	tokens, err := h.issueTokens(c, u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func (h *Handler) issueTokens(c *gin.Context, u *domain.User) (*loginResp, error) {
	tok, err := security.MakeAccess(h.JWTSecret, u.ID.Hex(), u.Email, u.Role, 15*time.Minute)
	if err != nil {
		return nil, err
	}
	ref, err := security.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := h.Store.SaveRefresh(c.Request.Context(), u.ID, ref, h.RefreshTTL); err != nil {
		return nil, err
	}
	return &loginResp{Access: tok, Refresh: ref}, nil
}

type refreshReq struct {
	Refresh string `json:"refresh"`
}

func (h *Handler) Refresh(c *gin.Context) {
	var in refreshReq
	if err := c.ShouldBindJSON(&in); err != nil || in.Refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	rt, err := h.Store.FindValidRefresh(c.Request.Context(), in.Refresh)
	if err != nil || rt == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh"})
		return
	}
	u, err := h.Store.FindUserByID(c.Request.Context(), rt.UserID)
	if err != nil || u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if u.Banned {
		c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
		return
	}

	tok, err := security.MakeAccess(h.JWTSecret, u.ID.Hex(), u.Email, u.Role, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": tok})
}

type logoutReq struct {
	Refresh string `json:"refresh"`
}

func (h *Handler) Logout(c *gin.Context) {
	var in logoutReq
	if err := c.ShouldBindJSON(&in); err != nil || in.Refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Store.RevokeRefresh(c.Request.Context(), in.Refresh); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "revoke failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /api/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	u := h.currentUser(c)
	if u == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id": u.ID, "email": u.Email, "username": u.Username,
		"name": u.DisplayName, "bio": u.Bio, "role": u.Role,
		"socials": u.Socials, "created_at": u.CreatedAt,
	})
}

// GoogleBegin redirects to Google's consent screen.
func (h *Handler) GoogleBegin(c *gin.Context) {
	if h.Google == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "oauth not configured"})
		return
	}
	state := h.Google.MakeState(c.GetString(requestIDKey))
	c.Redirect(http.StatusTemporaryRedirect, h.Google.AuthURL(state))
}

func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.Google == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "oauth not configured"})
		return
	}
	if !h.Google.VerifyState(c.Query("state")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad state"})
		return
	}
	gu, err := h.Google.ExchangeAndVerify(c.Request.Context(), c.Query("code"), h.GoogleClientID())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "oauth failed"})
		return
	}

	u, err := h.Store.FindUserByExternalID(c.Request.Context(), "google", gu.Sub)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if u == nil {
		// first login: provision an account with a generated username
		u = &domain.User{
			Email:       strings.ToLower(gu.Email),
			Username:    usernameFromEmail(gu.Email),
			DisplayName: gu.Name,
			Provider:    "google",
			ExternalID:  gu.Sub,
			Role:        domain.RoleUser,
		}
		if err := h.Store.CreateUser(c.Request.Context(), u); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.publish(c, queue.KeyUserRegistered,
			queue.UserRegistered{UserID: u.ID, Email: u.Email, Username: u.Username})
	}
	if u.Banned {
		c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
		return
	}
	tokens, err := h.issueTokens(c, u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func (h *Handler) GoogleClientID() string {
	if h.Google == nil {
		return ""
	}
	return h.Google.ClientID()
}

func usernameFromEmail(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) < 3 {
		s = s + "user"
	}
	if len(s) > 30 {
		s = s[:30]
	}
	return s
}
