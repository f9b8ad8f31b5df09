package auth

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/journal/internal/config"
	"github.com/mrlokans/journal/internal/database"
	"github.com/mrlokans/journal/internal/entities"
)

// setupMutex serializes setup requests so two concurrent requests cannot both create the first user.
var setupMutex sync.Mutex

// EventLogger receives authentication events for the audit trail.
type EventLogger interface {
	LogAuth(userID uint, action string, ipAddr string, success bool)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Pin      string `json:"pin"`
}

type pinRequest struct {
	Pin string `json:"pin"`
}

// AuthController handles the authentication JSON endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	events         EventLogger
	config         config.Auth
	rateLimiter    *RateLimiter
}

// NewAuthController creates a new authentication controller. events may be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, events EventLogger, cfg config.Auth) *AuthController {
	rateLimiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		events:         events,
		config:         cfg,
		rateLimiter:    rateLimiter,
	}
}

// RegisterRoutes registers the /api/auth routes.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/api/auth")
	group.GET("/status", ac.Status)
	group.POST("/setup", ac.Setup)
	group.POST("/login", ac.Login)
	group.POST("/logout", ac.Logout)
	group.GET("/me", ac.Me)
	group.POST("/pin/verify", ac.VerifyPin)
	group.PUT("/pin", ac.SetPin)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

// Status reports the auth mode and whether the first user still has to be created.
func (ac *AuthController) Status(c *gin.Context) {
	hasUsers, err := ac.service.HasUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read users"})
		return
	}

	authenticated := false
	if ac.sessionManager != nil {
		authenticated = ac.sessionManager.IsAuthenticated(c.Request)
	}

	c.JSON(http.StatusOK, gin.H{
		"mode":          ac.service.GetAuthMode(),
		"auth_enabled":  ac.service.IsAuthEnabled(),
		"has_users":     hasUsers,
		"authenticated": authenticated,
	})
}

// Setup creates the first user and logs them in. It is refused once any user exists.
func (ac *AuthController) Setup(c *gin.Context) {
	setupMutex.Lock()
	defer setupMutex.Unlock()

	hasUsers, err := ac.service.HasUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read users"})
		return
	}
	if hasUsers {
		c.JSON(http.StatusConflict, gin.H{"error": "setup already completed"})
		return
	}

	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var pin *string
	if req.Pin != "" {
		pin = &req.Pin
	}

	created, err := ac.service.CreateUser(req.Username, req.Password, pin)
	if err != nil {
		if status, msg, ok := credentialError(err); ok {
			c.JSON(status, gin.H{"error": msg})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}
	if !created {
		c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
		return
	}

	user, err := ac.service.GetUserByUsername(req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	ac.logEvent(user.ID, "setup", c.ClientIP(), true)

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
			return
		}
	}

	c.JSON(http.StatusCreated, userResponse(user))
}

// Login checks the username, password and, for users who set one, the PIN.
func (ac *AuthController) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	clientIP := c.ClientIP()
	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Username); !allowed {
		tooManyAttempts(c, retryAfter)
		return
	}

	user, err := ac.service.Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication failed"})
		return
	}
	if user == nil {
		ac.rejectLogin(c, 0, req.Username, "invalid username or password")
		return
	}

	if user.HasPin() {
		if req.Pin == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "PIN is required", "code": "PIN_REQUIRED"})
			return
		}
		if !ac.service.VerifyPin(user, req.Pin) {
			ac.rejectLogin(c, user.ID, req.Username, "invalid PIN")
			return
		}
	}

	ac.rateLimiter.RecordSuccess(clientIP, req.Username)

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
			return
		}
	}
	ac.logEvent(user.ID, "login", clientIP, true)

	c.JSON(http.StatusOK, userResponse(user))
}

func (ac *AuthController) rejectLogin(c *gin.Context, userID uint, username, msg string) {
	clientIP := c.ClientIP()
	ac.logEvent(userID, "login_failed", clientIP, false)

	if locked, retryAfter := ac.rateLimiter.RecordFailure(clientIP, username); locked {
		tooManyAttempts(c, retryAfter)
		return
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// Logout destroys the session.
func (ac *AuthController) Logout(c *gin.Context) {
	userID := GetUserID(c)
	if ac.sessionManager != nil {
		if id := ac.sessionManager.GetUserID(c.Request); id != 0 {
			userID = id
		}
		if err := ac.sessionManager.DestroySession(c.Request); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to end session"})
			return
		}
	}
	ac.logEvent(userID, "logout", c.ClientIP(), true)

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated user.
func (ac *AuthController) Me(c *gin.Context) {
	user, ok := ac.currentUser(c)
	if !ok {
		return
	}

	resp := userResponse(user)
	if ac.sessionManager != nil {
		if data := ac.sessionManager.GetSessionData(c.Request); data != nil {
			resp["login_at"] = data.LoginAt
		}
	}
	c.JSON(http.StatusOK, resp)
}

// VerifyPin re-checks the PIN of the logged in user, e.g. to unlock the journal after idling.
func (ac *AuthController) VerifyPin(c *gin.Context) {
	user, ok := ac.currentUser(c)
	if !ok {
		return
	}

	var req pinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	clientIP := c.ClientIP()
	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, user.Username); !allowed {
		tooManyAttempts(c, retryAfter)
		return
	}

	if !ac.service.VerifyPin(user, req.Pin) {
		ac.logEvent(user.ID, "pin_verify_failed", clientIP, false)
		if locked, retryAfter := ac.rateLimiter.RecordFailure(clientIP, user.Username); locked {
			tooManyAttempts(c, retryAfter)
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false})
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, user.Username)
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// SetPin sets or, with an empty pin, removes the PIN of the logged in user.
func (ac *AuthController) SetPin(c *gin.Context) {
	user, ok := ac.currentUser(c)
	if !ok {
		return
	}

	var req pinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := ac.service.SetPin(user.ID, req.Pin); err != nil {
		if errors.Is(err, ErrPinInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update PIN"})
		return
	}

	action := "pin_set"
	if req.Pin == "" {
		action = "pin_cleared"
	}
	ac.logEvent(user.ID, action, c.ClientIP(), true)

	c.JSON(http.StatusOK, gin.H{"has_pin": req.Pin != ""})
}

// currentUser loads the user behind the request, writing a 401 when there is none.
func (ac *AuthController) currentUser(c *gin.Context) (*entities.User, bool) {
	userID := GetUserID(c)
	if userID == DefaultUserID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil, false
	}

	user, err := ac.service.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return nil, false
	}
	return user, true
}

func (ac *AuthController) logEvent(userID uint, action, ip string, success bool) {
	if ac.events != nil {
		ac.events.LogAuth(userID, action, ip, success)
	}
}

func userResponse(user *entities.User) gin.H {
	return gin.H{
		"id":       user.ID,
		"username": user.Username,
		"has_pin":  user.HasPin(),
	}
}

func tooManyAttempts(c *gin.Context, retryAfter time.Duration) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	c.Header("Retry-After", strconv.Itoa(seconds))
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":       "too many attempts, try again later",
		"retry_after": seconds,
	})
}

// credentialError maps user creation failures to a response.
func credentialError(err error) (int, string, bool) {
	switch {
	case errors.Is(err, ErrPasswordTooShort),
		errors.Is(err, ErrPasswordTooLong),
		errors.Is(err, ErrPinInvalid):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, database.ErrValidation):
		return http.StatusBadRequest, err.Error(), true
	}
	return 0, "", false
}
