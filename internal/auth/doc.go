// Package auth guards the journal API.
//
// It supports two authentication modes:
//   - "none": No authentication required (default), all requests use a default user ID
//   - "local": Local user database with session cookies, plus an optional numeric PIN per user
//
// # Configuration
//
// Set AUTH_MODE environment variable to select the mode:
//
//	AUTH_MODE=none   # Default, no auth required
//	AUTH_MODE=local  # Requires the first user to be created via POST /api/auth/setup
//
// For local mode, additional configuration:
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>     # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h              # Session duration
//	AUTH_BCRYPT_COST=12                    # bcrypt cost factor for passwords and PINs
//	AUTH_SECURE_COOKIES=true               # HTTPS-only cookies
//	AUTH_MAX_LOGIN_ATTEMPTS=5              # Failures before lockout
//
// # Usage
//
// Initialize authentication in entrypoint:
//
//	authService := auth.NewService(users.NewRepository(db), cfg.Auth)
//	sessions, _ := auth.NewSessionManager(sqlDB, cfg.Auth)
//	router.Use(sessions.GinMiddleware())
//	router.Use(auth.NewMiddleware(authService, sessions, cfg.Auth).Handler())
//	auth.NewAuthController(authService, sessions, auditService, cfg.Auth).RegisterRoutes(router)
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c)  // Returns DefaultUserID in "none" mode
package auth
