package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"journai/internal/config"
	"journai/internal/journal"
	"journai/internal/store"
)

// latestEntriesLimit is how many entries the journal list returns when no
// month is selected.
const latestEntriesLimit = 31

// Store is the persistence surface the handlers need. *store.Store
// satisfies it.
type Store interface {
	CreateJournal(ctx context.Context, userID string, in store.JournalInput) (journal.Entry, error)
	UpdateJournal(ctx context.Context, userID string, id uuid.UUID, in store.JournalInput) (journal.Entry, error)
	GetJournal(ctx context.Context, userID string, id uuid.UUID) (journal.Entry, error)
	DeleteJournal(ctx context.Context, userID string, id uuid.UUID) error
	ListJournals(ctx context.Context, userID string, limit, offset int) ([]journal.Entry, error)
	ListJournalsInRange(ctx context.Context, userID string, start, end time.Time, mood *journal.Mood) ([]journal.Entry, error)
	CountJournals(ctx context.Context, userID string) (int, error)

	GetUser(ctx context.Context, id string) (store.User, error)
	CreateUser(ctx context.Context, user store.User) (store.User, error)
	UpdateUser(ctx context.Context, id string, update store.UserUpdate) (store.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Analyzer is satisfied by *analyzer.Service.
type Analyzer interface {
	AnalyzeWithTier(ctx context.Context, text string) (journal.Analysis, journal.Tier)
}

type App struct {
	cfg      config.Config
	store    Store
	analyzer Analyzer
	logger   *slog.Logger
	limiter  *RateLimiter
	loc      *time.Location
	started  time.Time
	now      func() time.Time
}

type AuthUser struct {
	ID    string
	Email string
	Name  string
}

func New(cfg config.Config, st Store, an Analyzer, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		cfg:      cfg,
		store:    st,
		analyzer: an,
		logger:   logger,
		limiter:  NewRateLimiter(cfg.AnalyzeRateLimitPerMin, 5*time.Minute),
		loc:      cfg.Location(),
		started:  time.Now(),
		now:      time.Now,
	}
}

// Close stops background work owned by the app.
func (a *App) Close() {
	a.limiter.Stop()
}

func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(a.logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", a.root)
	router.GET("/health", a.health)

	api := router.Group(a.cfg.APIPrefix)
	api.POST("/webhooks", a.handleWebhook)

	authed := api.Group("")
	authed.Use(a.authMiddleware())

	authed.POST("/analyze-journal", a.limiter.Limit(), a.analyzeJournal)
	authed.POST("/save-journal", a.saveJournal)
	authed.PUT("/update-journal/:id", a.updateJournal)
	authed.GET("/get-user-journal", a.listJournals)
	authed.GET("/journal/:id", a.getJournal)
	authed.DELETE("/delete-journal/:id", a.deleteJournal)
	authed.GET("/journals/insights", a.journalInsights)
	authed.GET("/me", a.me)

	return router
}

func (a *App) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": a.cfg.AppName,
		"status":  "running",
		"message": "Welcome to the JournAI server!",
	})
}

func (a *App) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   a.now().In(a.loc).Format(time.RFC3339),
		"uptime_ms":   time.Since(a.started).Milliseconds(),
		"environment": a.cfg.AppEnv,
	})
}

func (a *App) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}
		tokenString := strings.TrimSpace(authHeader[len("Bearer "):])
		if tokenString == "" {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if token.Method == nil || token.Method.Alg() != a.cfg.JWTAlgorithm {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(a.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			writeError(c, http.StatusUnauthorized, "Invalid bearer token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeError(c, http.StatusUnauthorized, "Invalid token payload")
			return
		}
		if a.cfg.JWTAudience != "" && !claimHasAudience(claims["aud"], a.cfg.JWTAudience) {
			writeError(c, http.StatusUnauthorized, "Invalid token audience")
			return
		}
		if a.cfg.JWTIssuer != "" {
			issuer, _ := claims["iss"].(string)
			if issuer != a.cfg.JWTIssuer {
				writeError(c, http.StatusUnauthorized, "Invalid token issuer")
				return
			}
		}
		sub, _ := claims["sub"].(string)
		sub = strings.TrimSpace(sub)
		if sub == "" {
			writeError(c, http.StatusUnauthorized, "Token subject missing")
			return
		}

		user, err := a.getOrCreateUser(c.Request.Context(), sub, claims)
		if errors.Is(err, errUserNotFound) {
			writeError(c, http.StatusUnauthorized, "User not found")
			return
		}
		if err != nil {
			a.logger.ErrorContext(c.Request.Context(), "auth.user_lookup_failed",
				slog.String("user_id", sub),
				slog.String("error", err.Error()),
			)
			writeError(c, http.StatusInternalServerError, "Failed to resolve user")
			return
		}

		c.Set(authUserKey, user)
		c.Next()
	}
}

const authUserKey = "authUser"

var errUserNotFound = errors.New("user not found")

func claimHasAudience(value any, audience string) bool {
	switch v := value.(type) {
	case string:
		return v == audience
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == audience {
				return true
			}
		}
	case []string:
		for _, item := range v {
			if item == audience {
				return true
			}
		}
	}
	return false
}

func claimString(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// getOrCreateUser resolves the token subject to a stored user, creating one
// from the token claims when AUTH_AUTOCREATE_USER allows it.
func (a *App) getOrCreateUser(ctx context.Context, userID string, claims jwt.MapClaims) (AuthUser, error) {
	user, err := a.store.GetUser(ctx, userID)
	if err == nil {
		return toAuthUser(user), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return AuthUser{}, err
	}
	if !a.cfg.AuthAutoCreateUser {
		return AuthUser{}, errUserNotFound
	}

	email := claimString(claims, "email")
	if email == "" {
		email = fmt.Sprintf("%s@users.journai.invalid", userID)
	}
	name := claimString(claims, "name")
	if name == "" {
		name = fmt.Sprintf("user-%s", truncate(userID, 8))
	}

	created, err := a.store.CreateUser(ctx, store.User{
		ID:       userID,
		Email:    email,
		Name:     name,
		ImageURL: claimString(claims, "picture"),
	})
	if errors.Is(err, store.ErrConflict) {
		// A concurrent request or the webhook may have created the row first.
		existing, getErr := a.store.GetUser(ctx, userID)
		if getErr == nil {
			return toAuthUser(existing), nil
		}
		return AuthUser{}, err
	}
	if err != nil {
		return AuthUser{}, err
	}
	a.logger.InfoContext(ctx, "auth.user_created", slog.String("user_id", userID))
	return toAuthUser(created), nil
}

func toAuthUser(user store.User) AuthUser {
	return AuthUser{ID: user.ID, Email: user.Email, Name: user.Name}
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}

func authUserFromContext(c *gin.Context) (AuthUser, bool) {
	raw, ok := c.Get(authUserKey)
	if !ok {
		return AuthUser{}, false
	}
	user, ok := raw.(AuthUser)
	return user, ok
}

func writeError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func mustJSON(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// internalError logs err with the request context and answers 500 with a
// generic detail.
func (a *App) internalError(c *gin.Context, event, detail string, err error, attrs ...slog.Attr) {
	attrs = append(attrs, slog.String("error", err.Error()))
	if user, ok := authUserFromContext(c); ok {
		attrs = append(attrs, slog.String("user_id", user.ID))
	}
	a.logger.LogAttrs(c.Request.Context(), slog.LevelError, event, attrs...)
	writeError(c, http.StatusInternalServerError, detail)
}
