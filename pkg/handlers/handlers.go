package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/arnavshah/roster-api-go/pkg/auth"
	"github.com/arnavshah/roster-api-go/pkg/database"
	"github.com/arnavshah/roster-api-go/pkg/export"
	"github.com/arnavshah/roster-api-go/pkg/logging"
	"github.com/arnavshah/roster-api-go/pkg/metrics"
	"github.com/arnavshah/roster-api-go/pkg/models"
	"github.com/arnavshah/roster-api-go/pkg/store"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	DB       *gorm.DB
	Store    *store.Store
	Auth     *auth.Service
	Metrics  *metrics.Recorder
	Exporter *export.Exporter
	Gatherer prometheus.Gatherer
	log      zerolog.Logger
}

// New wires a handler around db. Metrics are registered on reg, which also
// backs the /metrics endpoint.
func New(db *gorm.DB, authSvc *auth.Service, reg *prometheus.Registry) (*Handler, error) {
	rec, err := metrics.NewRecorder(reg)
	if err != nil {
		return nil, err
	}
	return &Handler{
		DB:       db,
		Store:    store.New(db),
		Auth:     authSvc,
		Metrics:  rec,
		Exporter: export.NewExporter(),
		Gatherer: reg,
		log:      logging.New("http"),
	}, nil
}

func bearer(c *gin.Context) string {
	token := c.GetHeader("Authorization")
	if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
		token = token[7:]
	}
	return token
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := h.Auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware accepts an HMAC-signed API key, or an admin token, for
// read routes
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearer(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			return
		}

		if claims, err := h.Auth.VerifyToken(key); err == nil {
			c.Set("username", claims.Username)
			c.Next()
			return
		}

		name, err := h.Auth.VerifyHMACKey(key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			return
		}

		apiKey, err := auth.RecordKeyUse(h.DB, key, name)
		if errors.Is(err, auth.ErrRevokedKey) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key revoked"})
			return
		}
		if err != nil {
			h.log.Error().Err(err).Str("key", auth.KeyPreview(key)).Msg("could not record key use")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not verify API Key"})
			return
		}

		c.Set("apiKey", apiKey)
		c.Set("keyName", name)
		c.Next()
	}
}

// RequestLogger logs every request through zerolog and counts it
func (h *Handler) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		h.Metrics.HTTPRequest(c.Request.Method, route, status)

		ev := h.log.Info()
		if status >= http.StatusInternalServerError {
			ev = h.log.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client", c.ClientIP()).
			Msg("request")
	}
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// fail maps the model errors to status codes; anything unexpected is logged
// and reported as a 500 without its detail
func (h *Handler) fail(c *gin.Context, err error) {
	var v *models.ValidationError
	var nf *models.NotFoundError
	switch {
	case errors.As(err, &v):
		c.JSON(http.StatusBadRequest, gin.H{"error": v.Error(), "field": v.Field})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Error(), "kind": nf.Kind, "id": nf.ID})
	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// Login handles admin login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	token, err := h.Auth.Login(h.DB, req.Username, req.Password)
	if errors.Is(err, auth.ErrBadCredential) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GenerateKey issues an API key using the HMAC strategy. Keys are
// deterministic per name, so re-issuing a revoked name reinstates it.
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || strings.Contains(req.Name, ".") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required and must not contain '.'"})
		return
	}

	key := h.Auth.GenerateHMACKey(req.Name)

	var apiKey database.APIKey
	err := h.DB.Where(database.APIKey{Key: key}).Assign(map[string]any{"revoked_at": nil}).
		FirstOrCreate(&apiKey, database.APIKey{Key: key, Name: req.Name, KeyPreview: auth.KeyPreview(key)}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create key record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name": req.Name,
		"key":  key,
	})
}

// ListKeys returns all API keys with their last use
func (h *Handler) ListKeys(c *gin.Context) {
	var keys []database.APIKey
	if err := h.DB.Order("id").Find(&keys).Error; err != nil {
		h.fail(c, err)
		return
	}
	ok(c, keys)
}

// RevokeKey marks an API key as revoked
func (h *Handler) RevokeKey(c *gin.Context) {
	id := c.Param("id")
	res := h.DB.Model(&database.APIKey{}).Where("id = ?", id).Update("revoked_at", time.Now())
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not revoke key"})
		return
	}
	if res.RowsAffected == 0 {
		h.fail(c, &models.NotFoundError{Kind: "api key", ID: id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}
