package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "/api", r.BasePath())
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("customers", "/customers")
	group.GET("/:id", func(c *gin.Context) {
		c.String(http.StatusOK, c.Param("id"))
	})
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/customers/42", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", w.Body.String())
}

func TestRouterMiddlewareScopedToAPI(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
	r := NewRouter(engine, WithMiddleware(deny))

	group := NewDomainGroup("customers", "/customers")
	group.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/customers", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDomainGroup(t *testing.T) {
	t.Run("creates group with name and prefix", func(t *testing.T) {
		g := NewDomainGroup("customers", "/customers")
		assert.Equal(t, "customers", g.Name())
		assert.Equal(t, "/customers", g.Prefix())
	})

	t.Run("registers every method", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test")
		ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
		g.GET("/items", ok).POST("/items", ok).PUT("/items/:id", ok)
		g.RegisterRoutes(engine.Group("/api"))

		for method, path := range map[string]string{
			http.MethodGet:  "/api/test/items",
			http.MethodPost: "/api/test/items",
			http.MethodPut:  "/api/test/items/1",
		} {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
			assert.Equal(t, http.StatusOK, w.Code, method)
			assert.Equal(t, method, w.Body.String())
		}
	})

	t.Run("applies group middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test")
		g.Use(func(c *gin.Context) {
			c.Header("X-Group", "yes")
			c.Next()
		})
		g.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
		g.RegisterRoutes(engine.Group("/api"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/test/ping", nil))
		assert.Equal(t, "yes", w.Header().Get("X-Group"))
	})
}
