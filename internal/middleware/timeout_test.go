package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTimeoutFiresGatewayTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Timeout(20 * time.Millisecond))

	release := make(chan struct{})
	wrote := make(chan struct{})
	engine.GET("/slow", func(c *gin.Context) {
		<-release
		c.JSON(http.StatusOK, gin.H{"status": "success"})
		close(wrote)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))

	// Let the handler finish and attempt its late write before asserting;
	// the 504 must be what the client saw and the late body must be dropped.
	close(release)
	<-wrote

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"error"`)
	assert.NotContains(t, w.Body.String(), "success")
}

func TestTimeoutPassesFinishedResponsesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Timeout(time.Second))

	engine.GET("/fast", func(c *gin.Context) {
		c.Header("X-Resource-Version", "7")
		c.JSON(http.StatusCreated, gin.H{"status": "success"})
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "7", w.Header().Get("X-Resource-Version"))
	assert.Contains(t, w.Body.String(), `"status":"success"`)
}

func TestTimeoutDeadlineReachesHandlerContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Timeout(time.Second))

	engine.GET("/deadline", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": ok})
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/deadline", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deadline":true`)
}
