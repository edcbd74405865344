package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getHome godoc
// @Summary API liveness greeting
// @Description Returns a static greeting; useful for checking auth wiring since the route sits behind the JWT middleware.
// @Tags root
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /example/helloworld [get]
func getHome(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "Hello World From SplitTab Backend API v1"})
}

// registerExampleRoutes registers the authenticated hello-world route.
func registerExampleRoutes(group *gin.RouterGroup) {
	eg := group.Group("/example")
	eg.GET("/helloworld", getHome)
}
