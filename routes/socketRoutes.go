package routes

import (
	"gramsetu-be/notify"

	"github.com/gin-gonic/gin"
)

// SocketRoutes mounts the real-time endpoint
func SocketRoutes(r *gin.Engine, hub *notify.Hub, origins []string) {
	r.GET("/socket", hub.ServeWS(notify.NewUpgrader(origins)))
}
