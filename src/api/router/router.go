package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chromium-bot/chromium/src/api/handlers"
	"github.com/chromium-bot/chromium/src/api/middleware"
	"github.com/chromium-bot/chromium/src/data"
)

func Attach(r *gin.Engine, db *gorm.DB, secret []byte) {
	guildH := handlers.Guilds{
		Configs: data.NewGuildStore(db),
		Logs:    data.NewLogStore(db),
		Lists:   data.NewListStore(db),
	}

	v1 := r.Group("/v1")
	{
		secured := v1.Use(middleware.JWT(secret))
		secured.GET("/guilds/:id/config", guildH.Config)
		secured.GET("/guilds/:id/logs", guildH.RecentLogs)
		secured.GET("/guilds/:id/lists/:kind", guildH.ListEntries)
	}
}
