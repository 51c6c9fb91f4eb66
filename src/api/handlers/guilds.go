package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chromium-bot/chromium/src/data"
)

// Providers are satisfied by the data stores; tests plug in stubs.
type ConfigProvider interface {
	Get(guildID string) (*data.GuildConfig, error)
}

type LogProvider interface {
	Recent(guildID string, limit int) ([]data.LogRecord, error)
}

type ListProvider interface {
	List(guildID string, list data.ListType) ([]data.PolicyEntry, error)
	Search(guildID string, list data.ListType, query string) ([]data.PolicyEntry, error)
}

type Guilds struct {
	Configs ConfigProvider
	Logs    LogProvider
	Lists   ListProvider
}

func (h Guilds) Config(c *gin.Context) {
	cfg, err := h.Configs.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	if cfg == nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "guild not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"guild_id":           cfg.GuildID,
		"log_channel":        cfg.LogChannelID,
		"message_channel":    cfg.MessageChannelID,
		"member_channel":     cfg.MemberChannelID,
		"suspicious_channel": cfg.SuspiciousChannelID,
		"enabled_modules":    cfg.Modules(),
	})
}

func (h Guilds) RecentLogs(c *gin.Context) {
	records, err := h.Logs.Recent(c.Param("id"), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": records})
}

func (h Guilds) ListEntries(c *gin.Context) {
	kind := data.ListType(c.Param("kind"))
	if kind != data.ListAllow && kind != data.ListDeny {
		c.JSON(http.StatusBadRequest, gin.H{"err": "kind must be allow or deny"})
		return
	}

	var (
		entries []data.PolicyEntry
		err     error
	)
	if q := c.Query("q"); q != "" {
		entries, err = h.Lists.Search(c.Param("id"), kind, q)
	} else {
		entries, err = h.Lists.List(c.Param("id"), kind)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
