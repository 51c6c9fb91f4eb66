package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/chromium-bot/chromium/src/data"
)

type stubConfigs struct {
	cfg *data.GuildConfig
	err error
}

func (s stubConfigs) Get(guildID string) (*data.GuildConfig, error) { return s.cfg, s.err }

type stubLogs struct {
	records []data.LogRecord
}

func (s stubLogs) Recent(guildID string, limit int) ([]data.LogRecord, error) {
	return s.records, nil
}

type stubLists struct {
	listed   []data.PolicyEntry
	searched []data.PolicyEntry
	lastQ    string
}

func (s *stubLists) List(guildID string, list data.ListType) ([]data.PolicyEntry, error) {
	return s.listed, nil
}

func (s *stubLists) Search(guildID string, list data.ListType, q string) ([]data.PolicyEntry, error) {
	s.lastQ = q
	return s.searched, nil
}

func newTestRouter(h Guilds) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guilds/:id/config", h.Config)
	r.GET("/guilds/:id/logs", h.RecentLogs)
	r.GET("/guilds/:id/lists/:kind", h.ListEntries)
	return r
}

func TestConfigNotFound(t *testing.T) {
	r := newTestRouter(Guilds{Configs: stubConfigs{}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guilds/g1/config", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConfigFound(t *testing.T) {
	cfg := &data.GuildConfig{GuildID: "g1", LogChannelID: "log-ch"}
	cfg.SetModules(map[string]bool{"MessageDelete": true})
	r := newTestRouter(Guilds{Configs: stubConfigs{cfg: cfg}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guilds/g1/config", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "log-ch")
	assert.Contains(t, w.Body.String(), "MessageDelete")
}

func TestConfigLookupFailure(t *testing.T) {
	r := newTestRouter(Guilds{Configs: stubConfigs{err: errors.New("db down")}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guilds/g1/config", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRecentLogs(t *testing.T) {
	r := newTestRouter(Guilds{Logs: stubLogs{records: []data.LogRecord{
		{GuildID: "g1", ModuleName: "MemberBan", Content: "Member Banned"},
	}}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guilds/g1/logs", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "MemberBan")
}

func TestListEntriesBadKind(t *testing.T) {
	r := newTestRouter(Guilds{Lists: &stubLists{}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guilds/g1/lists/blocklist", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListEntriesSearch(t *testing.T) {
	lists := &stubLists{searched: []data.PolicyEntry{{EntityID: "u1", EntityName: "spammer"}}}
	r := newTestRouter(Guilds{Lists: lists})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guilds/g1/lists/deny?q=spam", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "spam", lists.lastQ)
	assert.Contains(t, w.Body.String(), "spammer")
}
