package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/chromium-bot/chromium/src/components/cleanup"
	"github.com/chromium-bot/chromium/src/components/delivery"
	"github.com/chromium-bot/chromium/src/components/dispatch"
	"github.com/chromium-bot/chromium/src/components/modules"
	"github.com/chromium-bot/chromium/src/components/policy"
	"github.com/chromium-bot/chromium/src/components/suspicious"
	"github.com/chromium-bot/chromium/src/data"
)

type Config struct {
	Token string
	DB    *gorm.DB
	Redis *redis.Client
}

type Bot struct {
	session    *discordgo.Session
	db         *gorm.DB
	rdb        *redis.Client
	config     Config
	guilds     *data.GuildStore
	lists      *data.ListStore
	logs       *data.LogStore
	detector   *suspicious.Detector
	deliverer  *delivery.Deliverer
	queue      *delivery.Queue
	dispatcher *dispatch.Dispatcher
	handlers   *modules.Handlers
	cleaner    *cleanup.Service
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	startOnce  sync.Once
}

func New(config Config) (*Bot, error) {
	// Load settings
	if err := data.LoadSettings(config.DB); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	// Create Discord session
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	bot := &Bot{
		session: dg,
		db:      config.DB,
		rdb:     config.Redis,
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
	}

	bot.initializeComponents()
	bot.registerHandlers()

	// Message cache feeds the delete/edit modules with pre-event content.
	dg.State.MaxMessageCount = 2000

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildBans |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildEmojis |
		discordgo.IntentsGuildWebhooks |
		discordgo.IntentsGuildInvites

	return bot, nil
}

func (b *Bot) initializeComponents() {
	b.guilds = data.NewGuildStore(b.db)
	b.lists = data.NewListStore(b.db)
	b.logs = data.NewLogStore(b.db)
	b.detector = suspicious.New(suspicious.DefaultConfig())
	b.deliverer = delivery.NewDeliverer(&delivery.SessionSender{Session: b.session})
	b.queue = delivery.NewQueue(b.deliverer, 512)

	b.dispatcher = dispatch.New(dispatch.Config{
		Engine:    policy.New(b.lists),
		Guilds:    b.guilds,
		Lists:     b.lists,
		Logs:      b.logs,
		Deliverer: b.deliverer,
		Queue:     b.queue,
		Redis:     b.rdb,
	})

	b.handlers = modules.New(b.dispatcher, b.detector)
	b.cleaner = cleanup.New(b.guilds, b.detector)
}

func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handleGuildCreate)
	b.session.AddHandler(b.handleGuildDelete)

	h := b.handlers
	b.session.AddHandler(h.OnMessageDelete)
	b.session.AddHandler(h.OnMessageDeleteBulk)
	b.session.AddHandler(h.OnMessageUpdate)
	b.session.AddHandler(h.OnGuildMemberAdd)
	b.session.AddHandler(h.OnGuildMemberRemove)
	b.session.AddHandler(h.OnGuildMemberUpdate)
	b.session.AddHandler(h.OnGuildBanAdd)
	b.session.AddHandler(h.OnGuildBanRemove)
	b.session.AddHandler(h.OnVoiceStateUpdate)
	b.session.AddHandler(h.OnGuildRoleCreate)
	b.session.AddHandler(h.OnGuildRoleUpdate)
	b.session.AddHandler(h.OnGuildRoleDelete)
	b.session.AddHandler(h.OnChannelCreate)
	b.session.AddHandler(h.OnChannelUpdate)
	b.session.AddHandler(h.OnChannelDelete)
	b.session.AddHandler(h.OnGuildUpdate)
	b.session.AddHandler(h.OnGuildEmojisUpdate)
	b.session.AddHandler(h.OnWebhooksUpdate)
	b.session.AddHandler(h.OnInviteCreate)
	b.session.AddHandler(h.OnInviteDelete)
}

// Dispatcher exposes the pipeline to the API server and command handlers.
func (b *Bot) Dispatcher() *dispatch.Dispatcher {
	return b.dispatcher
}

func (b *Bot) Start() error {
	return b.session.Open()
}

func (b *Bot) Stop() {
	b.cancel()
	b.wg.Wait()
	b.session.Close()
}
