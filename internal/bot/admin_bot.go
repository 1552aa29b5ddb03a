package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"twq_coin/internal/domain"
	"twq_coin/internal/logger"
	"twq_coin/internal/repository"
)

// AdminBot answers operator commands via Telegram. It is read-mostly: stats,
// leaderboards and player lookups against the account repository.
type AdminBot struct {
	bot      *tgbotapi.BotAPI
	accounts *repository.AccountRepository
	adminIDs []int64
	stopCh   chan struct{}
	wg       sync.WaitGroup
	log      *slog.Logger
}

func NewAdminBot(token string, accounts *repository.AccountRepository, adminIDs []int64) (*AdminBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "admin_bot")
	log.Info("admin bot authorized", "username", api.Self.UserName)

	return &AdminBot{
		bot:      api,
		accounts: accounts,
		adminIDs: adminIDs,
		stopCh:   make(chan struct{}),
		log:      log,
	}, nil
}

// Start runs the update loop until Stop is called.
func (b *AdminBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if !b.isAdmin(update.Message.From.ID) {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleCommand(msg)
			}(update.Message)
		}
	}
}

// Stop gracefully stops the bot.
func (b *AdminBot) Stop() {
	b.log.Info("stopping admin bot...")
	close(b.stopCh)
	b.bot.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("admin bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("admin bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *AdminBot) isAdmin(userID int64) bool {
	for _, id := range b.adminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *AdminBot) handleCommand(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var response string

	switch msg.Command() {
	case "start", "help":
		response = b.helpMessage()
	case "stats":
		response = b.handleStats(ctx)
	case "top":
		response = b.handleTop(ctx, msg.CommandArguments())
	case "player":
		response = b.handlePlayer(ctx, msg.CommandArguments())
	default:
		response = "❌ Неизвестная команда. Используйте /help для списка команд."
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, response)
	reply.ParseMode = "HTML"
	reply.ReplyToMessageID = msg.MessageID

	if _, err := b.bot.Send(reply); err != nil {
		b.log.Error("error sending message", "error", err)
	}
}

func (b *AdminBot) helpMessage() string {
	return `<b>🤖 Команды администратора</b>

/stats - Общая статистика
/top [лимит] - Топ игроков по очкам
/player &lt;tg_id&gt; - Информация об игроке`
}

func (b *AdminBot) handleStats(ctx context.Context) string {
	stats, err := b.accounts.Stats(ctx)
	if err != nil {
		b.log.Error("stats query failed", "error", err)
		return "❌ Ошибка получения статистики"
	}

	return fmt.Sprintf(`<b>📊 Статистика</b>

👥 Игроков: %d
⭐️ Всего очков: %d
💎 Всего TON: %s`,
		stats.Players, stats.TotalPoints, domain.FormatTON(stats.TotalTonNano))
}

func (b *AdminBot) handleTop(ctx context.Context, args string) string {
	limit := 10
	if v := strings.TrimSpace(args); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	top, err := b.accounts.Top(ctx, limit)
	if err != nil {
		b.log.Error("top query failed", "error", err)
		return "❌ Ошибка получения топа"
	}
	if len(top) == 0 {
		return "Пока нет игроков."
	}

	var sb strings.Builder
	sb.WriteString("<b>🏆 Топ игроков</b>\n\n")
	for i, entry := range top {
		name := entry.Username
		if name == "" {
			name = shortID(entry.PlayerID)
		}
		sb.WriteString(fmt.Sprintf("%d. %s - %d очков\n", i+1, name, entry.TotalPoints))
	}
	return sb.String()
}

// shortID abbreviates a player id for display. Ids are UUIDs in practice but
// the table may hold anything, so short ones pass through unchanged.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func (b *AdminBot) handlePlayer(ctx context.Context, args string) string {
	tgID, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		return "Использование: /player <tg_id>"
	}

	playerID, err := b.accounts.FindByTgID(ctx, tgID)
	if err != nil {
		b.log.Error("player lookup failed", "error", err, "tg_id", tgID)
		return "❌ Игрок не найден"
	}
	snap, err := b.accounts.Load(ctx, playerID)
	if err != nil {
		b.log.Error("player load failed", "error", err, "player_id", playerID)
		return "❌ Ошибка загрузки игрока"
	}
	acc, err := snap.Account()
	if err != nil {
		b.log.Error("snapshot decode failed", "error", err, "player_id", playerID)
		return "❌ Ошибка загрузки игрока"
	}

	mining := "нет"
	if acc.Mining != nil {
		mining = acc.Mining.MaturesAt().UTC().Format("2006-01-02 15:04") + " UTC"
	}

	return fmt.Sprintf(`<b>👤 Игрок %s</b>

ID: <code>%s</code>
⭐️ Очки: %d
💎 TON: %s
🔥 Серия входов: %d
👥 Рефералов: %d
⛏ Майнинг до: %s`,
		acc.Username, acc.PlayerID, acc.TotalPoints, domain.FormatTON(acc.TonBalance),
		acc.LoginStreak, acc.ReferralCount(), mining)
}
