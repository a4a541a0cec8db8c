package transport

import (
	"context"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/kafe-cerita-bot/bot"
)

const rateLimitedText = "Pesan Kakak terlalu cepat, tunggu sebentar ya 🙏"

// telegramAPI adalah bagian dari *tgbotapi.BotAPI yang dipakai TelegramBot
type telegramAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Limiter membatasi jumlah pesan per user
type Limiter interface {
	Allow(key string) bool
}

// TelegramBot menghubungkan long polling Telegram dengan Conversation
type TelegramBot struct {
	api          telegramAPI
	conversation *bot.Conversation
	limiter      Limiter
	logger       *logrus.Logger
	timeout      int
}

// NewTelegramBot login ke Bot API dengan token yang diberikan
func NewTelegramBot(token string, debug bool, conversation *bot.Conversation, limiter Limiter, logger *logrus.Logger) (*TelegramBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = debug
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.Infof("Authorized on Telegram account %s", api.Self.UserName)
	return newTelegramBot(api, conversation, limiter, logger), nil
}

func newTelegramBot(api telegramAPI, conversation *bot.Conversation, limiter Limiter, logger *logrus.Logger) *TelegramBot {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TelegramBot{
		api:          api,
		conversation: conversation,
		limiter:      limiter,
		logger:       logger,
		timeout:      60,
	}
}

// Run menerima update sampai ctx dibatalkan, lalu menunggu pesan yang sedang diproses
func (tb *TelegramBot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = tb.timeout
	updates := tb.api.GetUpdatesChan(u)

	queues := newUserQueues(func(j job) { tb.handle(ctx, j.msg, j.chatID) })
	defer queues.wait()

	for {
		select {
		case <-ctx.Done():
			tb.api.StopReceivingUpdates()
			tb.logger.Info("Telegram polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg, chatID, ok := toMessage(update)
			if !ok {
				continue
			}
			queues.enqueue(job{msg: msg, chatID: chatID})
		}
	}
}

type job struct {
	msg    bot.Message
	chatID int64
}

// userQueues menjalankan pesan tiap user satu per satu sesuai urutan datang.
// User berbeda diproses paralel, satu goroutine per user selama antreannya tidak kosong.
type userQueues struct {
	mu      sync.Mutex
	pending map[string][]job
	handle  func(job)
	wg      sync.WaitGroup
}

func newUserQueues(handle func(job)) *userQueues {
	return &userQueues{pending: make(map[string][]job), handle: handle}
}

func (q *userQueues) enqueue(j job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	queued := q.pending[j.msg.UserID]
	q.pending[j.msg.UserID] = append(queued, j)
	if len(queued) == 0 {
		q.wg.Add(1)
		go q.drain(j.msg.UserID)
	}
}

// drain memproses antrean user sampai kosong. Job terdepan tetap di antrean
// selama diproses supaya enqueue tidak menyalakan worker kedua.
func (q *userQueues) drain(userID string) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		next := q.pending[userID][0]
		q.mu.Unlock()

		q.handle(next)

		q.mu.Lock()
		rest := q.pending[userID][1:]
		if len(rest) == 0 {
			delete(q.pending, userID)
			q.mu.Unlock()
			return
		}
		q.pending[userID] = rest
		q.mu.Unlock()
	}
}

func (q *userQueues) wait() {
	q.wg.Wait()
}

func (tb *TelegramBot) handle(ctx context.Context, msg bot.Message, chatID int64) {
	if tb.limiter != nil && !tb.limiter.Allow(msg.UserID) {
		tb.logger.WithField("user_id", msg.UserID).Warn("Telegram message rate limited")
		tb.send(chatID, bot.Reply{Text: rateLimitedText})
		return
	}
	for _, reply := range tb.conversation.Handle(ctx, msg) {
		tb.send(chatID, reply)
	}
}

// send mengirim balasan; bila Markdown gagal di-parse Telegram, kirim ulang sebagai teks biasa
func (tb *TelegramBot) send(chatID int64, reply bot.Reply) {
	out := tgbotapi.NewMessage(chatID, reply.Text)
	if reply.Markdown {
		out.ParseMode = tgbotapi.ModeMarkdown
	}
	_, err := tb.api.Send(out)
	if err == nil {
		return
	}
	fields := logrus.Fields{"chat_id": chatID}
	if reply.Markdown {
		tb.logger.WithFields(fields).WithError(err).Warn("Markdown reply rejected, resending as plain text")
		out.ParseMode = ""
		if _, err = tb.api.Send(out); err == nil {
			return
		}
	}
	tb.logger.WithFields(fields).WithError(err).Error("Failed to send Telegram reply")
}

// toMessage mengubah update Telegram menjadi pesan bot; update tanpa teks diabaikan
func toMessage(update tgbotapi.Update) (bot.Message, int64, bool) {
	m := update.Message
	if m == nil || m.From == nil || strings.TrimSpace(m.Text) == "" {
		return bot.Message{}, 0, false
	}
	name := strings.TrimSpace(m.From.FirstName)
	if name == "" {
		name = m.From.UserName
	}
	return bot.Message{
		UserID:      bot.TelegramUserPrefix + strconv.FormatInt(m.From.ID, 10),
		DisplayName: name,
		Text:        m.Text,
	}, m.Chat.ID, true
}
