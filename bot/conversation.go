// Package bot berisi alur percakapan pemesanan: state per user, akumulasi pesanan,
// dan penyusunan balasan termasuk struk.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/kafe-cerita-bot/models"
	"github.com/yeremiapane/kafe-cerita-bot/nlp"
	"github.com/yeremiapane/kafe-cerita-bot/utils"
)

const DefaultCafeName = "Kafe Cerita"

// Message adalah satu pesan masuk dari transport mana pun.
type Message struct {
	UserID      string `json:"user_id" binding:"required"`
	DisplayName string `json:"display_name"`
	Text        string `json:"text" binding:"required"`
}

// Prefix user id per kanal, sesi Telegram dan widget web tidak pernah berbagi kunci.
const (
	TelegramUserPrefix = "tg:"
	WebUserPrefix      = "web:"
)

type Reply struct {
	Text     string `json:"text"`
	Markdown bool   `json:"markdown"`
}

// OrderSink menerima pesanan yang sudah selesai, misalnya untuk disimpan atau dikirim ke bar.
type OrderSink interface {
	RecordOrder(ctx context.Context, order *models.BotOrder) error
}

type turn struct {
	ctx        context.Context
	userID     string
	name       string
	text       string
	normalized string
}

type stateHandler func(c *Conversation, t *turn) []Reply

type Conversation struct {
	store      SessionStore
	orders     *OrderAccumulator
	classifier nlp.IntentClassifier
	extractor  nlp.EntityExtractor
	catalog    Catalog
	sinks      []OrderSink
	cafeName   string
	logger     *logrus.Logger
	now        func() time.Time
	locks      *userLocks
	handlers   map[State]stateHandler
}

type Option func(*Conversation)

func WithClassifier(classifier nlp.IntentClassifier) Option {
	return func(c *Conversation) { c.classifier = classifier }
}

func WithExtractor(extractor nlp.EntityExtractor) Option {
	return func(c *Conversation) { c.extractor = extractor }
}

func WithOrderSink(sink OrderSink) Option {
	return func(c *Conversation) { c.sinks = append(c.sinks, sink) }
}

func WithCafeName(name string) Option {
	return func(c *Conversation) {
		if name != "" {
			c.cafeName = name
		}
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(c *Conversation) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNow mengganti jam yang dipakai untuk tanggal struk dan nomor pesanan.
func WithNow(now func() time.Time) Option {
	return func(c *Conversation) {
		c.now = now
		c.orders.now = now
	}
}

func NewConversation(store SessionStore, catalog Catalog, opts ...Option) *Conversation {
	c := &Conversation{
		store:      store,
		orders:     NewOrderAccumulator(store),
		classifier: nlp.NewKeywordClassifier(),
		extractor:  nlp.NewKeywordExtractor(catalog),
		catalog:    catalog,
		cafeName:   DefaultCafeName,
		logger:     logrus.StandardLogger(),
		now:        time.Now,
		locks:      newUserLocks(),
	}
	c.handlers = map[State]stateHandler{
		StateGeneral:               (*Conversation).handleGeneral,
		StateAwaitingQuantity:      (*Conversation).handleQuantity,
		StateAwaitingMoreItems:     (*Conversation).handleMoreItems,
		StateAwaitingDiningOption:  (*Conversation).handleDiningOption,
		StateAwaitingTakeoutType:   (*Conversation).handleTakeoutType,
		StateAwaitingPaymentMethod: (*Conversation).handlePaymentMethod,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store mengembalikan SessionStore yang dipakai percakapan ini.
func (c *Conversation) Store() SessionStore {
	return c.store
}

// Handle memproses satu pesan user. Pesan dari user yang sama diproses berurutan.
func (c *Conversation) Handle(ctx context.Context, msg Message) (replies []Reply) {
	unlock := c.locks.lock(msg.UserID)
	defer unlock()

	name := strings.TrimSpace(msg.DisplayName)
	if name == "" {
		name = "Kak"
	}
	t := &turn{
		ctx:        ctx,
		userID:     msg.UserID,
		name:       name,
		text:       msg.Text,
		normalized: nlp.Normalize(msg.Text),
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.WithFields(logrus.Fields{
				"user_id": msg.UserID,
				"text":    msg.Text,
			}).Errorf("panic while handling message: %v", r)
			replies = []Reply{{Text: "Maaf, terjadi kesalahan pada sistem kami. Silakan coba lagi sebentar lagi."}}
		}
	}()

	if _, ok := c.store.Snapshot(t.userID); !ok {
		c.store.SetState(t.userID, StateGeneral)
	}
	state := c.store.GetState(t.userID)

	c.logger.WithFields(logrus.Fields{
		"user_id": t.userID,
		"state":   state,
	}).Infof("Pesan diterima: %q", msg.Text)
	messagesHandledTotal.WithLabelValues(string(state)).Inc()

	if replies, ok := c.handleCommand(t); ok {
		return replies
	}
	return c.dispatch(state, t)
}

func (c *Conversation) dispatch(state State, t *turn) []Reply {
	handler, ok := c.handlers[state]
	if !ok {
		return c.resetWith(t, "unknown_state", "Maaf, terjadi kesalahan. Proses pemesanan diulang.")
	}
	return handler(c, t)
}

func (c *Conversation) handleCommand(t *turn) ([]Reply, bool) {
	text := strings.TrimSpace(t.text)
	if !strings.HasPrefix(text, "/") {
		return nil, false
	}
	command := strings.Fields(text)[0]
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}

	switch strings.ToLower(command) {
	case "/start":
		c.store.SetState(t.userID, StateGeneral)
		c.store.ResetOrder(t.userID)
		return say(fmt.Sprintf("Halo %s! Selamat datang di Bot %s. Ada yang bisa saya bantu? "+
			"Anda bisa tanya tentang menu, harga, atau cara pemesanan.", t.name, c.cafeName)), true
	case "/menu":
		return c.menuReply(t), true
	case "/batal", "/cancel":
		return c.cancelOrder(t), true
	}
	return nil, false
}

func (c *Conversation) cancelOrder(t *turn) []Reply {
	c.store.SetState(t.userID, StateGeneral)
	c.store.ResetOrder(t.userID)
	sessionResetsTotal.WithLabelValues("cancelled").Inc()
	return say("Baik, pesanan saat ini dibatalkan. Ada lagi yang bisa dibantu?")
}

// resetWith mengembalikan user ke GENERAL dengan pesanan kosong.
func (c *Conversation) resetWith(t *turn, reason, reply string) []Reply {
	c.logger.WithFields(logrus.Fields{
		"user_id": t.userID,
		"reason":  reason,
	}).Warn("Sesi pesanan direset")
	c.store.SetState(t.userID, StateGeneral)
	c.store.ResetOrder(t.userID)
	sessionResetsTotal.WithLabelValues(reason).Inc()
	return say(reply)
}

func (c *Conversation) sessionLost(t *turn) []Reply {
	return c.resetWith(t, "missing_session", "Maaf, sesi pesanan Anda tidak ditemukan. Silakan mulai lagi.")
}

func (c *Conversation) catalogUnavailable(t *turn, err error) []Reply {
	c.logger.WithFields(logrus.Fields{
		"user_id": t.userID,
	}).WithError(err).Error("Katalog tidak dapat dimuat")
	return say("Maaf, menu sedang tidak tersedia. Silakan coba lagi nanti.")
}

func (c *Conversation) menuReply(t *turn) []Reply {
	categories, err := c.catalog.GetCategories()
	if err != nil {
		return c.catalogUnavailable(t, err)
	}
	items, err := c.catalog.GetAllItems()
	if err != nil {
		return c.catalogUnavailable(t, err)
	}
	info, err := c.catalog.GetInfoText()
	if err != nil {
		return c.catalogUnavailable(t, err)
	}
	return []Reply{{Text: RenderMenu(c.cafeName, categories, items, info), Markdown: true}}
}

func (c *Conversation) askQuantity(t *turn, item models.Menu, prompt string) []Reply {
	if err := c.orders.SetPendingItem(t.userID, item); err != nil {
		if errors.Is(err, ErrNoSession) {
			return c.sessionLost(t)
		}
		return c.resetWith(t, "pending_item", "Maaf, terjadi kendala saat memproses pesanan Anda. Silakan coba lagi.")
	}
	c.store.SetState(t.userID, StateAwaitingQuantity)
	return say(prompt)
}

func (c *Conversation) handleGeneral(t *turn) []Reply {
	intent, score := c.classifier.Classify(t.text)
	c.logger.WithFields(logrus.Fields{
		"user_id": t.userID,
		"intent":  intent,
		"score":   score,
	}).Info("Intent terdeteksi")

	switch intent {
	case nlp.IntentViewMenu:
		return c.menuReply(t)

	case nlp.IntentAskPrice:
		item, err := c.extractor.FindItem(t.text)
		if err != nil {
			return c.catalogUnavailable(t, err)
		}
		if item == nil {
			return say(fmt.Sprintf("Untuk informasi harga, mohon sebutkan nama item yang lebih spesifik ya, %s. "+
				"Anda juga bisa lihat /menu.", t.name))
		}
		c.store.SetLastInquiredItem(t.userID, *item)
		return say(fmt.Sprintf("Harga untuk %s adalah %s, %s.", item.Name, utils.FormatCurrencyIDR(item.Price), t.name))

	case nlp.IntentRequestOrder:
		item, err := c.extractor.FindItem(t.text)
		if err != nil {
			return c.catalogUnavailable(t, err)
		}
		if item == nil && nlp.ContainsAny(t.normalized, referentialKeywords) {
			item = c.store.GetLastInquiredItem(t.userID)
		}
		if item != nil {
			return c.askQuantity(t, *item, fmt.Sprintf("Baik, %s. Mau pesan berapa banyak/porsi?", item.Name))
		}
		info, err := c.catalog.GetInfoText()
		if err != nil {
			return c.catalogUnavailable(t, err)
		}
		return say(fmt.Sprintf("Anda mau pesan apa, %s? Sebutkan nama itemnya atau lihat /menu dulu. "+
			"Info pemesanan umum: %s", t.name, info))

	case nlp.IntentGreeting:
		return say(fmt.Sprintf("Halo juga, %s! Ada yang bisa saya bantu?", t.name))

	case nlp.IntentThanks:
		return say(fmt.Sprintf("Sama-sama, %s! Senang bisa membantu. 😊", t.name))

	case nlp.IntentAskBotIdentity:
		return say(fmt.Sprintf("Saya adalah bot %s, %s. Saya bisa membantu Anda melihat menu, "+
			"cek harga, dan memproses pesanan.", c.cafeName, t.name))

	case nlp.IntentConfirmNo:
		return say(fmt.Sprintf("Oke, %s.", t.name))
	}

	return say(fmt.Sprintf("Maaf %s, saya belum mengerti maksud Anda. "+
		"Anda bisa coba tanya tentang menu, harga item, atau cara pemesanan. "+
		"Ketik /menu untuk melihat daftar menu lengkap.", t.name))
}

func (c *Conversation) handleQuantity(t *turn) []Reply {
	session, ok := c.store.Snapshot(t.userID)
	if !ok {
		return c.sessionLost(t)
	}
	if session.Order.PendingItem == nil {
		return c.resetWith(t, "no_pending_item", "Maaf, sepertinya ada yang salah. Bisa sebutkan lagi item yang mau dipesan?")
	}
	pending := *session.Order.PendingItem

	quantity, ok := c.extractor.FindQuantity(t.text)
	if !ok {
		return say(fmt.Sprintf("Jumlah tidak valid, %s. Mau pesan berapa banyak untuk %s?", t.name, pending.Name))
	}

	line, order, err := c.orders.CommitPending(t.userID, quantity)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return c.sessionLost(t)
		}
		if errors.Is(err, ErrQuantityTooLarge) {
			return say(fmt.Sprintf("Maaf %s, jumlah %s dalam satu pesanan maksimal %d porsi. Mau pesan berapa banyak?",
				t.name, pending.Name, nlp.MaxQuantity))
		}
		return c.resetWith(t, "commit_failed", "Maaf, terjadi kendala saat memproses pesanan Anda. Silakan coba lagi.")
	}

	c.store.SetState(t.userID, StateAwaitingMoreItems)
	return say(fmt.Sprintf("Oke, %d %s sudah ditambahkan. Pesanan Anda saat ini: %s (Total sementara: %s).\n\n"+
		"Apakah ingin menambah item lain? Ketik nama menu yang ingin ditambah atau ketik 'selesai' untuk lanjut ke pembayaran.",
		line.Quantity, line.Item.Name, order.Summary(), utils.FormatCurrencyIDR(order.TotalPrice)))
}

func (c *Conversation) handleMoreItems(t *turn) []Reply {
	if nlp.ContainsAny(t.normalized, finishKeywords) {
		session, ok := c.store.Snapshot(t.userID)
		if !ok {
			return c.sessionLost(t)
		}
		if !session.Order.HasItems() {
			return c.resetWith(t, "empty_order", "Maaf, tidak ada item dalam pesanan. Silakan mulai memesan lagi.")
		}
		c.store.SetState(t.userID, StateAwaitingDiningOption)
		return say(fmt.Sprintf("Baik! Ringkasan pesanan Anda:\n%s\nTotal: %s\n\nMau dimakan di tempat atau dibungkus?",
			session.Order.Summary(), utils.FormatCurrencyIDR(session.Order.TotalPrice)))
	}

	item, err := c.extractor.FindItem(t.text)
	if err != nil {
		return c.catalogUnavailable(t, err)
	}
	if item != nil {
		return c.askQuantity(t, *item, fmt.Sprintf("Mau pesan %s berapa banyak?", item.Name))
	}
	return say(fmt.Sprintf("Maaf %s, saya tidak menemukan menu '%s'. "+
		"Coba sebutkan nama menu yang lebih spesifik, lihat /menu, atau ketik 'selesai' jika sudah cukup.", t.name, t.text))
}

func (c *Conversation) handleDiningOption(t *turn) []Reply {
	option, ok := pick(t.normalized, diningChoices)
	if !ok {
		session, live := c.store.Snapshot(t.userID)
		if !live {
			return c.sessionLost(t)
		}
		if !session.Order.HasItems() {
			return c.resetWith(t, "empty_order", "Maaf, terjadi kesalahan pada pesanan Anda. Bisa dimulai lagi?")
		}
		return say("Mohon pilih mau dimakan di tempat atau dibungkus?")
	}

	order, err := c.orders.SetDiningOption(t.userID, option)
	switch {
	case errors.Is(err, ErrNoSession):
		return c.sessionLost(t)
	case err != nil:
		return c.resetWith(t, "empty_order", "Maaf, terjadi kesalahan pada pesanan Anda. Bisa dimulai lagi?")
	}

	total := utils.FormatCurrencyIDR(order.TotalPrice)
	if option == DiningDineIn {
		c.store.SetState(t.userID, StateAwaitingPaymentMethod)
		return say(fmt.Sprintf("Baik, untuk makan di tempat. Total pesanan Anda adalah %s.\n\n"+
			"Silakan pilih metode pembayaran: E-Wallet atau Cash di Kasir?", total))
	}
	c.store.SetState(t.userID, StateAwaitingTakeoutType)
	return say(fmt.Sprintf("Baik, untuk dibungkus. Total pesanan Anda adalah %s.\n\n"+
		"Mau diambil sendiri (Self-pickup) atau Delivery?", total))
}

func (c *Conversation) handleTakeoutType(t *turn) []Reply {
	takeout, ok := pick(t.normalized, takeoutChoices)
	if !ok {
		session, live := c.store.Snapshot(t.userID)
		if !live {
			return c.sessionLost(t)
		}
		if session.Order.DiningOption != DiningTakeaway {
			return c.resetWith(t, "not_takeaway", "Maaf, terjadi kesalahan. Proses pemesanan diulang.")
		}
		return say("Mohon pilih mau diambil sendiri atau delivery?")
	}

	order, err := c.orders.SetTakeoutType(t.userID, takeout)
	switch {
	case errors.Is(err, ErrNoSession):
		return c.sessionLost(t)
	case err != nil:
		return c.resetWith(t, "not_takeaway", "Maaf, terjadi kesalahan. Proses pemesanan diulang.")
	}

	if takeout == TakeoutDelivery {
		return c.resetWith(t, "delivery_unavailable", "Mohon maaf, untuk saat ini kami belum bisa melayani delivery.\n"+
			"Pemesanan Anda telah dibatalkan. Jika berkenan, Anda bisa memesan kembali untuk diambil sendiri.")
	}
	c.store.SetState(t.userID, StateAwaitingPaymentMethod)
	return say(fmt.Sprintf("Oke, pesanan akan diambil sendiri. Totalnya tetap %s.\n\n"+
		"Silakan pilih metode pembayaran: E-Wallet atau Cash di Kasir?", utils.FormatCurrencyIDR(order.TotalPrice)))
}

func (c *Conversation) handlePaymentMethod(t *turn) []Reply {
	method, ok := pick(t.normalized, paymentChoices)
	if !ok {
		session, live := c.store.Snapshot(t.userID)
		if !live {
			return c.sessionLost(t)
		}
		if !session.Order.HasItems() {
			return c.resetWith(t, "empty_order", "Maaf, terjadi kesalahan pada pesanan Anda. Bisa dimulai lagi?")
		}
		return say("Mohon pilih metode pembayaran: E-Wallet atau Cash di Kasir?")
	}

	order, err := c.orders.Checkout(t.userID, method)
	switch {
	case errors.Is(err, ErrNoSession):
		return c.sessionLost(t)
	case err != nil:
		return c.resetWith(t, "checkout_failed", "Maaf, terjadi kesalahan pada pesanan Anda. Bisa dimulai lagi?")
	}

	receipt := RenderReceipt(order, t.name, c.cafeName, c.now())
	c.recordOrder(t, order)

	c.store.SetState(t.userID, StateGeneral)
	c.store.ResetOrder(t.userID)
	ordersCompletedTotal.WithLabelValues(string(method)).Inc()
	return []Reply{{Text: receipt, Markdown: true}}
}

// recordOrder meneruskan pesanan ke setiap sink. Kegagalan sink hanya dicatat.
func (c *Conversation) recordOrder(t *turn, order Order) {
	record := order.ToRecord(t.userID, t.name)
	for _, sink := range c.sinks {
		if err := sink.RecordOrder(t.ctx, &record); err != nil {
			c.logger.WithFields(logrus.Fields{
				"user_id":  t.userID,
				"order_id": order.OrderID,
			}).WithError(err).Error("Gagal mencatat pesanan")
		}
	}
	c.logger.WithFields(logrus.Fields{
		"user_id":  t.userID,
		"order_id": order.OrderID,
		"total":    order.TotalPrice,
		"payment":  order.PaymentMethod,
	}).Info("Pesanan selesai")
}

func say(text string) []Reply {
	return []Reply{{Text: text}}
}
