package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/kafe-cerita-bot/models"
	"github.com/yeremiapane/kafe-cerita-bot/nlp"
)

type stubCatalog struct {
	items []models.Menu
	info  string
	err   error
}

func (s *stubCatalog) GetAllItems() ([]models.Menu, error) {
	return s.items, s.err
}

func (s *stubCatalog) GetInfoText() (string, error) {
	return s.info, s.err
}

func (s *stubCatalog) GetCategories() ([]models.MenuCategory, error) {
	return []models.MenuCategory{
		{ID: 1, Key: "es_kopi", Name: "Es Kopi", Emoji: "☕", SortOrder: 1},
		{ID: 6, Key: "pastry", Name: "Pastry", Emoji: "🥐", SortOrder: 6},
	}, s.err
}

type recordingSink struct {
	mu     sync.Mutex
	orders []models.BotOrder
	err    error
}

func (r *recordingSink) RecordOrder(_ context.Context, order *models.BotOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, *order)
	return r.err
}

type panickingClassifier struct{}

func (panickingClassifier) Classify(string) (nlp.Intent, int) {
	panic("classifier exploded")
}

var receiptOrderID = regexp.MustCompile(`Nomor Pesanan: \*([^*]+)\*`)

func newCatalog() *stubCatalog {
	return &stubCatalog{
		items: []models.Menu{
			{ID: "E_AAA111", CategoryID: 1, Name: "Es Kopi Susu", Price: 18000},
			{ID: "E_CCC333", CategoryID: 1, Name: "Matcha Latte", Price: 25000},
			{ID: "P_BBB222", CategoryID: 6, Name: "Croissant", Price: 22000},
		},
		info: "Pesan langsung lewat chat ini ya.",
	}
}

type harness struct {
	conv  *Conversation
	store *MemorySessionStore
	clock *fakeClock
	sink  *recordingSink
}

func newHarness(t *testing.T, catalog Catalog, opts ...Option) *harness {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	clock := newFakeClock()
	store := NewMemorySessionStore(WithClock(clock.Now), WithTTL(30*time.Minute))
	sink := &recordingSink{}
	opts = append([]Option{WithLogger(logger), WithNow(clock.Now), WithOrderSink(sink)}, opts...)
	return &harness{
		conv:  NewConversation(store, catalog, opts...),
		store: store,
		clock: clock,
		sink:  sink,
	}
}

func (h *harness) send(userID, text string) []Reply {
	return h.conv.Handle(context.Background(), Message{UserID: userID, DisplayName: "Budi", Text: text})
}

func (h *harness) lastText(userID, text string) string {
	replies := h.send(userID, text)
	if len(replies) == 0 {
		return ""
	}
	return replies[len(replies)-1].Text
}

func TestConversation_ScenarioA_OrderByPartialName(t *testing.T) {
	h := newHarness(t, newCatalog())

	reply := h.lastText("u1", "pesan es kopi")

	assert.Contains(t, reply, "Es Kopi Susu")
	assert.Contains(t, reply, "berapa banyak")
	assert.Equal(t, StateAwaitingQuantity, h.store.GetState("u1"))
	snap, ok := h.store.Snapshot("u1")
	require.True(t, ok)
	require.NotNil(t, snap.Order.PendingItem)
	assert.Equal(t, "E_AAA111", snap.Order.PendingItem.ID)
}

func TestConversation_FullCashPickupFlow(t *testing.T) {
	h := newHarness(t, newCatalog())

	h.send("u1", "pesan es kopi")

	// Scenario B
	reply := h.lastText("u1", "2")
	assert.Contains(t, reply, "2 Es Kopi Susu")
	assert.Contains(t, reply, "Rp 36.000")
	assert.Equal(t, StateAwaitingMoreItems, h.store.GetState("u1"))
	snap, _ := h.store.Snapshot("u1")
	require.Len(t, snap.Order.LineItems, 1)
	assert.Equal(t, 2, snap.Order.LineItems[0].Quantity)
	assert.Equal(t, int64(36000), snap.Order.TotalPrice)
	assert.Nil(t, snap.Order.PendingItem)

	// Scenario C
	reply = h.lastText("u1", "selesai")
	assert.Contains(t, reply, "Rp 36.000")
	assert.Equal(t, StateAwaitingDiningOption, h.store.GetState("u1"))

	// Scenario D
	h.send("u1", "dibungkus")
	assert.Equal(t, StateAwaitingTakeoutType, h.store.GetState("u1"))
	snap, _ = h.store.Snapshot("u1")
	assert.Equal(t, DiningTakeaway, snap.Order.DiningOption)

	h.send("u1", "ambil sendiri")
	assert.Equal(t, StateAwaitingPaymentMethod, h.store.GetState("u1"))

	// Scenario E
	replies := h.send("u1", "cash")
	require.Len(t, replies, 1)
	assert.True(t, replies[0].Markdown)
	assert.Contains(t, replies[0].Text, "Belum Dibayar")
	assert.Contains(t, replies[0].Text, "Dibungkus (Ambil Sendiri)")

	match := receiptOrderID.FindStringSubmatch(replies[0].Text)
	require.Len(t, match, 2)
	assert.Regexp(t, orderIDPattern, match[1])

	assert.Equal(t, StateGeneral, h.store.GetState("u1"))
	snap, _ = h.store.Snapshot("u1")
	assert.False(t, snap.Order.HasItems())
	assert.Empty(t, snap.Order.OrderID)

	require.Len(t, h.sink.orders, 1)
	recorded := h.sink.orders[0]
	assert.Equal(t, match[1], recorded.OrderNumber)
	assert.Equal(t, models.PaymentStatusUnpaid, recorded.PaymentStatus)
	assert.Equal(t, int64(36000), recorded.TotalAmount)
	assert.Equal(t, "Budi", recorded.CustomerName)
}

func TestConversation_DineInEWallet(t *testing.T) {
	h := newHarness(t, newCatalog())

	h.send("u1", "mau order croissant")
	h.send("u1", "satu")
	h.send("u1", "matcha latte")
	assert.Equal(t, StateAwaitingQuantity, h.store.GetState("u1"))
	h.send("u1", "3")
	h.send("u1", "croissant")
	h.send("u1", "1")

	snap, _ := h.store.Snapshot("u1")
	require.Len(t, snap.Order.LineItems, 2)
	assert.Equal(t, int64(2*22000+3*25000), snap.Order.TotalPrice)

	h.send("u1", "cukup")
	h.send("u1", "makan di tempat")
	assert.Equal(t, StateAwaitingPaymentMethod, h.store.GetState("u1"))

	reply := h.lastText("u1", "pakai gopay")
	assert.Contains(t, reply, "LUNAS (Simulasi)")
	assert.Contains(t, reply, "sekitar 15 menit")
	assert.Contains(t, reply, "- 2x Croissant")
	assert.Contains(t, reply, "- 3x Matcha Latte")
	require.Len(t, h.sink.orders, 1)
	assert.Equal(t, models.PaymentStatusPaidSimulated, h.sink.orders[0].PaymentStatus)
}

func TestConversation_ScenarioF_ExpiredSessionStartsFresh(t *testing.T) {
	h := newHarness(t, newCatalog())

	h.send("u1", "pesan es kopi")
	h.send("u1", "2")
	require.Equal(t, StateAwaitingMoreItems, h.store.GetState("u1"))

	h.clock.Advance(31 * time.Minute)
	reply := h.lastText("u1", "selesai")

	assert.Contains(t, reply, "belum mengerti")
	assert.Equal(t, StateGeneral, h.store.GetState("u1"))
	snap, ok := h.store.Snapshot("u1")
	require.True(t, ok)
	assert.False(t, snap.Order.HasItems())
}

func TestConversation_PriceThenReferentialOrder(t *testing.T) {
	h := newHarness(t, newCatalog())

	reply := h.lastText("u1", "berapa harga croissant?")
	assert.Contains(t, reply, "Croissant")
	assert.Contains(t, reply, "Rp 22.000")

	reply = h.lastText("u1", "mau pesan itu")
	assert.Contains(t, reply, "Croissant")
	assert.Equal(t, StateAwaitingQuantity, h.store.GetState("u1"))
}

func TestConversation_OrderWithoutItemShowsInfo(t *testing.T) {
	h := newHarness(t, newCatalog())

	reply := h.lastText("u1", "mau pesan")

	assert.Contains(t, reply, "Pesan langsung lewat chat ini ya.")
	assert.Equal(t, StateGeneral, h.store.GetState("u1"))
}

func TestConversation_InvalidQuantityReprompts(t *testing.T) {
	h := newHarness(t, newCatalog())
	h.send("u1", "pesan croissant")

	reply := h.lastText("u1", "banyak deh")

	assert.Contains(t, reply, "Jumlah tidak valid")
	assert.Equal(t, StateAwaitingQuantity, h.store.GetState("u1"))
}

func TestConversation_UnknownItemWhileAddingReprompts(t *testing.T) {
	h := newHarness(t, newCatalog())
	h.send("u1", "pesan croissant")
	h.send("u1", "1")

	reply := h.lastText("u1", "nasi goreng")

	assert.Contains(t, reply, "nasi goreng")
	assert.Equal(t, StateAwaitingMoreItems, h.store.GetState("u1"))
}

func TestConversation_DeliveryCancelsOrder(t *testing.T) {
	h := newHarness(t, newCatalog())
	h.send("u1", "pesan croissant")
	h.send("u1", "1")
	h.send("u1", "selesai")
	h.send("u1", "bawa pulang")

	reply := h.lastText("u1", "diantar ya")

	assert.Contains(t, reply, "belum bisa melayani delivery")
	assert.Equal(t, StateGeneral, h.store.GetState("u1"))
	snap, _ := h.store.Snapshot("u1")
	assert.False(t, snap.Order.HasItems())
	assert.Empty(t, h.sink.orders)
}

func TestConversation_CancelCommandResetsOrder(t *testing.T) {
	h := newHarness(t, newCatalog())
	h.send("u1", "pesan croissant")

	reply := h.lastText("u1", "/cancel")

	assert.Contains(t, reply, "dibatalkan")
	assert.Equal(t, StateGeneral, h.store.GetState("u1"))
	snap, _ := h.store.Snapshot("u1")
	assert.Nil(t, snap.Order.PendingItem)
}

func TestConversation_FreeTextCancelDoesNotOverrideState(t *testing.T) {
	h := newHarness(t, newCatalog())
	h.send("u1", "pesan croissant")
	h.send("u1", "1")

	reply := h.lastText("u1", "tidak jadi tambah, lanjut")
	assert.Contains(t, reply, "Mau dimakan di tempat atau dibungkus?")
	assert.Equal(t, StateAwaitingDiningOption, h.store.GetState("u1"))

	reply = h.lastText("u1", "batal")
	assert.Equal(t, "Mohon pilih mau dimakan di tempat atau dibungkus?", reply)
	assert.Equal(t, StateAwaitingDiningOption, h.store.GetState("u1"))
	snap, _ := h.store.Snapshot("u1")
	assert.Equal(t, 1, len(snap.Order.LineItems))
}

func TestConversation_HugeQuantityIsRejected(t *testing.T) {
	h := newHarness(t, newCatalog())
	h.send("u1", "pesan croissant")

	reply := h.lastText("u1", "999999999999999999")

	assert.Contains(t, reply, "Jumlah tidak valid")
	assert.Equal(t, StateAwaitingQuantity, h.store.GetState("u1"))
	snap, _ := h.store.Snapshot("u1")
	assert.False(t, snap.Order.HasItems())
	assert.Equal(t, int64(0), snap.Order.TotalPrice)

	reply = h.lastText("u1", "2")
	assert.Contains(t, reply, "Rp 44.000")
}

func TestConversation_MergedQuantityAboveLimitReprompts(t *testing.T) {
	h := newHarness(t, newCatalog())
	h.send("u1", "pesan croissant")
	h.send("u1", "80")
	h.send("u1", "croissant lagi")

	reply := h.lastText("u1", "30")

	assert.Contains(t, reply, "maksimal 100 porsi")
	assert.Equal(t, StateAwaitingQuantity, h.store.GetState("u1"))
	snap, _ := h.store.Snapshot("u1")
	require.NotNil(t, snap.Order.PendingItem)
	require.Len(t, snap.Order.LineItems, 1)
	assert.Equal(t, 80, snap.Order.LineItems[0].Quantity)
	assert.Equal(t, int64(80*22000), snap.Order.TotalPrice)
}

func TestConversation_DiningRepromptWithEmptyOrderResets(t *testing.T) {
	h := newHarness(t, newCatalog())
	h.send("u1", "pesan croissant")
	h.send("u1", "1")
	h.send("u1", "selesai")
	require.NoError(t, h.store.Mutate("u1", func(s *Session) error {
		s.Order.LineItems = nil
		s.Order.TotalPrice = 0
		return nil
	}))

	reply := h.lastText("u1", "hmm gimana ya")

	assert.Contains(t, reply, "terjadi kesalahan pada pesanan")
	assert.Equal(t, StateGeneral, h.store.GetState("u1"))
}

func TestConversation_Commands(t *testing.T) {
	h := newHarness(t, newCatalog())
	h.send("u1", "pesan croissant")

	reply := h.lastText("u1", "/start")
	assert.Contains(t, reply, "Selamat datang")
	assert.Equal(t, StateGeneral, h.store.GetState("u1"))

	replies := h.send("u1", "/menu@KafeCeritaBot")
	require.Len(t, replies, 1)
	assert.True(t, replies[0].Markdown)
	assert.Contains(t, replies[0].Text, "• Es Kopi Susu: Rp 18.000")
	assert.Contains(t, replies[0].Text, "Pesan langsung lewat chat ini ya.")

	h.send("u1", "pesan croissant")
	h.send("u1", "/batal")
	assert.Equal(t, StateGeneral, h.store.GetState("u1"))
}

func TestConversation_IntegrityViolationResets(t *testing.T) {
	h := newHarness(t, newCatalog())

	h.store.SetState("u1", StateAwaitingQuantity)
	reply := h.lastText("u1", "2")
	assert.Contains(t, reply, "ada yang salah")
	assert.Equal(t, StateGeneral, h.store.GetState("u1"))

	h.store.SetState("u2", StateAwaitingDiningOption)
	reply = h.lastText("u2", "makan di tempat")
	assert.Contains(t, reply, "kesalahan")
	assert.Equal(t, StateGeneral, h.store.GetState("u2"))

	h.store.SetState("u3", StateAwaitingTakeoutType)
	reply = h.lastText("u3", "pickup")
	assert.Contains(t, reply, "diulang")
	assert.Equal(t, StateGeneral, h.store.GetState("u3"))

	h.store.SetState("u4", StateAwaitingPaymentMethod)
	h.lastText("u4", "cash")
	assert.Equal(t, StateGeneral, h.store.GetState("u4"))
	assert.Empty(t, h.sink.orders)
}

func TestConversation_CatalogFailure(t *testing.T) {
	catalog := newCatalog()
	catalog.err = errors.New("disk full")
	h := newHarness(t, catalog)

	assert.Contains(t, h.lastText("u1", "lihat menu"), "menu sedang tidak tersedia")
	assert.Contains(t, h.lastText("u1", "pesan croissant"), "menu sedang tidak tersedia")
	assert.Equal(t, StateGeneral, h.store.GetState("u1"))
}

func TestConversation_SinkFailureStillCompletesOrder(t *testing.T) {
	h := newHarness(t, newCatalog())
	h.sink.err = errors.New("db down")

	h.send("u1", "pesan croissant")
	h.send("u1", "1")
	h.send("u1", "selesai")
	h.send("u1", "dine in")
	reply := h.lastText("u1", "qris")

	assert.Contains(t, reply, "LUNAS")
	assert.Equal(t, StateGeneral, h.store.GetState("u1"))
}

func TestConversation_PanicIsRecovered(t *testing.T) {
	h := newHarness(t, newCatalog(), WithClassifier(panickingClassifier{}))

	var replies []Reply
	assert.NotPanics(t, func() {
		replies = h.send("u1", "halo")
	})
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "kesalahan pada sistem")
}

func TestConversation_EveryAwaitingStateIsClosed(t *testing.T) {
	inputs := []string{"", "2", "asdf", "selesai", "dibungkus", "makan di tempat", "pickup", "delivery", "cash", "gopay", "croissant", "halo", "0"}

	for _, state := range States {
		for _, input := range inputs {
			t.Run(fmt.Sprintf("%s/%q", state, input), func(t *testing.T) {
				h := newHarness(t, newCatalog())
				h.store.SetState("u1", state)
				require.NoError(t, h.store.Mutate("u1", func(s *Session) error {
					item := models.Menu{ID: "P_BBB222", Name: "Croissant", Price: 22000}
					s.Order.PendingItem = &item
					s.Order.DiningOption = DiningTakeaway
					return s.Order.AddLineItem(item, 1)
				}))

				replies := h.send("u1", input)

				assert.NotEmpty(t, replies)
				assert.Contains(t, States, h.store.GetState("u1"))
			})
		}
	}
}

func TestConversation_ConcurrentUsersDoNotInterfere(t *testing.T) {
	h := newHarness(t, newCatalog())
	flow := []string{"pesan croissant", "2", "selesai", "dine in", "cash"}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			for _, text := range flow {
				h.send(userID, text)
			}
		}(fmt.Sprintf("user-%02d", i))
	}
	wg.Wait()

	require.Len(t, h.sink.orders, 20)
	for _, order := range h.sink.orders {
		assert.Equal(t, int64(44000), order.TotalAmount)
		require.Len(t, order.Items, 1)
		assert.Equal(t, 2, order.Items[0].Quantity)
	}
}

func TestConversation_SameUserMessagesAreSerialized(t *testing.T) {
	h := newHarness(t, newCatalog())
	h.send("u1", "pesan croissant")
	h.send("u1", "1")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.send("u1", "croissant")
			h.send("u1", "1")
		}()
	}
	wg.Wait()

	snap, ok := h.store.Snapshot("u1")
	require.True(t, ok)
	var total int
	for _, li := range snap.Order.LineItems {
		total += li.Quantity
	}
	assert.Equal(t, int64(total)*22000, snap.Order.TotalPrice)
	require.Len(t, snap.Order.LineItems, 1)
}
