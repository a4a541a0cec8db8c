package bot

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/yeremiapane/kafe-cerita-bot/models"
	"github.com/yeremiapane/kafe-cerita-bot/nlp"
)

var (
	ErrNoSession        = errors.New("session not found or expired")
	ErrNoPendingItem    = errors.New("no pending item in order")
	ErrEmptyOrder       = errors.New("order has no items")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrQuantityTooLarge = errors.New("quantity exceeds the per-item limit")
	ErrTotalOverflow    = errors.New("order total is out of range")
	ErrNotTakeaway      = errors.New("order is not a takeaway order")
)

type LineItem struct {
	Item     models.Menu
	Quantity int
}

func (li LineItem) Subtotal() int64 {
	return li.Item.Price * int64(li.Quantity)
}

type Order struct {
	LineItems     []LineItem
	PendingItem   *models.Menu
	DiningOption  DiningOption
	TakeoutType   TakeoutType
	PaymentMethod PaymentMethod
	TotalPrice    int64
	OrderID       string
}

func (o *Order) clone() Order {
	c := *o
	if o.LineItems != nil {
		c.LineItems = make([]LineItem, len(o.LineItems))
		copy(c.LineItems, o.LineItems)
	}
	if o.PendingItem != nil {
		item := *o.PendingItem
		c.PendingItem = &item
	}
	return c
}

func (o *Order) HasItems() bool {
	return len(o.LineItems) > 0
}

// AddLineItem menambah item ke pesanan. Item dengan ID yang sama digabung.
// Jumlah gabungan per item dibatasi nlp.MaxQuantity. Pesanan tidak berubah bila ditolak.
func (o *Order) AddLineItem(item models.Menu, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	lines := make([]LineItem, len(o.LineItems), len(o.LineItems)+1)
	copy(lines, o.LineItems)

	merged := false
	for i := range lines {
		if lines[i].Item.ID == item.ID {
			if quantity > nlp.MaxQuantity-lines[i].Quantity {
				return ErrQuantityTooLarge
			}
			lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		if quantity > nlp.MaxQuantity {
			return ErrQuantityTooLarge
		}
		lines = append(lines, LineItem{Item: item, Quantity: quantity})
	}

	total, err := sumLines(lines)
	if err != nil {
		return err
	}
	o.LineItems = lines
	o.TotalPrice = total
	return nil
}

func sumLines(lines []LineItem) (int64, error) {
	var total int64
	for _, li := range lines {
		if li.Item.Price < 0 {
			return 0, ErrTotalOverflow
		}
		if li.Item.Price > 0 && int64(li.Quantity) > math.MaxInt64/li.Item.Price {
			return 0, ErrTotalOverflow
		}
		subtotal := li.Subtotal()
		if total > math.MaxInt64-subtotal {
			return 0, ErrTotalOverflow
		}
		total += subtotal
	}
	return total, nil
}

// Summary menghasilkan ringkasan seperti "2 Es Kopi Susu, 1 Croissant".
func (o *Order) Summary() string {
	parts := make([]string, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		parts = append(parts, fmt.Sprintf("%d %s", li.Quantity, li.Item.Name))
	}
	return strings.Join(parts, ", ")
}

// ToRecord mengubah pesanan yang sudah dibayar menjadi baris models.BotOrder.
func (o *Order) ToRecord(userID, customerName string) models.BotOrder {
	status := models.PaymentStatusUnpaid
	if o.PaymentMethod == PaymentEWallet {
		status = models.PaymentStatusPaidSimulated
	}
	record := models.BotOrder{
		OrderNumber:   o.OrderID,
		ChatUserID:    userID,
		CustomerName:  customerName,
		DiningOption:  string(o.DiningOption),
		TakeoutType:   string(o.TakeoutType),
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: status,
		TotalAmount:   o.TotalPrice,
	}
	for _, li := range o.LineItems {
		record.Items = append(record.Items, models.BotOrderItem{
			MenuID:    li.Item.ID,
			MenuName:  li.Item.Name,
			Quantity:  li.Quantity,
			UnitPrice: li.Item.Price,
			Subtotal:  li.Subtotal(),
		})
	}
	return record
}

// GenerateOrderID membuat nomor pesanan KC<yymmdd>-<4 karakter terakhir user id><4 hex>.
// Prefix kanal ("tg:", "web:") tidak ikut dalam nomor pesanan.
func GenerateOrderID(userID string, now time.Time, random io.Reader) (string, error) {
	buf := make([]byte, 2)
	if _, err := io.ReadFull(random, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	suffix := userID
	if i := strings.LastIndex(suffix, ":"); i >= 0 {
		suffix = suffix[i+1:]
	}
	if runes := []rune(userID); len(runes) > 4 {
		suffix = string(runes[len(runes)-4:])
	}
	suffix = strings.ReplaceAll(suffix, "-", "")
	if suffix == "" {
		suffix = "0"
	}
	return fmt.Sprintf("KC%s-%s%s", now.Format("060102"), suffix, strings.ToUpper(hex.EncodeToString(buf))), nil
}

// OrderAccumulator mengubah pesanan di dalam SessionStore.
type OrderAccumulator struct {
	store  SessionStore
	now    func() time.Time
	random io.Reader
}

func NewOrderAccumulator(store SessionStore) *OrderAccumulator {
	return &OrderAccumulator{store: store, now: time.Now, random: rand.Reader}
}

func (a *OrderAccumulator) SetPendingItem(userID string, item models.Menu) error {
	return a.store.Mutate(userID, func(s *Session) error {
		s.Order.PendingItem = &item
		return nil
	})
}

// CommitPending menerapkan jumlah ke item yang menunggu lalu mengosongkannya.
func (a *OrderAccumulator) CommitPending(userID string, quantity int) (LineItem, Order, error) {
	var line LineItem
	var order Order
	err := a.store.Mutate(userID, func(s *Session) error {
		if s.Order.PendingItem == nil {
			return ErrNoPendingItem
		}
		item := *s.Order.PendingItem
		if err := s.Order.AddLineItem(item, quantity); err != nil {
			return err
		}
		s.Order.PendingItem = nil
		line = LineItem{Item: item, Quantity: quantity}
		order = s.Order.clone()
		return nil
	})
	return line, order, err
}

func (a *OrderAccumulator) SetDiningOption(userID string, option DiningOption) (Order, error) {
	var order Order
	err := a.store.Mutate(userID, func(s *Session) error {
		if !s.Order.HasItems() {
			return ErrEmptyOrder
		}
		s.Order.DiningOption = option
		if option != DiningTakeaway {
			s.Order.TakeoutType = ""
		}
		order = s.Order.clone()
		return nil
	})
	return order, err
}

func (a *OrderAccumulator) SetTakeoutType(userID string, takeout TakeoutType) (Order, error) {
	var order Order
	err := a.store.Mutate(userID, func(s *Session) error {
		if s.Order.DiningOption != DiningTakeaway {
			return ErrNotTakeaway
		}
		s.Order.TakeoutType = takeout
		order = s.Order.clone()
		return nil
	})
	return order, err
}

// Checkout menyimpan metode pembayaran dan memberi nomor pesanan satu kali saja.
func (a *OrderAccumulator) Checkout(userID string, method PaymentMethod) (Order, error) {
	var order Order
	err := a.store.Mutate(userID, func(s *Session) error {
		if !s.Order.HasItems() {
			return ErrEmptyOrder
		}
		s.Order.PaymentMethod = method
		if s.Order.OrderID == "" {
			id, err := GenerateOrderID(userID, a.now(), a.random)
			if err != nil {
				return err
			}
			s.Order.OrderID = id
		}
		order = s.Order.clone()
		return nil
	})
	return order, err
}
