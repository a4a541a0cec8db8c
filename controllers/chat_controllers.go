package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/yeremiapane/kafe-cerita-bot/bot"
	"github.com/yeremiapane/kafe-cerita-bot/utils"
)

// ChatController membuka percakapan bot lewat HTTP, dipakai widget web dan pengujian
type ChatController struct {
	Conversation *bot.Conversation
}

func NewChatController(conversation *bot.Conversation) *ChatController {
	return &ChatController{Conversation: conversation}
}

// PostMessage memproses satu pesan dan mengembalikan balasan bot
func (cc *ChatController) PostMessage(c *gin.Context) {
	var msg bot.Message
	// body mungkin sudah dibaca oleh rate limiter, jadi pakai ShouldBindBodyWith
	if err := c.ShouldBindBodyWith(&msg, binding.JSON); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// user_id dari body tidak diautentikasi, jadi dipisah dari sesi Telegram
	msg.UserID = bot.WebUserPrefix + msg.UserID

	replies := cc.Conversation.Handle(c.Request.Context(), msg)
	utils.RespondJSON(c, http.StatusOK, "Message handled", gin.H{
		"user_id": msg.UserID,
		"state":   cc.Conversation.Store().GetState(msg.UserID),
		"replies": replies,
	})
}

type lineItemView struct {
	MenuID   string `json:"menu_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Subtotal int64  `json:"subtotal"`
}

type sessionView struct {
	UserID       string         `json:"user_id"`
	State        bot.State      `json:"state"`
	Awaiting     bool           `json:"awaiting"`
	Items        []lineItemView `json:"items"`
	PendingItem  string         `json:"pending_item,omitempty"`
	DiningOption string         `json:"dining_option,omitempty"`
	TakeoutType  string         `json:"takeout_type,omitempty"`
	TotalPrice   int64          `json:"total_price"`
	TotalLabel   string         `json:"total_label"`
	LastInquired string         `json:"last_inquired_item,omitempty"`
	LastActivity time.Time      `json:"last_activity"`
}

func newSessionView(userID string, sess bot.Session) sessionView {
	view := sessionView{
		UserID:       userID,
		State:        sess.State,
		Awaiting:     sess.State.IsAwaiting(),
		Items:        make([]lineItemView, 0, len(sess.Order.LineItems)),
		DiningOption: string(sess.Order.DiningOption),
		TakeoutType:  string(sess.Order.TakeoutType),
		TotalPrice:   sess.Order.TotalPrice,
		TotalLabel:   utils.FormatCurrencyIDR(sess.Order.TotalPrice),
		LastActivity: sess.UpdatedAt,
	}
	for _, li := range sess.Order.LineItems {
		view.Items = append(view.Items, lineItemView{
			MenuID:   li.Item.ID,
			Name:     li.Item.Name,
			Quantity: li.Quantity,
			Subtotal: li.Subtotal(),
		})
	}
	if sess.Order.PendingItem != nil {
		view.PendingItem = sess.Order.PendingItem.Name
	}
	if sess.LastInquiredItem != nil {
		view.LastInquired = sess.LastInquiredItem.Name
	}
	return view
}

// GetSession menampilkan sesi percakapan user untuk admin.
// user_id memakai kunci lengkap dengan prefix kanal, misalnya "tg:12345" atau "web:u1".
func (cc *ChatController) GetSession(c *gin.Context) {
	userID := c.Param("user_id")
	sess, ok := cc.Conversation.Store().Snapshot(userID)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, errors.New("session not found or expired"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session detail", newSessionView(userID, sess))
}

// ResetSession menghapus sesi user, percakapan berikutnya mulai dari awal
func (cc *ChatController) ResetSession(c *gin.Context) {
	userID := c.Param("user_id")
	cc.Conversation.Store().Expire(userID)
	utils.InfoLogger.Printf("Session %s reset by admin", userID)
	utils.RespondJSON(c, http.StatusOK, "Session reset", nil)
}
