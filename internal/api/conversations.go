package api

import (
	"net/http"
	"strconv"

	"whatsapp-engine/internal/message"

	"github.com/gin-gonic/gin"
)

type ConversationHandler struct {
	deps Deps
}

func NewConversationHandler(d Deps) *ConversationHandler {
	return &ConversationHandler{deps: d}
}

// GetConversation returns the window snapshot and the classified thread
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	waID := c.Param("waId")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}

	records, err := h.deps.Messages.ListByContact(c.Request.Context(), waID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	name, err := h.deps.Contacts.DisplayName(c.Request.Context(), waID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contact_id": waID,
		"name":       name,
		"window":     h.deps.Composer.Window(waID, h.deps.now()),
		"messages":   message.ClassifyAll(records),
	})
}

func (h *ConversationHandler) GetWindow(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Composer.Window(c.Param("waId"), h.deps.now()))
}

type SendTextRequest struct {
	To   string `json:"to" binding:"required"`
	Body string `json:"body"`
}

// SendText sends free-form text; a closed window answers 409
func (h *ConversationHandler) SendText(c *gin.Context) {
	var req SendTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := h.deps.now()
	r, err := h.deps.Composer.SendText(c.Request.Context(), req.To, req.Body, now)
	if err != nil {
		respondError(c, err)
		return
	}

	classified := message.Classify(r)
	snapshot := h.deps.Composer.Window(req.To, now)
	if h.deps.Notifier != nil {
		h.deps.Notifier.NotifyMessage(classified, snapshot)
	}
	c.JSON(http.StatusOK, gin.H{"message": classified, "window": snapshot})
}
