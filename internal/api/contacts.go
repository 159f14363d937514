package api

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"time"

	"whatsapp-engine/internal/models"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contacts ContactStore
}

func NewContactHandler(contacts ContactStore) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

func (h *ContactHandler) GetContacts(c *gin.Context) {
	contacts, err := h.contacts.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	// Return empty array instead of null
	if contacts == nil {
		contacts = []models.Contact{}
	}
	c.JSON(http.StatusOK, contacts)
}

type UpdateContactRequest struct {
	Name string `json:"name"`
	Tags string `json:"tags"`
}

func (h *ContactHandler) UpdateContact(c *gin.Context) {
	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.contacts.Update(c.Request.Context(), c.Param("waId"), req.Name, req.Tags); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Contact updated"})
}

type CreateContactRequest struct {
	WaID string `json:"wa_id" binding:"required"`
	Name string `json:"name"`
	Tags string `json:"tags"`
}

func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.contacts.Upsert(c.Request.Context(), models.Contact{WaID: req.WaID, Name: req.Name, Tags: req.Tags})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "Contact created", "wa_id": req.WaID})
}

func (h *ContactHandler) DeleteContact(c *gin.Context) {
	if err := h.contacts.Delete(c.Request.Context(), c.Param("waId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Contact deleted"})
}

func (h *ContactHandler) ExportContacts(c *gin.Context) {
	contacts, err := h.contacts.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"WhatsApp ID", "Name", "Tags", "Last Inbound At", "Created At"})
	for _, ct := range contacts {
		lastInbound := ""
		if ct.LastInboundAt != nil {
			lastInbound = ct.LastInboundAt.UTC().Format(time.RFC3339)
		}
		_ = w.Write([]string{ct.WaID, ct.Name, ct.Tags, lastInbound, ct.CreatedAt.UTC().Format(time.RFC3339)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=contacts.csv")
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
