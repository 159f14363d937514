package api

import (
	"errors"
	"net/http"

	"whatsapp-engine/internal/message"
	"whatsapp-engine/internal/models"
	"whatsapp-engine/internal/template"
	"whatsapp-engine/pkg/logger"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	deps Deps
}

func NewTemplateHandler(d Deps) *TemplateHandler {
	return &TemplateHandler{deps: d}
}

// SyncTemplates fetches templates from Meta and stores them locally
func (h *TemplateHandler) SyncTemplates(c *gin.Context) {
	if h.deps.Source == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "template source not configured"})
		return
	}

	records, err := h.deps.Source.GetTemplates(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch templates from Meta")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch templates from Meta: " + err.Error()})
		return
	}

	rows := make([]models.Template, 0, len(records))
	for _, r := range records {
		components := "[]"
		if len(r.Components) > 0 {
			components = string(r.Components)
		}
		rows = append(rows, models.Template{
			ID:         r.ID,
			Name:       r.Name,
			Language:   r.Language,
			Category:   r.Category,
			Status:     r.Status,
			Components: components,
		})
	}
	if err := h.deps.Templates.Upsert(c.Request.Context(), rows); err != nil {
		respondError(c, err)
		return
	}

	logger.Info().Int("count", len(rows)).Msg("Templates synced")
	c.JSON(http.StatusOK, gin.H{"status": "Templates synced", "count": len(rows)})
}

// GetTemplates returns the approved templates from the local catalog
func (h *TemplateHandler) GetTemplates(c *gin.Context) {
	defs, err := h.deps.Templates.Approved(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if defs == nil {
		defs = []template.Definition{}
	}
	c.JSON(http.StatusOK, defs)
}

// displayName looks up the contact name used to prefill {{1}}
func (h *TemplateHandler) displayName(c *gin.Context, waID string) (string, error) {
	if waID == "" {
		return "", nil
	}
	return h.deps.Contacts.DisplayName(c.Request.Context(), waID)
}

func (h *TemplateHandler) GetSlots(c *gin.Context) {
	def, err := h.deps.Templates.FindApproved(c.Request.Context(), c.Param("name"), c.Query("language"))
	if err != nil {
		respondError(c, err)
		return
	}
	name, err := h.displayName(c, c.Query("wa_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	slots := template.ExtractFor(def, name)

	c.JSON(http.StatusOK, gin.H{
		"template": def,
		"slots":    slots,
		"count":    slots.Count(),
		"preview":  template.Previews(def, slots),
	})
}

// SlotValues are the user-entered values for each scope, keyed by index
type SlotValues struct {
	Language string           `json:"language"`
	Body     map[int]string   `json:"body"`
	Cards    []map[int]string `json:"cards"`
}

func (v SlotValues) input(displayName string) template.Input {
	return template.Input{Body: v.Body, Cards: v.Cards, DisplayName: displayName}
}

type PreviewRequest struct {
	WaID string `json:"wa_id"`
	SlotValues
}

// Preview renders the template with the given values and reports which
// slots are still blank.
func (h *TemplateHandler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	def, err := h.deps.Templates.FindApproved(c.Request.Context(), c.Param("name"), req.Language)
	if err != nil {
		respondError(c, err)
		return
	}
	name, err := h.displayName(c, req.WaID)
	if err != nil {
		respondError(c, err)
		return
	}
	slots := req.input(name).SlotsFor(def)

	missing := []template.SlotRef{}
	var incomplete *template.MissingSlotsError
	if _, err := template.Validate(slots); errors.As(err, &incomplete) {
		missing = incomplete.Missing
	}

	c.JSON(http.StatusOK, gin.H{
		"slots":   slots,
		"preview": template.Previews(def, slots),
		"ready":   len(missing) == 0,
		"missing": missing,
	})
}

type SendTemplateRequest struct {
	To   string `json:"to" binding:"required"`
	Name string `json:"name" binding:"required"`
	SlotValues
}

// SendTemplate binds and sends an approved template. Templates are allowed
// whether or not the conversation window is open.
func (h *TemplateHandler) SendTemplate(c *gin.Context) {
	var req SendTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	def, err := h.deps.Templates.FindApproved(c.Request.Context(), req.Name, req.Language)
	if err != nil {
		respondError(c, err)
		return
	}
	name, err := h.displayName(c, req.To)
	if err != nil {
		respondError(c, err)
		return
	}

	now := h.deps.now()
	r, binding, err := h.deps.Composer.SendTemplate(c.Request.Context(), req.To, def, req.input(name), now)
	if err != nil {
		respondError(c, err)
		return
	}

	classified := message.Classify(r)
	snapshot := h.deps.Composer.Window(req.To, now)
	if h.deps.Notifier != nil {
		h.deps.Notifier.NotifyMessage(classified, snapshot)
	}
	c.JSON(http.StatusOK, gin.H{"message": classified, "binding": binding, "window": snapshot})
}

type BroadcastRequest struct {
	Name     string   `json:"template_name" binding:"required"`
	Contacts []string `json:"contacts" binding:"required"`
	SlotValues
}

type broadcastFailure struct {
	WaID  string `json:"wa_id"`
	Error string `json:"error"`
}

// SendBroadcast sends one template to many contacts. Each recipient gets
// its own binding so {{1}} defaults to that contact's name.
func (h *TemplateHandler) SendBroadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	def, err := h.deps.Templates.FindApproved(c.Request.Context(), req.Name, req.Language)
	if err != nil {
		respondError(c, err)
		return
	}

	sent := 0
	failed := []broadcastFailure{}
	for _, waID := range req.Contacts {
		name, err := h.displayName(c, waID)
		if err == nil {
			_, _, err = h.deps.Composer.SendTemplate(c.Request.Context(), waID, def, req.input(name), h.deps.now())
		}
		if err != nil {
			logger.Warn().Err(err).Str("wa_id", waID).Str("template", def.Name).Msg("Broadcast send failed")
			failed = append(failed, broadcastFailure{WaID: waID, Error: err.Error()})
			continue
		}
		sent++
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "Broadcast processed",
		"sent_to": sent,
		"total":   len(req.Contacts),
		"failed":  failed,
	})
}
