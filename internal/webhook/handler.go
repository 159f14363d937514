package webhook

import (
	"net/http"

	"whatsapp-engine/internal/config"
	"whatsapp-engine/pkg/logger"
	"whatsapp-engine/pkg/models"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Config   *config.Config
	Ingestor *Ingestor
}

func NewHandler(cfg *config.Config, ingestor *Ingestor) *Handler {
	return &Handler{
		Config:   cfg,
		Ingestor: ingestor,
	}
}

func (h *Handler) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "" || token == "" {
		c.Status(http.StatusBadRequest)
		return
	}
	if mode != "subscribe" || token != h.Config.VerifyToken {
		c.Status(http.StatusForbidden)
		return
	}
	logger.Info().Msg("Webhook verified successfully")
	c.String(http.StatusOK, challenge)
}

// HandleMessage acknowledges every well-formed delivery with 200 so the
// provider does not retry items that were already stored.
func (h *Handler) HandleMessage(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		logger.Warn().Err(err).Msg("Error binding webhook JSON")
		c.Status(http.StatusBadRequest)
		return
	}

	res, err := h.Ingestor.Ingest(c.Request.Context(), payload)
	if err != nil {
		logger.Error().Err(err).Int("skipped", res.Skipped).Msg("Webhook processed with errors")
	}
	logger.Debug().Int("messages", res.Messages).Int("statuses", res.Statuses).Msg("Webhook processed")
	c.Status(http.StatusOK)
}
