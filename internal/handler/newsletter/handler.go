package newsletter

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/internal/repository"
	"github.com/veracare/marketplace-api/pkg/httputil"
)

type Handler struct {
	outboxRepo repository.OutboxRepository
}

func NewHandler(outboxRepo repository.OutboxRepository) *Handler {
	return &Handler{outboxRepo: outboxRepo}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/newsletter", h.Subscribe)
}

type subscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Subscribe queues the welcome email. Delivery to the mailing list
// provider happens downstream of the broker.
func (h *Handler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, _ := json.Marshal(map[string]string{"email": req.Email})
	event := &model.OutboxEvent{
		EventType: model.EventNewsletterSubscribed,
		Payload:   payload,
	}
	if err := h.outboxRepo.Create(c.Request.Context(), event); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, gin.H{"email": req.Email})
}
