package controller

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/stmiyata/seibi-backend/internal/errors"
	"github.com/stmiyata/seibi-backend/internal/middleware"
	"github.com/stmiyata/seibi-backend/pkg/lineworks"
)

type LineWorksController struct {
	client *lineworks.Client
}

func NewLineWorksController(client *lineworks.Client) *LineWorksController {
	return &LineWorksController{client: client}
}

// Callback acknowledges bot events from LINE WORKS. The body is
// verified against the X-WORKS-Signature header before being trusted.
// Inbound messages are logged only; the bot is send-only today.
// POST /api/lineworks/callback
func (ctrl *LineWorksController) Callback(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "リクエストの読み込みに失敗しました")
		return
	}

	signature := c.GetHeader("X-WORKS-Signature")
	if !ctrl.client.ValidateSignature(body, signature) {
		log.Warn("Bot callback with invalid signature", map[string]interface{}{
			"ip": c.ClientIP(),
		})
		apperrors.Unauthorized(c, "署名の検証に失敗しました")
		return
	}

	log.Info("Bot callback received", map[string]interface{}{
		"size": len(body),
	})

	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
