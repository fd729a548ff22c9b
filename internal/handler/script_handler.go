package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-live/overlay-service/internal/domain"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/service"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/log"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/response"
)

// ListScripts lists a channel's code assets.
func (h *Handler) ListScripts(c *gin.Context) {
	scripts, err := h.scripts.List(c.Request.Context(), c.Param("broadcaster"))
	if err != nil {
		h.writeScriptError(c, err, "failed to list scripts")
		return
	}
	response.Success(c, scripts)
}

func (h *Handler) GetScript(c *gin.Context) {
	script, err := h.scripts.Get(c.Request.Context(), c.Param("broadcaster"), c.Param("id"))
	if err != nil {
		h.writeScriptError(c, err, "failed to get script")
		return
	}
	response.Success(c, script)
}

// CreateScript stores a new code asset.
func (h *Handler) CreateScript(c *gin.Context) {
	var req domain.CodeAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	script, err := h.scripts.Create(c.Request.Context(), c.Param("broadcaster"), &req)
	if err != nil {
		h.writeScriptError(c, err, "failed to create script")
		return
	}
	response.Created(c, script)
}

func (h *Handler) UpdateScript(c *gin.Context) {
	var req domain.CodeAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	script, err := h.scripts.Update(c.Request.Context(), c.Param("broadcaster"), c.Param("id"), &req)
	if err != nil {
		h.writeScriptError(c, err, "failed to update script")
		return
	}
	response.Success(c, script)
}

func (h *Handler) DeleteScript(c *gin.Context) {
	if err := h.scripts.Delete(c.Request.Context(), c.Param("broadcaster"), c.Param("id")); err != nil {
		h.writeScriptError(c, err, "failed to delete script")
		return
	}
	response.NoContent(c)
}

func (h *Handler) writeScriptError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrScriptAssetNotFound):
		response.NotFound(c, "script not found")
	case errors.Is(err, service.ErrInvalidScript):
		response.BadRequest(c, err.Error())
	default:
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Str(log.FieldBroadcaster, c.Param("broadcaster")).Msg(msg)
		response.InternalError(c, msg)
	}
}
