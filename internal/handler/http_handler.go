package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-live/overlay-service/internal/assetstore"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/domain"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/service"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/log"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/middleware"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/response"
)

const uploadField = "file"

// ContentLoader reads stored asset bytes for the public content routes.
type ContentLoader interface {
	LoadAssetFileSafely(ctx context.Context, a domain.Asset) (assetstore.Content, bool)
	LoadPreviewSafely(ctx context.Context, a domain.Asset) (assetstore.Content, bool)
}

// Handler handles HTTP requests for overlay channels.
type Handler struct {
	directory      service.DirectoryService
	scripts        service.ScriptAssetService
	content        ContentLoader
	authMiddleware *middleware.AuthMiddleware
	maxUploadBytes int64
}

// NewHandler creates a new HTTP handler. scripts may be nil when no
// database is configured; the script routes are then not registered.
func NewHandler(
	directory service.DirectoryService,
	scripts service.ScriptAssetService,
	content ContentLoader,
	authMiddleware *middleware.AuthMiddleware,
	maxUploadBytes int64,
) *Handler {
	return &Handler{
		directory:      directory,
		scripts:        scripts,
		content:        content,
		authMiddleware: authMiddleware,
		maxUploadBytes: maxUploadBytes,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	auth := h.authMiddleware.RequireAuth()

	channel := api.Group("/channels/:broadcaster")
	{
		// Public routes
		channel.GET("/assets/visible", h.ListVisible)
		channel.GET("/assets/:id/content", h.GetContent)
		channel.GET("/assets/:id/preview", h.GetPreview)

		// Admin routes
		manage := channel.Group("", auth, h.requireManage)
		manage.GET("/assets", h.ListForAdmin)
		manage.POST("/assets", h.CreateAsset)
		manage.PUT("/assets/:id/transform", h.UpdateTransform)
		manage.PUT("/assets/:id/visibility", h.UpdateVisibility)
		manage.DELETE("/assets/:id", h.DeleteAsset)

		if h.scripts != nil {
			manage.GET("/scripts", h.ListScripts)
			manage.POST("/scripts", h.CreateScript)
			manage.GET("/scripts/:id", h.GetScript)
			manage.PUT("/scripts/:id", h.UpdateScript)
			manage.DELETE("/scripts/:id", h.DeleteScript)
		}

		// Broadcaster-only routes
		owner := channel.Group("/admins", auth, h.requireBroadcaster)
		owner.GET("", h.ListAdmins)
		owner.POST("", h.AddAdmin)
		owner.DELETE("/:username", h.RemoveAdmin)
	}

	api.GET("/admin/channels", auth, h.AdminChannels)
}

func (h *Handler) requireManage(c *gin.Context) {
	if !h.directory.CanManage(c.Param("broadcaster"), middleware.GetUsername(c)) {
		response.Forbidden(c, "not an admin of this channel")
		return
	}
	c.Next()
}

func (h *Handler) requireBroadcaster(c *gin.Context) {
	if !h.directory.IsBroadcaster(c.Param("broadcaster"), middleware.GetUsername(c)) {
		response.Forbidden(c, "only the broadcaster can manage admins")
		return
	}
	c.Next()
}

// ListForAdmin lists all assets, hidden ones included.
func (h *Handler) ListForAdmin(c *gin.Context) {
	assets := h.directory.ListForAdmin(c.Request.Context(), c.Param("broadcaster"))
	response.Success(c, domain.NewAssetViews(assets))
}

// ListVisible lists the assets shown on the overlay.
func (h *Handler) ListVisible(c *gin.Context) {
	assets := h.directory.ListVisible(c.Request.Context(), c.Param("broadcaster"))
	response.Success(c, domain.NewAssetViews(assets))
}

// CreateAsset accepts a multipart image upload.
func (h *Handler) CreateAsset(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	file, header, err := c.Request.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.PayloadTooLarge(c, "upload exceeds the size limit")
			return
		}
		response.BadRequest(c, "missing upload field \""+uploadField+"\"")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		l.Warn().Err(err).Msg("failed to read upload")
		response.BadRequest(c, "failed to read upload")
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		name = header.Filename
	}

	asset, err := h.directory.CreateAsset(ctx, c.Param("broadcaster"), domain.Upload{
		Name:        name,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.writeAssetError(c, err, "failed to create asset")
		return
	}

	response.Created(c, domain.NewAssetView(asset))
}

// UpdateTransform replaces an asset's geometry.
func (h *Handler) UpdateTransform(c *gin.Context) {
	var req domain.TransformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	asset, err := h.directory.UpdateTransform(c.Request.Context(), c.Param("broadcaster"), c.Param("id"), req.ToTransform())
	if err != nil {
		h.writeAssetError(c, err, "failed to update asset")
		return
	}
	response.Success(c, domain.NewAssetView(asset))
}

// UpdateVisibility shows or hides an asset.
func (h *Handler) UpdateVisibility(c *gin.Context) {
	var req domain.VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	asset, err := h.directory.UpdateVisibility(c.Request.Context(), c.Param("broadcaster"), c.Param("id"), *req.Hidden)
	if err != nil {
		h.writeAssetError(c, err, "failed to update asset")
		return
	}
	response.Success(c, domain.NewAssetView(asset))
}

func (h *Handler) DeleteAsset(c *gin.Context) {
	if !h.directory.DeleteAsset(c.Request.Context(), c.Param("broadcaster"), c.Param("id")) {
		response.NotFound(c, "asset not found")
		return
	}
	response.NoContent(c)
}

// GetContent serves the stored bytes of an asset.
func (h *Handler) GetContent(c *gin.Context) {
	h.serve(c, h.content.LoadAssetFileSafely)
}

// GetPreview serves the generated preview of an asset.
func (h *Handler) GetPreview(c *gin.Context) {
	h.serve(c, h.content.LoadPreviewSafely)
}

func (h *Handler) serve(c *gin.Context, load func(context.Context, domain.Asset) (assetstore.Content, bool)) {
	ctx := c.Request.Context()

	asset, err := h.directory.GetAsset(ctx, c.Param("broadcaster"), c.Param("id"))
	if err != nil {
		response.NotFound(c, "asset not found")
		return
	}
	content, ok := load(ctx, asset)
	if !ok {
		response.NotFound(c, "content not found")
		return
	}

	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, content.MediaType, content.Data)
}

func (h *Handler) ListAdmins(c *gin.Context) {
	response.Success(c, h.directory.Admins(c.Request.Context(), c.Param("broadcaster")))
}

func (h *Handler) AddAdmin(c *gin.Context) {
	var req domain.AdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	broadcaster := c.Param("broadcaster")
	if h.directory.AddAdmin(ctx, broadcaster, req.Username) {
		response.Created(c, h.directory.Admins(ctx, broadcaster))
		return
	}
	response.Success(c, h.directory.Admins(ctx, broadcaster))
}

func (h *Handler) RemoveAdmin(c *gin.Context) {
	if !h.directory.RemoveAdmin(c.Request.Context(), c.Param("broadcaster"), c.Param("username")) {
		response.NotFound(c, "admin not found")
		return
	}
	response.NoContent(c)
}

// AdminChannels lists the channels the caller administers.
func (h *Handler) AdminChannels(c *gin.Context) {
	channels := h.directory.AdminChannelsFor(c.Request.Context(), middleware.GetUsername(c))
	response.Success(c, domain.AdminChannelsResponse{Channels: channels})
}

func (h *Handler) writeAssetError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrAssetNotFound):
		response.NotFound(c, "asset not found")
	case errors.Is(err, service.ErrInvalidImage), errors.Is(err, service.ErrInvalidUpload):
		response.BadRequest(c, err.Error())
	default:
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Str(log.FieldBroadcaster, c.Param("broadcaster")).Msg(msg)
		response.InternalError(c, msg)
	}
}
