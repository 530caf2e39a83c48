package http

import (
	"net/http"
	"strings"

	"unlistedtube/internal/core/domain"
	"unlistedtube/internal/core/ports"
	"unlistedtube/pkg/errors"
	"unlistedtube/pkg/validation"

	"github.com/gin-gonic/gin"
)

var _ ports.VideoHTTPHandler = (*VideoHandler)(nil)

type VideoHandler struct {
	videoService ports.VideoService
}

func NewVideoHandler(videoService ports.VideoService) *VideoHandler {
	return &VideoHandler{
		videoService: videoService,
	}
}

// SetupRoutes mounts /videos behind the given session gate.
func (h *VideoHandler) SetupRoutes(router gin.IRouter, sessionGate gin.HandlerFunc) {
	videos := router.Group("/videos", sessionGate)
	{
		videos.GET("", h.ListVideos)
		videos.POST("", h.AddVideo)
	}
}

type AddVideoRequest struct {
	YouTubeID string `json:"youtubeId"`
	Title     string `json:"title"`
	URL       string `json:"url"`
}

// videoView adds the derived player links to a stored video. They are
// computed on every response and never persisted.
type videoView struct {
	*domain.Video
	ThumbnailURL string `json:"thumbnailUrl"`
	EmbedURL     string `json:"embedUrl"`
}

func newVideoView(v *domain.Video) videoView {
	return videoView{Video: v, ThumbnailURL: v.ThumbnailURL(), EmbedURL: v.EmbedURL()}
}

func (h *VideoHandler) ListVideos(c *gin.Context) {
	videos, err := h.videoService.ListVideos(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	views := make([]videoView, 0, len(videos))
	for _, v := range videos {
		views = append(views, newVideoView(v))
	}
	c.JSON(http.StatusOK, views)
}

func (h *VideoHandler) AddVideo(c *gin.Context) {
	var req AddVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.NewValidationError("invalid request format"))
		return
	}

	youtubeID := req.YouTubeID
	if strings.TrimSpace(youtubeID) == "" && strings.TrimSpace(req.URL) != "" {
		id, err := validation.ExtractYouTubeID(req.URL)
		if err != nil {
			_ = c.Error(errors.NewValidationError(err.Error()))
			return
		}
		youtubeID = id
	}

	video, err := h.videoService.AddVideo(c.Request.Context(), youtubeID, req.Title)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, newVideoView(video))
}
