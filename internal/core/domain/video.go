package domain

import "fmt"

type VideoID string

// Video is one bookmarked unlisted video. The JSON names are shared with the
// web client and must stay stable.
type Video struct {
	ID        VideoID `json:"_id" bson:"_id,omitempty"`
	YouTubeID string  `json:"youtubeId" bson:"youtubeId"`
	Title     string  `json:"title" bson:"title"`
}

// ThumbnailURL returns the medium-quality preview image used by the list view.
func (v *Video) ThumbnailURL() string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/mqdefault.jpg", v.YouTubeID)
}

// EmbedURL returns the player URL opened in the watch modal.
func (v *Video) EmbedURL() string {
	return fmt.Sprintf("https://www.youtube.com/embed/%s?autoplay=1&rel=0&modestbranding=1&enablejsapi=1", v.YouTubeID)
}
