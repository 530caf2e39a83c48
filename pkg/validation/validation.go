package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"unlistedtube/pkg/utils"
)

var (
	ErrYouTubeIDRequired = errors.New("youtubeId is required")
	ErrTitleRequired     = errors.New("title is required")
)

// ExtractYouTubeID returns the "v" query parameter of a pasted watch URL.
// The value is not checked against YouTube's id syntax; any non-empty value
// is accepted.
func ExtractYouTubeID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("URL is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid YouTube URL")
	}
	id := strings.TrimSpace(u.Query().Get("v"))
	if id == "" {
		return "", fmt.Errorf("invalid YouTube URL")
	}
	return id, nil
}

// ValidateVideoInput reports which required field is blank. A field made only
// of whitespace and control characters counts as blank. Values are not
// modified; callers store them as received.
func ValidateVideoInput(youtubeID, title string) error {
	if utils.SanitizeString(youtubeID) == "" {
		return ErrYouTubeIDRequired
	}
	if utils.SanitizeString(title) == "" {
		return ErrTitleRequired
	}
	return nil
}
