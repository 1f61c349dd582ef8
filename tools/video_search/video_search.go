package video_search

import (
	"context"

	"github.com/itsjustRohitch/ResourceScout/tools/video_search/models"
	"github.com/itsjustRohitch/ResourceScout/tools/video_search/youtube"
)

// VideoSearcher is the contract for video search providers.
type VideoSearcher interface {
	Discover(ctx context.Context, q string, k int) ([]models.Video, error)
}

type Provider string

const (
	YouTubeProvider Provider = "youtube"
)

type Error struct{ Msg string }

func (e *Error) Error() string { return e.Msg }

var ErrUnsupportedProvider = &Error{"unsupported provider"}

func NewVideoSearcher(provider Provider) (VideoSearcher, error) {
	switch provider {
	case YouTubeProvider:
		return youtube.NewSearch(), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
