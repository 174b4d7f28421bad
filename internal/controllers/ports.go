package controllers

import (
	"context"

	"github.com/amaumene/grabarr/internal/models"
	"github.com/amaumene/grabarr/internal/services/ytdlp"
)

// Prober is the slice of the extraction engine that resolves a catalog.
type Prober interface {
	Probe(ctx context.Context, sourceURL string) (*ytdlp.VideoInfo, error)
}

// Fetcher is the slice of the extraction engine that performs transfers.
type Fetcher interface {
	Fetch(ctx context.Context, sourceURL string, opts ytdlp.FetchOptions) (*ytdlp.FetchResult, error)
}

// Transport is the slice of the chat transport the controllers need.
type Transport interface {
	Reply(chatID int64, text string)
	ReplyMarkdown(chatID int64, text string)
	ReplyKeyboard(chatID int64, text string, choices []string, rowWidth int)
	SendVideo(chatID int64, path, caption string) error
	SendAudio(chatID int64, path, title string) error
}

// JobRunner executes a resolved download job for a chat.
type JobRunner interface {
	Execute(ctx context.Context, chatID int64, job *models.DownloadJob)
}
