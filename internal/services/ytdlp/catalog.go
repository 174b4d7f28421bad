package ytdlp

import (
	"fmt"

	"github.com/amaumene/grabarr/internal/utils"
)

const (
	// AudioOnlySelector is the synthetic selector offered alongside video tiers
	AudioOnlySelector = "bestaudio"

	// AudioOnlyChoice is the presented label for the audio-only pick
	AudioOnlyChoice = "Audio only ID:" + AudioOnlySelector
)

// EncodingOption is one selectable quality tier
type EncodingOption struct {
	ID        string
	Label     string
	SizeBytes int64
}

// BuildCatalog reduces raw probe formats to one option per quality label.
// Formats without a video component are dropped. The first format seen per
// label with a strictly positive approximate size wins; labels whose every
// representative has unknown size are absent from the catalog entirely.
// First-seen label order is preserved.
func BuildCatalog(formats []Format) []EncodingOption {
	seen := make(map[string]bool)
	var options []EncodingOption

	for _, f := range formats {
		if f.VCodec == "" || f.VCodec == "none" {
			continue
		}
		if f.FormatNote == "" || f.FilesizeApprox <= 0 {
			continue
		}
		if seen[f.FormatNote] {
			continue
		}
		seen[f.FormatNote] = true
		options = append(options, EncodingOption{
			ID:        f.ID,
			Label:     f.FormatNote,
			SizeBytes: f.FilesizeApprox,
		})
	}

	return options
}

// ChoiceStrings renders catalog entries as keyboard choices, each carrying its
// encoding id as a trailing ID: token. A non-empty catalog gains the synthetic
// audio-only choice.
func ChoiceStrings(options []EncodingOption) []string {
	if len(options) == 0 {
		return nil
	}

	choices := make([]string, 0, len(options)+1)
	for _, opt := range options {
		choices = append(choices, fmt.Sprintf("%s - %s ID:%s", opt.Label, utils.ConvertSize(opt.SizeBytes), opt.ID))
	}
	return append(choices, AudioOnlyChoice)
}

// FormatLines renders every probed format for the /list command. The id rides
// in a code span so it survives MarkdownV2 escaping of the surrounding text.
func FormatLines(formats []Format) []string {
	lines := make([]string, 0, len(formats))
	for _, f := range formats {
		lines = append(lines, fmt.Sprintf("```ID:%s``` %s - %s", f.ID, f.Resolution, utils.ConvertSize(f.FilesizeApprox)))
	}
	return lines
}
