package utils

import "regexp"

var markdownV2Reserved = regexp.MustCompile(`[_*\[\]()~>#+\-=|{}.!]`)

// EscapeMarkdownV2 backslash-escapes every character Telegram reserves in
// MarkdownV2 parse mode.
func EscapeMarkdownV2(text string) string {
	return markdownV2Reserved.ReplaceAllString(text, `\$0`)
}
