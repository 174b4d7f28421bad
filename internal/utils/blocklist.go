package utils

import (
	"bufio"
	"os"
	"strings"
)

// Blocklist holds source URL fragments that are refused before probing
type Blocklist struct {
	terms []string
}

// LoadBlocklist loads blocklist terms from a file, one per line.
// A missing file yields an empty blocklist.
func LoadBlocklist(path string) (*Blocklist, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Blocklist{terms: []string{}}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var terms []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		term := strings.TrimSpace(scanner.Text())
		if term != "" && !strings.HasPrefix(term, "#") {
			terms = append(terms, term)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Blocklist{terms: terms}, nil
}

// IsBlocked checks if a source URL matches any blocklist term
// Returns (isBlocked, matchedTerm)
func (b *Blocklist) IsBlocked(sourceURL string) (bool, string) {
	urlLower := strings.ToLower(sourceURL)

	for _, term := range b.terms {
		if strings.Contains(urlLower, strings.ToLower(term)) {
			return true, term
		}
	}

	return false, ""
}
