package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// FilesHandler serves produced artifacts by opaque job-folder name
type FilesHandler struct {
	downloadDir string
	logger      *logrus.Logger
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(downloadDir string, logger *logrus.Logger) *FilesHandler {
	return &FilesHandler{
		downloadDir: downloadDir,
		logger:      logger,
	}
}

// ServeHTTP serves the first file found inside the requested folder under the
// download root. An absent folder, an empty folder, or a folder emptied by a
// concurrent cleanup all resolve to 404.
func (h *FilesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	folder := strings.TrimPrefix(r.URL.Path, "/files/")
	if folder == "" || strings.ContainsAny(folder, `/\`) || strings.Contains(folder, "..") {
		http.NotFound(w, r)
		return
	}

	dir := filepath.Join(h.downloadDir, folder)
	entries, err := os.ReadDir(dir)
	if err != nil {
		h.logger.WithField("folder", folder).Debug("Requested folder not found")
		http.NotFound(w, r)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// A cleanup firing between the listing and this serve may have
		// removed the file; ServeFile turns that into a 404.
		http.ServeFile(w, r, filepath.Join(dir, entry.Name()))
		return
	}

	http.NotFound(w, r)
}
