package controllers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amaumene/grabarr/internal/config"
	"github.com/amaumene/grabarr/internal/models"
	"github.com/amaumene/grabarr/internal/utils"
)

func newCleanupFixture(t *testing.T) (*CleanupController, *models.Database, string) {
	t.Helper()

	root := t.TempDir()
	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{DownloadDir: root, RetentionSeconds: 90}
	ctrl := NewCleanupController(cfg, db, utils.NewLogger("error"))
	ctrl.retention = 20 * time.Millisecond
	return ctrl, db, root
}

func TestScheduleCleanupRemovesArtifactAndFolder(t *testing.T) {
	ctrl, db, root := newCleanupFixture(t)

	jobDir := filepath.Join(root, "137abc123")
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		t.Fatal(err)
	}
	artifact := filepath.Join(jobDir, "clip.mp4")
	if err := writeFile(artifact, "data"); err != nil {
		t.Fatal(err)
	}

	record := &models.Job{Folder: "137abc123", Status: models.JobStatusCompleted}
	if err := db.CreateJob(record); err != nil {
		t.Fatal(err)
	}

	ctrl.ScheduleCleanup(artifact)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(jobDir); os.IsNotExist(err) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("job folder still present after retention window")
		}
		time.Sleep(10 * time.Millisecond)
	}

	got, err := db.GetJobByID(record.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.JobStatusReclaimed {
		t.Errorf("expected reclaimed status, got %q", got.Status)
	}
}

func TestRemoveArtifactToleratesMissingFile(t *testing.T) {
	ctrl, _, root := newCleanupFixture(t)

	// Already gone, e.g. removed by an orphan sweep. Must not panic or error.
	ctrl.removeArtifact(filepath.Join(root, "137abc123", "clip.mp4"))
}

func TestRemoveArtifactKeepsFolderWithOtherFiles(t *testing.T) {
	ctrl, _, root := newCleanupFixture(t)

	jobDir := filepath.Join(root, "137abc123")
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		t.Fatal(err)
	}
	artifact := filepath.Join(jobDir, "clip.mp4")
	if err := writeFile(artifact, "data"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(jobDir, "clip.en.srt"), "subs"); err != nil {
		t.Fatal(err)
	}

	ctrl.removeArtifact(artifact)

	if _, err := os.Stat(artifact); !os.IsNotExist(err) {
		t.Error("artifact should be gone")
	}
	if _, err := os.Stat(jobDir); err != nil {
		t.Error("folder with remaining files should survive")
	}
}

func TestSweepOrphansRemovesOnlyStaleFolders(t *testing.T) {
	ctrl, _, root := newCleanupFixture(t)

	stale := filepath.Join(root, "137old")
	fresh := filepath.Join(root, "137new")
	for _, dir := range []string{stale, fresh} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := writeFile(filepath.Join(root, "stray.txt"), "not a folder"); err != nil {
		t.Fatal(err)
	}

	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	if err := ctrl.SweepOrphans(); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale folder should be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh folder should survive")
	}
	if _, err := os.Stat(filepath.Join(root, "stray.txt")); err != nil {
		t.Error("plain files are not swept")
	}
}

func TestSweepOrphansMissingRootIsNoop(t *testing.T) {
	ctrl, _, root := newCleanupFixture(t)
	ctrl.downloadDir = filepath.Join(root, "does-not-exist")

	if err := ctrl.SweepOrphans(); err != nil {
		t.Errorf("missing download root should not error: %v", err)
	}
}

func TestSweepAgeFloor(t *testing.T) {
	ctrl, _, _ := newCleanupFixture(t)

	// 10x a short retention still clears the floor.
	ctrl.retention = time.Second
	if got := ctrl.sweepAge(); got != minSweepAge {
		t.Errorf("expected floor %v, got %v", minSweepAge, got)
	}

	ctrl.retention = 5 * time.Minute
	if got := ctrl.sweepAge(); got != 50*time.Minute {
		t.Errorf("expected 50m, got %v", got)
	}
}
