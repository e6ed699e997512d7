package metrics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// StoragePaths locates the files a health report measures.
type StoragePaths struct {
	DatabasePath string
	ExportDir    string
}

// Health is the process and storage report shown to admins.
type Health struct {
	AllocMB    uint64
	SysMB      uint64
	NumGC      uint32
	Goroutines int

	// DatabaseSize counts the SQLite file with its -wal and -shm companions.
	DatabaseSize  string
	StoredPlans   int
	ExportSize    string
	ExportedPlans int
}

// Health reports memory use, the size of the local database, the number of
// mirrored plans and the state of the plan export directory.
func (s *Store) Health(ctx context.Context, paths StoragePaths) (Health, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	h := Health{
		AllocMB:      m.Alloc / 1024 / 1024,
		SysMB:        m.Sys / 1024 / 1024,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
		DatabaseSize: formatBytes(databaseSize(paths.DatabasePath)),
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meal_plans`).Scan(&h.StoredPlans); err != nil {
		return Health{}, fmt.Errorf("failed to count stored plans: %w", err)
	}

	exports, size := exportStats(paths.ExportDir)
	h.ExportedPlans = exports
	h.ExportSize = formatBytes(size)
	return h, nil
}

func databaseSize(path string) int64 {
	if path == "" {
		return 0
	}
	var size int64
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if info, err := os.Stat(p); err == nil {
			size += info.Size()
		}
	}
	return size
}

// exportStats counts exported plan files and their total size. A missing
// directory reports zero.
func exportStats(dir string) (int, int64) {
	if dir == "" {
		return 0, 0
	}
	matches, err := filepath.Glob(filepath.Join(dir, "plan_*.json"))
	if err != nil {
		return 0, 0
	}
	var size int64
	for _, p := range matches {
		if info, err := os.Stat(p); err == nil {
			size += info.Size()
		}
	}
	return len(matches), size
}

func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
