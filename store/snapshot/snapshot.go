/*
Package snapshot provides the file-backed persistence gateway.

PURPOSE:
  Persists the whole ledger as one JSON snapshot with a backup copy and an
  atomic replace, and loads it back with a two-tier fallback.

SAVE PROTOCOL:
  1. If a primary file exists, copy it over the backup file.
  2. Write the new snapshot to a temporary file next to the primary.
  3. Promote the temp file: os.Rename first (atomic on POSIX when source
     and target share a filesystem - they do, same directory), falling back
     to copy-then-delete for filesystems where rename fails.
  A crash mid-save leaves either the old primary intact or the old primary
  plus a stray temp file; the primary is never half-written.

LOAD PROTOCOL:
  Primary first; on a missing file, JSON parse failure, or an unknown
  format version, fall back to the backup; if both are unreadable the
  caller starts empty. Corruption detection is the parse itself plus the
  snapshot's version field.

CONCURRENCY:
  None here. The ledger store calls Save under its exclusive write lock,
  which is the design's single-writer guarantee. Exactly one process may
  own the files - concurrent writers from separate processes are
  unsupported.

SEE ALSO:
  - ledger/persistence.go: the Snapshot shape and Gateway contract
*/
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/warp/payroll-ledger/ledger"
)

// Gateway persists ledger snapshots to a primary file with a backup.
type Gateway struct {
	path       string
	backupPath string
	logger     *zap.Logger
}

// New creates a Gateway writing to path with backupPath as the fallback
// copy. Parent directories are created as needed.
func New(path, backupPath string, logger *zap.Logger) (*Gateway, error) {
	if path == "" || backupPath == "" {
		return nil, errors.New("snapshot: primary and backup paths are required")
	}
	if path == backupPath {
		return nil, errors.New("snapshot: primary and backup paths must differ")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, p := range []string{path, backupPath} {
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("snapshot: create %s: %w", dir, err)
			}
		}
	}
	return &Gateway{path: path, backupPath: backupPath, logger: logger}, nil
}

// Save writes the snapshot durably, preserving the previous snapshot as the
// backup file.
func (g *Gateway) Save(snap ledger.Snapshot) error {
	snap.Version = ledger.SnapshotFormatVersion

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: marshal: %w", err)
	}

	if _, statErr := os.Stat(g.path); statErr == nil {
		if err := copyFile(g.path, g.backupPath); err != nil {
			return fmt.Errorf("snapshot: backup: %w", err)
		}
	}

	tmp := g.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("snapshot: write temp: %w", err)
	}
	if err := g.promote(tmp); err != nil {
		return fmt.Errorf("snapshot: promote: %w", err)
	}
	return nil
}

// promote replaces the primary file with tmp, atomically when the
// filesystem allows it.
func (g *Gateway) promote(tmp string) error {
	renameErr := os.Rename(tmp, g.path)
	if renameErr == nil {
		return nil
	}
	// Rename can fail on exotic mounts; degrade to copy-then-delete, which
	// loses atomicity but still converges. Load's backup fallback covers a
	// crash inside this window.
	g.logger.Warn("atomic rename failed, copying instead",
		zap.String("path", g.path), zap.Error(renameErr))
	if err := copyFile(tmp, g.path); err != nil {
		return err
	}
	if err := os.Remove(tmp); err != nil {
		g.logger.Warn("could not remove temp snapshot", zap.String("path", tmp), zap.Error(err))
	}
	return nil
}

// Load reads the primary snapshot, falling back to the backup. The returned
// error means neither file held a usable snapshot.
func (g *Gateway) Load() (ledger.Snapshot, error) {
	snap, primaryErr := decodeFile(g.path)
	if primaryErr == nil {
		return snap, nil
	}
	if !os.IsNotExist(primaryErr) {
		g.logger.Warn("primary snapshot unreadable, trying backup",
			zap.String("path", g.path), zap.Error(primaryErr))
	}

	snap, backupErr := decodeFile(g.backupPath)
	if backupErr == nil {
		g.logger.Info("recovered ledger state from backup snapshot",
			zap.String("path", g.backupPath))
		return snap, nil
	}

	return ledger.Snapshot{}, fmt.Errorf("primary: %v; backup: %v", primaryErr, backupErr)
}

func decodeFile(path string) (ledger.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ledger.Snapshot{}, err
	}
	var snap ledger.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if snap.Version > ledger.SnapshotFormatVersion {
		return ledger.Snapshot{}, fmt.Errorf("decode %s: unsupported format version %d", path, snap.Version)
	}
	return snap, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
