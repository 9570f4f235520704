// pkg/backup/manager.go

package backup

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/netbootworks/ztpctl/pkg/shared"
	"github.com/netbootworks/ztpctl/pkg/ztp_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// TimestampLayout names archive directories; lexical order equals
// chronological order.
const TimestampLayout = "20060102-150405"

const manifestName = "manifest.yaml"

// Manifest records what an archive contains and where it came from, so a
// restore can target the original absolute paths.
type Manifest struct {
	Timestamp string            `yaml:"timestamp"`
	CreatedAt time.Time         `yaml:"created_at"`
	Paths     map[string]string `yaml:"paths"` // archive subdir -> original absolute path
}

// Archive is one immutable backup: created before any destructive action,
// read-only afterward.
type Archive struct {
	Timestamp string
	Dir       string
	Manifest  Manifest
}

// Manager creates and restores timestamped archives under BaseDir. It only
// ever appends new archives; existing ones are never mutated.
type Manager struct {
	BaseDir string
}

func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = shared.DefaultBackupDir
	}
	return &Manager{BaseDir: baseDir}
}

// Create snapshots the given directory trees into a new timestamped
// archive. Sources that don't exist are skipped (a fresh host has no unit
// directory yet); any copy failure fails the whole backup.
func (m *Manager) Create(rc *ztp_io.RuntimeContext, paths []string) (*Archive, error) {
	logger := otelzap.Ctx(rc.Ctx)

	ts := time.Now().Format(TimestampLayout)
	dir := filepath.Join(m.BaseDir, ts)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, cerr.Wrapf(err, "create archive directory %s", dir)
	}

	manifest := Manifest{
		Timestamp: ts,
		CreatedAt: time.Now(),
		Paths:     make(map[string]string),
	}

	for _, src := range paths {
		info, err := os.Stat(src)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Debug("Backup source does not exist, skipping", zap.String("path", src))
				continue
			}
			return nil, cerr.Wrapf(err, "stat %s", src)
		}
		if !info.IsDir() {
			return nil, cerr.Newf("backup source %s is not a directory", src)
		}

		subdir := filepath.Base(src)
		dest := filepath.Join(dir, subdir)
		if err := copyTree(src, dest); err != nil {
			return nil, cerr.Wrapf(err, "archive %s", src)
		}
		manifest.Paths[subdir] = src
		logger.Info("Archived directory",
			zap.String("source", src), zap.String("archive", dest))
	}

	data, err := yaml.Marshal(&manifest)
	if err != nil {
		return nil, cerr.Wrap(err, "marshal manifest")
	}
	if err := os.WriteFile(filepath.Join(dir, manifestName), data, 0600); err != nil {
		return nil, cerr.Wrap(err, "write manifest")
	}

	logger.Info("Backup created",
		zap.String("timestamp", ts), zap.Int("trees", len(manifest.Paths)))
	return &Archive{Timestamp: ts, Dir: dir, Manifest: manifest}, nil
}

// List returns archive timestamps, most recent first.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(m.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, cerr.Wrapf(err, "read backup directory %s", m.BaseDir)
	}

	var timestamps []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := time.Parse(TimestampLayout, e.Name()); err != nil {
			continue
		}
		timestamps = append(timestamps, e.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(timestamps)))
	return timestamps, nil
}

// Load reads an archive by timestamp; an empty timestamp selects the most
// recent archive.
func (m *Manager) Load(ctx context.Context, timestamp string) (*Archive, error) {
	if timestamp == "" {
		timestamps, err := m.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(timestamps) == 0 {
			return nil, cerr.New("no backups found")
		}
		timestamp = timestamps[0]
	}

	dir := filepath.Join(m.BaseDir, timestamp)
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, cerr.Wrapf(err, "read manifest for backup %s", timestamp)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, cerr.Wrapf(err, "parse manifest for backup %s", timestamp)
	}
	return &Archive{Timestamp: timestamp, Dir: dir, Manifest: manifest}, nil
}

// Restore copies the archive's trees back to their original absolute
// paths, replacing current content. It never merges: each target is
// emptied first. Confirmation is the caller's responsibility.
func (m *Manager) Restore(rc *ztp_io.RuntimeContext, timestamp string) error {
	logger := otelzap.Ctx(rc.Ctx)

	archive, err := m.Load(rc.Ctx, timestamp)
	if err != nil {
		return err
	}

	for subdir, original := range archive.Manifest.Paths {
		src := filepath.Join(archive.Dir, subdir)
		logger.Info("Restoring directory",
			zap.String("archive", src), zap.String("target", original))

		if err := EmptyDir(original); err != nil {
			return cerr.Wrapf(err, "clear %s before restore", original)
		}
		if err := copyTree(src, original); err != nil {
			return cerr.Wrapf(err, "restore %s", original)
		}
	}

	logger.Info("Restore complete", zap.String("timestamp", archive.Timestamp))
	return nil
}

// EmptyDir removes a directory's contents without removing the directory
// itself (mount points and ownership survive).
func EmptyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(dir, 0755)
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// copyTree copies src into dest recursively, preserving file modes and
// symlinks. dest is created if missing.
func copyTree(src, dest string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		switch {
		case info.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		case info.Mode()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		default:
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

func copyFile(src, dest string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
