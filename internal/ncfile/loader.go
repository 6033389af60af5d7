package ncfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// programExts lists the extensions picked up when a directory is given.
var programExts = map[string]bool{
	".nc": true, ".ngc": true, ".tap": true, ".cnc": true, ".gcode": true, ".txt": true,
}

// Loader reads program files from disk.
type Loader struct {
	jobs   int
	logger *zap.Logger
}

// NewLoader creates a loader reading up to jobs files at once.
func NewLoader(jobs int, logger *zap.Logger) *Loader {
	if jobs < 1 {
		jobs = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{jobs: jobs, logger: logger}
}

// Load reads every path, expanding directories to the program files they
// contain. The result keeps argument order; files inside one directory are
// sorted by name.
func (l *Loader) Load(ctx context.Context, paths []string) ([]NCFile, error) {
	expanded, err := l.expand(paths)
	if err != nil {
		return nil, err
	}
	if len(expanded) == 0 {
		return nil, nil
	}

	files := make([]NCFile, len(expanded))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.jobs)

	for i, path := range expanded {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			files[i] = New(filepath.Base(path), data)
			l.logger.Debug("loaded program",
				zap.String("path", path),
				zap.Int("bytes", len(data)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (l *Loader) expand(paths []string) ([]string, error) {
	var out []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("path error: %w", err)
		}
		if !info.IsDir() {
			out = append(out, path)
			continue
		}

		var inDir []string
		err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				return nil
			}
			if programExts[strings.ToLower(filepath.Ext(p))] {
				inDir = append(inDir, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(inDir)
		l.logger.Debug("expanded directory",
			zap.String("dir", path),
			zap.Int("files", len(inDir)))
		out = append(out, inDir...)
	}
	return out, nil
}
