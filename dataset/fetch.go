package dataset

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mizupe/appliedml/pkg/errors"
	"github.com/mizupe/appliedml/pkg/log"
)

// FetchSpec names a remote file and where to cache it.
type FetchSpec struct {
	URL      string
	Filename string // name inside the cache dir; derived from URL when empty
}

// Fetch downloads url into cacheDir and returns the local path. A file that
// already exists in the cache is reused without touching the network.
// Downloads go through a temp file and rename so a cancelled transfer never
// leaves a truncated cache entry.
func Fetch(ctx context.Context, url, cacheDir string) (string, error) {
	return fetch(ctx, FetchSpec{URL: url}, cacheDir)
}

// FetchAll downloads every spec concurrently into cacheDir, returning the
// local paths in spec order. The first failure cancels the remaining
// downloads.
func FetchAll(ctx context.Context, specs []FetchSpec, cacheDir string) ([]string, error) {
	paths := make([]string, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			p, err := fetch(ctx, spec, cacheDir)
			if err != nil {
				return err
			}
			paths[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func fetch(ctx context.Context, spec FetchSpec, cacheDir string) (string, error) {
	name := spec.Filename
	if name == "" {
		name = filepath.Base(spec.URL)
	}
	if name == "" || name == "." || name == "/" {
		return "", errors.NewValueError("dataset.Fetch", "cannot derive filename from URL "+spec.URL)
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create cache dir")
	}

	dest := filepath.Join(cacheDir, name)
	if _, err := os.Stat(dest); err == nil {
		lg := log.With("dataset")
		lg.Debug().Str("path", dest).Msg("cache hit")
		return dest, nil
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.URL, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to build request")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "download failed for %s", spec.URL)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf("download failed for %s: status %s", spec.URL, resp.Status)
	}

	tmp, err := os.CreateTemp(cacheDir, name+".download-*")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp file")
	}
	written, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrapf(err, "download failed for %s", spec.URL)
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		os.Remove(tmp.Name())
		return "", errors.Newf("short download for %s: got %d of %d bytes", spec.URL, written, resp.ContentLength)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrap(err, "failed to move download into cache")
	}

	lg := log.With("dataset")

	lg.Info().
		Str("url", spec.URL).
		Str("path", dest).
		Int64("bytes", written).
		Int64(log.DurationMsKey, time.Since(start).Milliseconds()).
		Msg("downloaded dataset")
	return dest, nil
}
