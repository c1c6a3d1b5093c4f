package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recap-video-gen/internal"
	"recap-video-gen/internal/logging"
	"recap-video-gen/internal/model"
	"recap-video-gen/internal/s3"
)

// FetchError is fatal to the owning job: a render never proceeds on a
// partially resolved asset.
type FetchError struct {
	URL    string
	Kind   model.AssetKind
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s asset %s: http %d", e.Kind, e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s asset %s: %v", e.Kind, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher resolves asset references (local path, http(s) URL, or
// s3://bucket/key) to local files. Remote background videos are cached
// by URL digest; voice audio is always fetched fresh because it is
// unique per script.
type Fetcher struct {
	cacheDir string
	maxAge   time.Duration
	http     *http.Client
	s3       s3.Client // nil when no bucket is configured
	log      *logging.Logger
}

func NewFetcher(cfg internal.Config, s3c s3.Client, log *logging.Logger) *Fetcher {
	return &Fetcher{
		cacheDir: cfg.CacheDir,
		maxAge:   cfg.CacheMaxAge,
		http:     &http.Client{},
		s3:       s3c,
		log:      log,
	}
}

// IsRemote reports whether ref needs fetching rather than being a
// local filesystem path.
func IsRemote(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "s3":
		return true
	}
	return false
}

// Resolve materializes ref as a local file. Local paths are returned
// unchanged with no copy. Remote refs land at destPath, which is owned
// by the calling job; for backgrounds a shared cache copy may satisfy
// the request without a network call.
func (f *Fetcher) Resolve(ctx context.Context, ref string, kind model.AssetKind, destPath string) (string, error) {
	if !IsRemote(ref) {
		return ref, nil
	}
	if kind == model.AssetBackground {
		if err := f.fetchBackground(ctx, ref, destPath); err != nil {
			return "", err
		}
		return destPath, nil
	}
	if err := f.download(ctx, ref, kind, destPath); err != nil {
		return "", err
	}
	return destPath, nil
}

func (f *Fetcher) fetchBackground(ctx context.Context, ref, destPath string) error {
	if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
		f.log.Warnf("assets: failed to create cache dir %s: %v", f.cacheDir, err)
	}

	cachePath := f.cachePath(ref)
	if f.cacheFresh(cachePath) {
		f.log.Infof("assets: using cached background video for %s", ref)
		if err := copyFile(cachePath, destPath); err == nil {
			return nil
		} else {
			f.log.Warnf("assets: cache copy failed, re-downloading: %v", err)
		}
	}

	if err := f.download(ctx, ref, model.AssetBackground, destPath); err != nil {
		return err
	}

	// Best-effort cache population. Concurrent jobs may race here;
	// last writer wins and entries are immutable, so redundant writes
	// are harmless.
	if err := copyFile(destPath, cachePath); err != nil {
		f.log.Warnf("assets: failed to cache background video: %v", err)
	} else {
		f.log.Infof("assets: background video cached at %s", cachePath)
	}
	return nil
}

// cachePath names the entry by hex digest of the source URL. Cache
// membership is just filename existence plus mtime age.
func (f *Fetcher) cachePath(ref string) string {
	h := sha256.Sum256([]byte(ref))
	return filepath.Join(f.cacheDir, hex.EncodeToString(h[:])+".mp4")
}

func (f *Fetcher) cacheFresh(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < f.maxAge
}

func (f *Fetcher) download(ctx context.Context, ref string, kind model.AssetKind, destPath string) error {
	u, err := url.Parse(ref)
	if err != nil {
		return &FetchError{URL: ref, Kind: kind, Err: err}
	}

	var body io.ReadCloser
	switch u.Scheme {
	case "s3":
		if f.s3 == nil {
			return &FetchError{URL: ref, Kind: kind, Err: fmt.Errorf("s3 reference but no bucket configured")}
		}
		key := strings.TrimPrefix(u.Path, "/")
		obj, err := f.s3.GetReader(ctx, key)
		if err != nil {
			return &FetchError{URL: ref, Kind: kind, Err: err}
		}
		body = obj.Reader
	default:
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return &FetchError{URL: ref, Kind: kind, Err: err}
		}
		resp, err := f.http.Do(req)
		if err != nil {
			return &FetchError{URL: ref, Kind: kind, Err: err}
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			return &FetchError{URL: ref, Kind: kind, Status: resp.StatusCode}
		}
		body = resp.Body
	}
	defer body.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return &FetchError{URL: ref, Kind: kind, Err: err}
	}
	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		os.Remove(destPath)
		return &FetchError{URL: ref, Kind: kind, Err: err}
	}
	if err := out.Close(); err != nil {
		os.Remove(destPath)
		return &FetchError{URL: ref, Kind: kind, Err: err}
	}

	f.log.Infof("assets: downloaded %s asset to %s", kind, destPath)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
