package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/models"
)

const (
	// partSuffix marks files still being written. The final name only ever
	// appears through the rename at the end of a transfer.
	partSuffix = ".part"

	chunkSize        = 1 << 20
	headerTimeout    = 60 * time.Second
	progressInterval = 150 * time.Millisecond
)

// Request describes a single download.
type Request struct {
	URL       string
	Folder    string
	Filename  string // optional override, used instead of header/URL detection
	Overwrite bool
}

// Fetcher downloads model files into a folder map with resume support.
type Fetcher struct {
	folders *models.FolderMap
	tokens  Tokens
	client  *http.Client
}

// NewFetcher creates a Fetcher writing into folders, authenticating with
// tokens where the host calls for it.
func NewFetcher(folders *models.FolderMap, tokens Tokens) *Fetcher {
	return &Fetcher{
		folders: folders,
		tokens:  tokens,
		client: &http.Client{
			Transport: &http.Transport{ResponseHeaderTimeout: headerTimeout},
		},
	}
}

// Folders returns the folder map the fetcher writes into.
func (f *Fetcher) Folders() *models.FolderMap {
	return f.folders
}

// Fetch downloads req.URL into the folder mapped to req.Folder and returns
// the final path. An interrupted transfer leaves a .part file next to the
// destination and is resumed with a byte-range request on the next attempt.
//
// Resume is best effort: a server that honors Range with wrong bytes is not
// detected, since no integrity check is performed.
func (f *Fetcher) Fetch(ctx context.Context, req Request, onProgress ProgressFunc) (string, error) {
	if onProgress == nil {
		onProgress = func(ProgressEvent) {}
	}

	dir, err := f.folders.Resolve(req.Folder)
	if err != nil {
		return "", err
	}

	auth := f.tokens.HeadersFor(req.URL)

	// Probe: resolve final URL, sniff filename and size. Only the headers
	// are consumed.
	probe, err := f.get(ctx, req.URL, auth)
	if err != nil {
		return "", fmt.Errorf("probe failed: %w", err)
	}

	name := req.Filename
	if name == "" {
		name = filenameFromContentDisposition(probe.Header.Get("Content-Disposition"))
	}
	if name == "" {
		name = filenameFromURL(req.URL)
	}
	name = safeFilename(name)

	// The probe is never range-restricted, so its content length is the
	// full size regardless of any partial bytes on disk.
	total := probe.ContentLength
	probe.Body.Close()

	dest := filepath.Join(dir, name)
	part := dest + partSuffix

	if info, err := os.Stat(dest); err == nil {
		if !req.Overwrite {
			onProgress(ProgressEvent{Filename: name, Phase: PhaseSkip, Bytes: info.Size(), Total: info.Size()})
			return dest, nil
		}
		if err := os.Remove(dest); err != nil {
			return "", fmt.Errorf("failed to remove existing file: %w", err)
		}
	}

	var existing int64
	if info, err := os.Stat(part); err == nil {
		existing = info.Size()
	}

	headers := make(map[string]string, len(auth)+1)
	for k, v := range auth {
		headers[k] = v
	}
	if existing > 0 {
		headers["Range"] = fmt.Sprintf("bytes=%d-", existing)
	}

	resp, err := f.get(ctx, req.URL, headers)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	// A 200 on a ranged request means the server ignored the Range header.
	// Discard the partial bytes and start over.
	if existing > 0 && resp.StatusCode == http.StatusOK {
		existing = 0
		onProgress(ProgressEvent{Filename: name, Phase: PhaseRestart, Total: total})
	}

	flags := os.O_CREATE | os.O_WRONLY
	if existing > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	out, err := os.OpenFile(part, flags, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", part, err)
	}

	onProgress(ProgressEvent{Filename: name, Phase: PhaseStart, Bytes: existing, Total: total})

	wrote := existing
	buf := make([]byte, chunkSize)
	ticker := newThrottle(progressInterval)

	for {
		if err := ctx.Err(); err != nil {
			out.Close()
			return "", err
		}

		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				out.Close()
				return "", fmt.Errorf("failed to write %s: %w", part, werr)
			}
			wrote += int64(n)
			if ticker.ready() {
				onProgress(ProgressEvent{Filename: name, Phase: PhaseDownloading, Bytes: wrote, Total: total})
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			out.Close()
			return "", fmt.Errorf("stream interrupted: %w", rerr)
		}
	}

	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", part, err)
	}
	if err := os.Rename(part, dest); err != nil {
		return "", fmt.Errorf("failed to finalize %s: %w", dest, err)
	}

	onProgress(ProgressEvent{Filename: name, Phase: PhaseDone, Bytes: wrote, Total: wrote})
	return dest, nil
}

// get issues a GET with the given headers and fails on non-2xx status.
// Redirects are followed by the underlying client.
func (f *Fetcher) get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	return resp, nil
}
