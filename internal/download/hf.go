package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"llmserver/internal/catalog"
	"llmserver/internal/common/fsutil"
)

// DefaultEndpoint is the public Hugging Face hub.
const DefaultEndpoint = "https://huggingface.co"

const incompleteSuffix = ".incomplete"

// HFFetcher downloads artifacts from a Hugging Face compatible hub. Data is
// written to <file>.incomplete and renamed once the body has been fully read.
// An existing .incomplete file is resumed with a Range request.
type HFFetcher struct {
	Endpoint         string
	Token            string
	Client           *http.Client
	ProgressInterval time.Duration
	Logger           zerolog.Logger
}

func (f *HFFetcher) endpoint() string {
	if f.Endpoint == "" {
		return DefaultEndpoint
	}
	return f.Endpoint
}

func (f *HFFetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

// Fetch implements Fetcher.
func (f *HFFetcher) Fetch(ctx context.Context, e catalog.Entry, destDir string) (string, error) {
	if err := fsutil.EnsureDir(destDir); err != nil {
		return "", err
	}
	final := filepath.Join(destDir, e.Filename)
	partial := final + incompleteSuffix

	var offset int64
	if st, err := os.Stat(partial); err == nil {
		offset = st.Size()
	}

	url := e.DownloadURL(f.endpoint())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if f.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.Token)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	flags := os.O_CREATE | os.O_WRONLY
	switch resp.StatusCode {
	case http.StatusOK:
		offset = 0
		flags |= os.O_TRUNC
	case http.StatusPartialContent:
		flags |= os.O_APPEND
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("get %s: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	out, err := os.OpenFile(partial, flags, 0o644)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", partial, err)
	}
	total := int64(-1)
	if resp.ContentLength >= 0 {
		total = offset + resp.ContentLength
	}
	pw := &progressWriter{
		log:   f.Logger.With().Str("file", e.Filename).Logger(),
		done:  offset,
		total: total,
	}
	if f.ProgressInterval > 0 {
		pw.every = &rate.Sometimes{Interval: f.ProgressInterval}
	}
	_, err = io.Copy(out, io.TeeReader(resp.Body, pw))
	closeErr := out.Close() // Rename fails on Windows while the file is open.
	if err != nil {
		return "", fmt.Errorf("copy %s: %w", e.Filename, err)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close %s: %w", partial, closeErr)
	}
	if err := os.Rename(partial, final); err != nil {
		return "", fmt.Errorf("rename %s: %w", partial, err)
	}
	return final, nil
}

// progressWriter counts bytes and logs progress at most once per interval.
// A nil every disables progress logging.
type progressWriter struct {
	log   zerolog.Logger
	every *rate.Sometimes
	done  int64
	total int64
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.done += int64(len(b))
	downloadBytes.Add(float64(len(b)))
	if p.every != nil {
		p.every.Do(p.report)
	}
	return len(b), nil
}

func (p *progressWriter) report() {
	ev := p.log.Info().Str("done", units.BytesSize(float64(p.done)))
	if p.total > 0 {
		ev = ev.Str("total", units.BytesSize(float64(p.total))).Float64("pct", float64(p.done)*100/float64(p.total))
	}
	ev.Msg("download progress")
}
