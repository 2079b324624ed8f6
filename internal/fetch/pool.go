// Package fetch downloads independent files with bounded concurrency.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 4

// Job downloads URL to the file at Dest.
type Job struct {
	URL    string      `yaml:"url"`
	Dest   string      `yaml:"dest"`
	Header http.Header `yaml:"-"`
}

type Result struct {
	Job   Job
	Bytes int64
	Err   error
}

type Pool struct {
	httpClient *http.Client
	limit      int
}

func NewPool(concurrency int, timeout time.Duration) *Pool {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Pool{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
		limit: concurrency,
	}
}

// Close releases idle connections held by the pool.
func (p *Pool) Close() {
	p.httpClient.CloseIdleConnections()
}

// Fetch runs every job and returns one result per job in input order.
// A failing job does not stop the others; a cancelled context stops jobs
// that have not started yet and is returned as the error.
func (p *Pool) Fetch(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))

	var g errgroup.Group
	g.SetLimit(p.limit)

	for i, job := range jobs {
		i, job := i, job
		results[i].Job = job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			n, err := p.download(ctx, job)
			results[i].Bytes = n
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.WithFields(log.Fields{"jobs": len(jobs), "failed": failed}).Info("fetch finished")

	return results, ctx.Err()
}

func (p *Pool) download(ctx context.Context, job Job) (int64, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	for key, values := range job.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", job.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("get %s: unexpected status %d", job.URL, resp.StatusCode)
	}

	n, err := writeFile(job.Dest, resp.Body)
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"url":        job.URL,
		"dest":       job.Dest,
		"bytes":      n,
		"latency_ms": time.Since(start).Milliseconds(),
	}).Debug("fetched file")
	return n, nil
}

// writeFile streams r into a temp file next to dest and renames it, so a
// failed download never leaves a truncated file at dest.
func writeFile(dest string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return 0, fmt.Errorf("rename %s: %w", dest, err)
	}
	return n, nil
}
