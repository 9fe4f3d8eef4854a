package repository

import (
	"context"
	"fmt"
	"os"
	"time"

	"RWAPulse/internal/domain/models"
	domrepo "RWAPulse/internal/domain/repository"
)

// FileSnapshotProvider reads a JSON or YAML snapshot document on every Fetch,
// so edits to the file are picked up by the next cycle.
type FileSnapshotProvider struct {
	path    string
	format  docFormat
	sampler *sampler
	now     func() time.Time
}

type FileProviderOption func(*FileSnapshotProvider)

// WithFileSample returns n random cards per cycle instead of the whole document.
func WithFileSample(n int, seed int64) FileProviderOption {
	return func(p *FileSnapshotProvider) {
		p.sampler = newSampler(n, seed)
	}
}

func NewFileSnapshotProvider(path string, opts ...FileProviderOption) *FileSnapshotProvider {
	p := &FileSnapshotProvider{
		path:    path,
		format:  formatForPath(path),
		sampler: newSampler(0, 1),
		now:     time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *FileSnapshotProvider) Name() string { return "file" }

func (p *FileSnapshotProvider) Fetch(ctx context.Context) ([]models.SnapshotRecord, error) {
	return p.FetchSample(ctx, p.sampler.n)
}

// FetchSample is Fetch with an explicit sample size for this call only.
func (p *FileSnapshotProvider) FetchSample(ctx context.Context, n int) ([]models.SnapshotRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", p.path, err)
	}
	recs, err := decodeSnapshot(raw, p.format, p.now())
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", p.path, err)
	}
	return p.sampler.pick(recs, n), nil
}

var (
	_ domrepo.SnapshotProvider = (*FileSnapshotProvider)(nil)
	_ domrepo.SampledProvider  = (*FileSnapshotProvider)(nil)
)
