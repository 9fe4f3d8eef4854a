package cache

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"RWAPulse/internal/domain/models"
	domrepo "RWAPulse/internal/domain/repository"
)

// ReportCache keeps only the latest scan report under one key, msgpack encoded.
type ReportCache struct {
	c   BytesCache
	key string
	ttl time.Duration
}

func NewReportCache(c BytesCache, key string, ttl time.Duration) *ReportCache {
	if key == "" {
		key = "rwapulse:latest_report"
	}
	return &ReportCache{c: c, key: key, ttl: ttl}
}

func (r *ReportCache) SaveLatest(ctx context.Context, rep *models.ScanReport) error {
	if rep == nil {
		return fmt.Errorf("nil report")
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := r.c.SetBytes(ctx, r.key, buf.Bytes(), r.ttl); err != nil {
		return fmt.Errorf("cache report: %w", err)
	}
	return nil
}

func (r *ReportCache) Latest(ctx context.Context) (*models.ScanReport, bool, error) {
	b, ok, err := r.c.GetBytes(ctx, r.key)
	if err != nil {
		return nil, false, fmt.Errorf("read cached report: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")
	var rep models.ScanReport
	if err := dec.Decode(&rep); err != nil {
		return nil, false, fmt.Errorf("decode report: %w", err)
	}
	return &rep, true, nil
}

var _ domrepo.ReportStore = (*ReportCache)(nil)
