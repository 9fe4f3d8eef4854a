package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"regexp"
	"sort"
	"time"

	"RWAPulse/internal/domain/models"
	domrepo "RWAPulse/internal/domain/repository"
	pkgch "RWAPulse/pkg/clickhouse"
	applogger "RWAPulse/pkg/logger"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// CHSnapshotProvider assembles records from the latest venue quotes and the
// latest supply row per asset.
type CHSnapshotProvider struct {
	db          *sql.DB
	quotesTable string
	supplyTable string
	l           *applogger.Logger
}

func NewCHSnapshotProvider(ch *pkgch.Client, quotesTable, supplyTable string, l *applogger.Logger) (*CHSnapshotProvider, error) {
	for _, t := range []string{quotesTable, supplyTable} {
		if !identRe.MatchString(t) {
			return nil, fmt.Errorf("invalid clickhouse table name %q", t)
		}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &CHSnapshotProvider{db: ch.DB(), quotesTable: quotesTable, supplyTable: supplyTable, l: l}, nil
}

// SnapshotSchema returns idempotent DDL for both tables.
func SnapshotSchema(quotesTable, supplyTable string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    asset_id String,
    display_name String,
    venue LowCardinality(String),
    price Float64,
    observed_at DateTime64(3)
) ENGINE = MergeTree ORDER BY (asset_id, venue, observed_at)`, quotesTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    asset_id String,
    on_chain_count UInt32,
    off_chain_count UInt32,
    volume_trend_pct Nullable(Float64),
    observed_at DateTime64(3)
) ENGINE = MergeTree ORDER BY (asset_id, observed_at)`, supplyTable),
	}
}

func (p *CHSnapshotProvider) Name() string { return "clickhouse" }

func (p *CHSnapshotProvider) Fetch(ctx context.Context) ([]models.SnapshotRecord, error) {
	start := time.Now()
	recs, order, err := p.quotes(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.supply(ctx, recs); err != nil {
		return nil, err
	}

	out := make([]models.SnapshotRecord, 0, len(order))
	for _, id := range order {
		out = append(out, *recs[id])
	}
	p.l.Debug("clickhouse snapshot fetched",
		applogger.Int("assets", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (p *CHSnapshotProvider) quotes(ctx context.Context) (map[string]*models.SnapshotRecord, []string, error) {
	q := fmt.Sprintf(`
        SELECT asset_id, argMax(display_name, observed_at), venue, argMax(price, observed_at), max(observed_at)
        FROM %s
        GROUP BY asset_id, venue
        ORDER BY asset_id, venue`, p.quotesTable)
	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		p.l.Error("clickhouse quotes query error", applogger.String("table", p.quotesTable), applogger.Error(err))
		return nil, nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	recs := map[string]*models.SnapshotRecord{}
	for rows.Next() {
		var (
			id, name, venue string
			price           float64
			observed        time.Time
		)
		if err := rows.Scan(&id, &name, &venue, &price, &observed); err != nil {
			return nil, nil, fmt.Errorf("scan quote: %w", err)
		}
		rec, ok := recs[id]
		if !ok {
			rec = &models.SnapshotRecord{AssetID: id, DisplayName: name, VenuePrices: map[string]float64{}}
			recs[id] = rec
		}
		rec.VenuePrices[venue] = price
		if observed.After(rec.ObservedAt) {
			rec.ObservedAt = observed
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("rows: %w", err)
	}

	order := make([]string, 0, len(recs))
	for id := range recs {
		order = append(order, id)
	}
	sort.Strings(order)
	return recs, order, nil
}

func (p *CHSnapshotProvider) supply(ctx context.Context, recs map[string]*models.SnapshotRecord) error {
	// argMax skips NULLs; wrapping in a tuple keeps a NULL from the newest row
	q := fmt.Sprintf(`
        SELECT asset_id,
               toInt64(argMax(on_chain_count, observed_at)),
               toInt64(argMax(off_chain_count, observed_at)),
               ifNull(argMax(tuple(volume_trend_pct), observed_at).1, nan)
        FROM %s
        GROUP BY asset_id`, p.supplyTable)
	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		p.l.Error("clickhouse supply query error", applogger.String("table", p.supplyTable), applogger.Error(err))
		return fmt.Errorf("query supply: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id      string
			on, off int64
			trend   float64
		)
		if err := rows.Scan(&id, &on, &off, &trend); err != nil {
			return fmt.Errorf("scan supply: %w", err)
		}
		rec, ok := recs[id]
		if !ok {
			// supply without quotes has nothing to analyze
			continue
		}
		rec.Supply = &models.Supply{OnChainCount: int(on), OffChainCount: int(off)}
		if !math.IsNaN(trend) {
			rec.VolumeTrendPct = models.Float64Ptr(trend)
		}
	}
	return rows.Err()
}

var _ domrepo.SnapshotProvider = (*CHSnapshotProvider)(nil)
