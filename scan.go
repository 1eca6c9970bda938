// Package scanner reconciles Azure virtual network topology into a table
// store. Each run is a full snapshot: every visible network and subnet is
// normalized into a keyed row and upserted, so repeated runs converge on
// the live topology without deleting stale rows.
package scanner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ItemFailure records one isolated failure within a run.
type ItemFailure struct {
	PartitionKey string
	RowKey       string
	Reason       string
}

// Report summarizes one reconciliation run.
type Report struct {
	RunID           string
	Networks        int // networks fully processed
	NetworksSkipped int // networks skipped due to an isolated failure
	Subnets         int // subnet records seen on processed networks
	ItemsWritten    int
	ItemsFailed     int
	Failures        []ItemFailure
	Elapsed         time.Duration
}

// Summary renders the report as a short human-readable text, one line of
// counts plus one line per failure.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scan %s: %d networks (%d skipped), %d subnets, %d items written, %d failed in %s",
		r.RunID, r.Networks, r.NetworksSkipped, r.Subnets, r.ItemsWritten, r.ItemsFailed, r.Elapsed.Round(time.Millisecond))
	for _, f := range r.Failures {
		key := f.PartitionKey
		if f.RowKey != "" {
			key += "/" + f.RowKey
		}
		fmt.Fprintf(&b, "\n  failed %s: %s", key, f.Reason)
	}
	return b.String()
}

// Scanner orchestrates one full reconciliation run.
type Scanner struct {
	lister NetworkLister
	store  TableStore
	logger zerolog.Logger
	now    func() time.Time
}

// NewScanner creates a Scanner over the given collaborators.
func NewScanner(lister NetworkLister, store TableStore, logger zerolog.Logger) *Scanner {
	return &Scanner{
		lister: lister,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Run executes one snapshot-and-sync pass. Failures scoped to one network
// or one item are recorded in the report and do not abort the run; only
// table resolution and the network listing itself are fatal.
func (s *Scanner) Run(ctx context.Context) (*Report, error) {
	start := s.now()
	report := &Report{RunID: uuid.NewString()}
	logger := s.logger.With().Str("run_id", report.RunID).Logger()

	if err := s.store.EnsureTable(ctx); err != nil {
		return nil, fmt.Errorf("ensure table: %w", err)
	}

	vnets, err := s.lister.ListNetworks(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("networks", len(vnets)).Msg("listed virtual networks")

	upserter := NewUpserter(s.store, logger)

	for _, vnet := range vnets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rg, err := ResourceGroupFromID(vnet.ID)
		if err != nil {
			logger.Error().Err(err).Str("network", vnet.Name).Msg("skipping network")
			report.NetworksSkipped++
			report.Failures = append(report.Failures, ItemFailure{
				PartitionKey: vnet.Name,
				Reason:       err.Error(),
			})
			continue
		}

		subnets, err := s.lister.ListSubnets(ctx, rg, vnet.Name)
		if err != nil {
			logger.Error().Err(err).Str("network", vnet.Name).Msg("skipping network")
			report.NetworksSkipped++
			report.Failures = append(report.Failures, ItemFailure{
				PartitionKey: vnet.Name,
				Reason:       err.Error(),
			})
			continue
		}

		items, err := NormalizeNetwork(vnet, subnets, s.now().UTC())
		if err != nil {
			logger.Error().Err(err).Str("network", vnet.Name).Msg("skipping network")
			report.NetworksSkipped++
			report.Failures = append(report.Failures, ItemFailure{
				PartitionKey: vnet.Name,
				Reason:       err.Error(),
			})
			continue
		}

		logger.Info().Str("network", vnet.Name).Str("resource_group", rg).
			Int("subnets", len(subnets)).Msg("processing network")

		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := upserter.Apply(ctx, item); err != nil {
				logger.Error().Err(err).Str("key", item.Key()).Msg("write failed")
				report.ItemsFailed++
				report.Failures = append(report.Failures, ItemFailure{
					PartitionKey: item.PartitionKey,
					RowKey:       item.RowKey,
					Reason:       err.Error(),
				})
				continue
			}
			report.ItemsWritten++
		}

		report.Networks++
		report.Subnets += len(subnets)
	}

	report.Elapsed = s.now().Sub(start)
	logger.Info().
		Int("networks", report.Networks).
		Int("networks_skipped", report.NetworksSkipped).
		Int("subnets", report.Subnets).
		Int("items_written", report.ItemsWritten).
		Int("items_failed", report.ItemsFailed).
		Dur("elapsed", report.Elapsed).
		Msg("scan complete")
	return report, nil
}
