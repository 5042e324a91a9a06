package material

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/print-factory/core"
)

// Reserve deducts a demand from stock, all or nothing. Every material in
// the demand is locked and checked before a single gram is deducted; if any
// is short the whole call fails with a StockShortageError listing each
// shortfall and no material is touched.
//
// Callers running a wider operation pass their transaction in options and
// stay responsible for the commit. In that case nothing is published here:
// the mutated materials are returned and the caller hands them to
// PublishStockUpdates after its own commit, so no consumer ever sees a
// deduction that later rolls back. With no caller transaction the
// reservation runs, commits and publishes on its own.
func (s *service) Reserve(ctx context.Context, demand Demand, options ...core.UpdateOptions) ([]Material, error) {
	const funcName = "Reserve"

	log.Info().
		Str("func", funcName).
		Int("materials", len(demand)).
		Msg("reserving stock")

	if len(options) > 0 && options[0].Tx != nil {
		return s.reserve(ctx, demand, options[0].Tx)
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	updates, err := s.reserve(ctx, demand, tx)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, errors.WithMessage(err, "failed to commit reservation")
	}

	if err = s.PublishStockUpdates(ctx, updates); err != nil {
		return nil, err
	}

	return updates, nil
}

func (s *service) reserve(ctx context.Context, demand Demand, tx core.Transaction) ([]Material, error) {
	materials := make([]Material, 0, len(demand))
	shortages := make([]Shortage, 0)

	// First pass: lock and validate everything. Ids are visited in
	// ascending order so concurrent reservations lock rows in the same
	// order.
	for _, id := range demand.MaterialIDs() {
		m, err := s.repo.GetMaterial(ctx, id, core.QueryOptions{Tx: tx, ForUpdate: true})
		if err != nil {
			return nil, errors.WithMessage(err, "failed to get material for reservation")
		}

		requiredKg := demand[id] / 1000
		if m.OnHandKg < requiredKg {
			shortages = append(shortages, Shortage{
				MaterialID:  m.ID,
				Name:        m.DisplayName(),
				RequiredKg:  requiredKg,
				AvailableKg: m.OnHandKg,
			})
			continue
		}

		materials = append(materials, m)
	}

	if len(shortages) > 0 {
		return nil, &StockShortageError{Shortages: shortages}
	}

	// Second pass: everything checked out, deduct all.
	for i := range materials {
		m := &materials[i]
		m.OnHandKg -= demand[m.ID] / 1000

		if err := s.repo.SaveMaterial(ctx, m, core.UpdateOptions{Tx: tx}); err != nil {
			return nil, errors.WithMessage(err, "failed to deduct material stock")
		}
	}

	return materials, nil
}

// Release returns a demand to stock. There is no upper bound check; a
// returned reservation may push a material past any nominal capacity.
// Publication follows the same rule as Reserve: with a caller transaction
// the mutated materials are only returned, never published here.
func (s *service) Release(ctx context.Context, demand Demand, options ...core.UpdateOptions) ([]Material, error) {
	const funcName = "Release"

	log.Info().
		Str("func", funcName).
		Int("materials", len(demand)).
		Msg("releasing stock")

	if len(options) > 0 && options[0].Tx != nil {
		return s.release(ctx, demand, options[0].Tx)
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	updates, err := s.release(ctx, demand, tx)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, errors.WithMessage(err, "failed to commit release")
	}

	if err = s.PublishStockUpdates(ctx, updates); err != nil {
		return nil, err
	}

	return updates, nil
}

func (s *service) release(ctx context.Context, demand Demand, tx core.Transaction) ([]Material, error) {
	updates := make([]Material, 0, len(demand))

	for _, id := range demand.MaterialIDs() {
		m, err := s.repo.GetMaterial(ctx, id, core.QueryOptions{Tx: tx, ForUpdate: true})
		if err != nil {
			return nil, errors.WithMessage(err, "failed to get material for release")
		}

		m.OnHandKg += demand[id] / 1000

		if err = s.repo.SaveMaterial(ctx, &m, core.UpdateOptions{Tx: tx}); err != nil {
			return nil, errors.WithMessage(err, "failed to return material stock")
		}

		updates = append(updates, m)
	}

	return updates, nil
}

// Reconcile swaps an old demand for a new one: the old reservation is
// released in full, then the new one is reserved. It never manages its own
// transaction; a failed re-reservation must roll the release back too, and
// only the caller holding the transaction can guarantee that. The returned
// materials carry the post-reserve quantities, one entry per material, for
// the caller to publish after its commit.
func (s *service) Reconcile(ctx context.Context, old, new Demand, options ...core.UpdateOptions) ([]Material, error) {
	if len(options) == 0 || options[0].Tx == nil {
		return nil, errors.New("reconcile requires a caller-owned transaction")
	}
	tx := options[0].Tx

	released, err := s.release(ctx, old, tx)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to release previous demand")
	}

	reserved, err := s.reserve(ctx, new, tx)
	if err != nil {
		return nil, err
	}

	// A material touched by both passes reports its final quantity once.
	updates := make([]Material, 0, len(released)+len(reserved))
	seen := make(map[int64]bool, len(reserved))
	for _, m := range reserved {
		seen[m.ID] = true
		updates = append(updates, m)
	}
	for _, m := range released {
		if !seen[m.ID] {
			updates = append(updates, m)
		}
	}

	return updates, nil
}
