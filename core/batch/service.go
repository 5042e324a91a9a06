package batch

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/costing"
	"github.com/sksmith/print-factory/core/equipment"
	"github.com/sksmith/print-factory/core/material"
)

// Clock is injected so tests can pin batch timestamps.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func NewService(repo Repository, materials MaterialService, products ProductRepository, printers equipment.Repository, q Queue, clock Clock) *service {
	return &service{
		repo:      repo,
		materials: materials,
		products:  products,
		printers:  printers,
		queue:     q,
		clock:     clock,
	}
}

type Service interface {
	CreateBatch(ctx context.Context, req CreateBatchRequest) (Batch, error)
	EditBatch(ctx context.Context, id string, req EditBatchRequest) (Batch, error)
	StartBatch(ctx context.Context, id string) (Batch, error)
	SetBatchStatus(ctx context.Context, id string, status Status) (Batch, error)
	DeleteBatch(ctx context.Context, id string) error

	GetBatch(ctx context.Context, id string) (Batch, error)
	GetAllBatches(ctx context.Context, limit, offset int) ([]Batch, error)
}

type service struct {
	repo      Repository
	materials MaterialService
	products  ProductRepository
	printers  equipment.Repository
	queue     Queue
	clock     Clock
}

// CreateBatch opens a new pending run: every referenced product must exist,
// the aggregate filament demand must be coverable, and only then is
// anything persisted. The total cost is computed and cached before commit.
func (s *service) CreateBatch(ctx context.Context, req CreateBatchRequest) (Batch, error) {
	const funcName = "CreateBatch"

	log.Info().
		Str("func", funcName).
		Str("name", req.Name).
		Int("lineItems", len(req.LineItems)).
		Int("assignments", len(req.Assignments)).
		Msg("creating batch")

	if err := validateCreate(req); err != nil {
		return Batch{}, err
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return Batch{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	demand, err := s.computeDemand(ctx, req.LineItems, core.QueryOptions{Tx: tx})
	if err != nil {
		return Batch{}, err
	}

	stockUpdates, err := s.materials.Reserve(ctx, demand, core.UpdateOptions{Tx: tx})
	if err != nil {
		return Batch{}, err
	}

	assignments, err := s.snapshotAssignments(ctx, req.Assignments, core.QueryOptions{Tx: tx})
	if err != nil {
		return Batch{}, err
	}

	b := Batch{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Status:       Pending,
		PackagingFee: req.PackagingFee,
		LineItems:    req.LineItems,
		Assignments:  assignments,
		Created:      s.clock.Now(),
	}

	if err = s.repo.SaveBatch(ctx, &b, core.UpdateOptions{Tx: tx}); err != nil {
		return Batch{}, errors.WithMessage(err, "failed to save batch")
	}
	if err = s.repo.SaveLineItems(ctx, b.ID, b.LineItems, core.UpdateOptions{Tx: tx}); err != nil {
		return Batch{}, errors.WithMessage(err, "failed to save line items")
	}
	if err = s.repo.SaveAssignments(ctx, b.ID, b.Assignments, core.UpdateOptions{Tx: tx}); err != nil {
		return Batch{}, errors.WithMessage(err, "failed to save assignments")
	}

	if err = s.recomputeCost(ctx, &b, tx); err != nil {
		return Batch{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return Batch{}, errors.WithMessage(err, "failed to commit batch creation")
	}

	if err = s.materials.PublishStockUpdates(ctx, stockUpdates); err != nil {
		return Batch{}, errors.WithMessage(err, "failed to publish stock updates")
	}
	if err = s.queue.PublishBatch(ctx, b); err != nil {
		return Batch{}, errors.WithMessage(err, "failed to publish batch")
	}

	return b, nil
}

// EditBatch reworks a pending or printing run. Old demand is released and
// the new demand reserved inside the same transaction, so a shortfall
// leaves both the batch and the stock exactly as they were. All derived
// totals are computed from line items re-read after the mutation; editing
// to the same quantities twice yields the same cached cost both times.
func (s *service) EditBatch(ctx context.Context, id string, req EditBatchRequest) (Batch, error) {
	const funcName = "EditBatch"

	log.Info().
		Str("func", funcName).
		Str("batchId", id).
		Msg("editing batch")

	if err := validateEdit(req); err != nil {
		return Batch{}, err
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return Batch{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	b, err := s.repo.GetBatch(ctx, id, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return Batch{}, errors.WithStack(err)
	}

	if b.Status != Pending && b.Status != Printing {
		err = &InvalidStateError{BatchID: b.ID, Status: b.Status}
		return Batch{}, err
	}

	oldDemand, err := s.computeDemand(ctx, b.LineItems, core.QueryOptions{Tx: tx})
	if err != nil {
		return Batch{}, err
	}

	if req.LineItems != nil {
		if err = s.repo.SaveLineItems(ctx, b.ID, *req.LineItems, core.UpdateOptions{Tx: tx}); err != nil {
			return Batch{}, errors.WithMessage(err, "failed to save line items")
		}
	}

	// Re-read the line items after the mutation. Demand, hours and cost
	// must come from what is now persisted, not from the aggregate loaded
	// at the top of the call.
	b.LineItems, err = s.repo.GetLineItems(ctx, b.ID, core.QueryOptions{Tx: tx})
	if err != nil {
		return Batch{}, errors.WithMessage(err, "failed to reload line items")
	}

	newDemand, err := s.computeDemand(ctx, b.LineItems, core.QueryOptions{Tx: tx})
	if err != nil {
		return Batch{}, err
	}

	stockUpdates, err := s.materials.Reconcile(ctx, oldDemand, newDemand, core.UpdateOptions{Tx: tx})
	if err != nil {
		return Batch{}, err
	}

	if req.Assignments != nil {
		b.Assignments, err = s.snapshotAssignments(ctx, *req.Assignments, core.QueryOptions{Tx: tx})
		if err != nil {
			return Batch{}, err
		}
		if err = s.repo.SaveAssignments(ctx, b.ID, b.Assignments, core.UpdateOptions{Tx: tx}); err != nil {
			return Batch{}, errors.WithMessage(err, "failed to save assignments")
		}
	}

	if req.Name != nil {
		b.Name = *req.Name
	}
	if req.PackagingFee != nil {
		b.PackagingFee = *req.PackagingFee
	}

	if err = s.recomputeCost(ctx, &b, tx); err != nil {
		return Batch{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return Batch{}, errors.WithMessage(err, "failed to commit batch edit")
	}

	if err = s.materials.PublishStockUpdates(ctx, stockUpdates); err != nil {
		return Batch{}, errors.WithMessage(err, "failed to publish stock updates")
	}
	if err = s.queue.PublishBatch(ctx, b); err != nil {
		return Batch{}, errors.WithMessage(err, "failed to publish batch")
	}

	return b, nil
}

// StartBatch moves a pending run onto the floor. Every concretely assigned
// printer is locked and checked against other printing batches; one
// conflict aborts the whole start. Wear is added to each printer up front
// and logged as an append-only usage record.
func (s *service) StartBatch(ctx context.Context, id string) (Batch, error) {
	const funcName = "StartBatch"

	log.Info().
		Str("func", funcName).
		Str("batchId", id).
		Msg("starting batch")

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return Batch{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	b, err := s.repo.GetBatch(ctx, id, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return Batch{}, errors.WithStack(err)
	}

	if b.Status != Pending {
		err = &InvalidStateError{BatchID: b.ID, Status: b.Status}
		return Batch{}, err
	}

	totalHours, err := s.totalPrintHours(ctx, b.LineItems, core.QueryOptions{Tx: tx})
	if err != nil {
		return Batch{}, err
	}

	now := s.clock.Now()

	for _, a := range b.Assignments {
		if a.PrinterID == nil {
			continue
		}

		p, perr := s.printers.GetPrinter(ctx, *a.PrinterID, core.QueryOptions{Tx: tx, ForUpdate: true})
		if perr != nil {
			err = errors.WithMessage(perr, "failed to get assigned printer")
			return Batch{}, err
		}

		holder, herr := s.repo.GetPrintingHolder(ctx, p.ID, b.ID, core.QueryOptions{Tx: tx})
		if herr != nil && !errors.Is(herr, core.ErrNotFound) {
			err = errors.WithStack(herr)
			return Batch{}, err
		}
		if holder != "" {
			err = &PrinterConflictError{PrinterID: p.ID, HolderBatchID: holder}
			return Batch{}, err
		}

		hours := totalHours * float64(a.UnitsQty)
		p.UsageHours += hours
		p.Status = equipment.Printing

		if err = s.printers.SavePrinter(ctx, &p, core.UpdateOptions{Tx: tx}); err != nil {
			return Batch{}, errors.WithMessage(err, "failed to update printer")
		}

		record := equipment.UsageRecord{
			PrinterID: p.ID,
			BatchID:   b.ID,
			Hours:     hours,
			Year:      now.Year(),
			Month:     int(now.Month()),
			Created:   now,
		}
		if err = s.printers.SaveUsageRecord(ctx, &record, core.UpdateOptions{Tx: tx}); err != nil {
			return Batch{}, errors.WithMessage(err, "failed to save usage record")
		}
	}

	est := now.Add(time.Duration(totalHours * float64(time.Hour)))
	b.Status = Printing
	b.StartedAt = &now
	b.EstCompletionAt = &est

	if err = s.repo.SaveBatch(ctx, &b, core.UpdateOptions{Tx: tx}); err != nil {
		return Batch{}, errors.WithMessage(err, "failed to save batch")
	}

	if err = tx.Commit(ctx); err != nil {
		return Batch{}, errors.WithMessage(err, "failed to commit batch start")
	}

	if err = s.queue.PublishBatch(ctx, b); err != nil {
		return Batch{}, errors.WithMessage(err, "failed to publish batch")
	}

	return b, nil
}

// SetBatchStatus closes out a printing run as completed or failed. Assigned
// printers go back to idle; the hours they ran are wear already taken and
// stay on the clock.
func (s *service) SetBatchStatus(ctx context.Context, id string, status Status) (Batch, error) {
	const funcName = "SetBatchStatus"

	log.Info().
		Str("func", funcName).
		Str("batchId", id).
		Str("status", string(status)).
		Msg("setting batch status")

	if status != Completed && status != Failed {
		return Batch{}, errors.New("status must be completed or failed")
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return Batch{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	b, err := s.repo.GetBatch(ctx, id, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return Batch{}, errors.WithStack(err)
	}

	if b.Status != Printing {
		err = &InvalidStateError{BatchID: b.ID, Status: b.Status}
		return Batch{}, err
	}

	if err = s.idlePrinters(ctx, b, tx); err != nil {
		return Batch{}, err
	}

	b.Status = status

	if err = s.repo.SaveBatch(ctx, &b, core.UpdateOptions{Tx: tx}); err != nil {
		return Batch{}, errors.WithMessage(err, "failed to save batch")
	}

	if err = tx.Commit(ctx); err != nil {
		return Batch{}, errors.WithMessage(err, "failed to commit status change")
	}

	if err = s.queue.PublishBatch(ctx, b); err != nil {
		return Batch{}, errors.WithMessage(err, "failed to publish batch")
	}

	return b, nil
}

// DeleteBatch tears a run down in any state. Reserved filament goes back to
// stock in full; printer hours already accumulated stay. Line items,
// assignments and usage records are owned by the batch and go with it.
func (s *service) DeleteBatch(ctx context.Context, id string) error {
	const funcName = "DeleteBatch"

	log.Info().
		Str("func", funcName).
		Str("batchId", id).
		Msg("deleting batch")

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	b, err := s.repo.GetBatch(ctx, id, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return errors.WithStack(err)
	}

	demand, err := s.computeDemand(ctx, b.LineItems, core.QueryOptions{Tx: tx})
	if err != nil {
		return err
	}

	stockUpdates, err := s.materials.Release(ctx, demand, core.UpdateOptions{Tx: tx})
	if err != nil {
		return err
	}

	if b.Status == Printing {
		if err = s.idlePrinters(ctx, b, tx); err != nil {
			return err
		}
	}

	if err = s.printers.DeleteUsageRecordsForBatch(ctx, b.ID, core.UpdateOptions{Tx: tx}); err != nil {
		return errors.WithMessage(err, "failed to delete usage records")
	}

	if err = s.repo.DeleteBatch(ctx, b.ID, core.UpdateOptions{Tx: tx}); err != nil {
		return errors.WithMessage(err, "failed to delete batch")
	}

	if err = tx.Commit(ctx); err != nil {
		return errors.WithMessage(err, "failed to commit batch deletion")
	}

	if err = s.materials.PublishStockUpdates(ctx, stockUpdates); err != nil {
		return errors.WithMessage(err, "failed to publish stock updates")
	}

	return nil
}

func (s *service) GetBatch(ctx context.Context, id string) (Batch, error) {
	b, err := s.repo.GetBatch(ctx, id)
	if err != nil {
		return b, errors.WithStack(err)
	}
	return b, nil
}

func (s *service) GetAllBatches(ctx context.Context, limit, offset int) ([]Batch, error) {
	return s.repo.GetAllBatches(ctx, limit, offset)
}

// computeDemand aggregates the grams of every material the given line items
// consume, keyed by material id. Line items sharing a material sum into one
// entry.
func (s *service) computeDemand(ctx context.Context, lines []LineItem, options ...core.QueryOptions) (material.Demand, error) {
	demand := material.Demand{}
	for _, li := range lines {
		p, err := s.products.GetProductByID(ctx, li.ProductID, options...)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return nil, &UnknownEntityError{Kind: "product", ID: formatID(li.ProductID)}
			}
			return nil, errors.WithStack(err)
		}
		for _, u := range p.Materials {
			demand.Add(u.MaterialID, u.Grams*float64(li.Quantity))
		}
	}
	return demand, nil
}

func (s *service) costingLines(ctx context.Context, lines []LineItem, options ...core.QueryOptions) ([]costing.Line, error) {
	out := make([]costing.Line, 0, len(lines))
	for _, li := range lines {
		p, err := s.products.GetProductByID(ctx, li.ProductID, options...)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return nil, &UnknownEntityError{Kind: "product", ID: formatID(li.ProductID)}
			}
			return nil, errors.WithStack(err)
		}
		out = append(out, costing.Line{Product: p, Quantity: li.Quantity})
	}
	return out, nil
}

func (s *service) totalPrintHours(ctx context.Context, lines []LineItem, options ...core.QueryOptions) (float64, error) {
	cl, err := s.costingLines(ctx, lines, options...)
	if err != nil {
		return 0, err
	}
	return costing.TotalPrintHours(cl), nil
}

// recomputeCost prices the batch from its persisted line items and caches
// the total. Material costs are re-read at call time so the figure tracks
// the latest weighted averages.
func (s *service) recomputeCost(ctx context.Context, b *Batch, tx core.Transaction) error {
	lines, err := s.costingLines(ctx, b.LineItems, core.QueryOptions{Tx: tx})
	if err != nil {
		return err
	}

	costOf, err := s.materialCosts(ctx, lines)
	if err != nil {
		return err
	}

	assignments := make([]costing.Assignment, 0, len(b.Assignments))
	for _, a := range b.Assignments {
		assignments = append(assignments, costing.Assignment{UnitsQty: a.UnitsQty, Snapshot: a.Snapshot})
	}

	total := costing.BatchTotal(lines, assignments, b.PackagingFee, costOf)
	b.TotalCost = &total

	if err = s.repo.SaveBatch(ctx, b, core.UpdateOptions{Tx: tx}); err != nil {
		return errors.WithMessage(err, "failed to cache batch cost")
	}

	return nil
}

func (s *service) materialCosts(ctx context.Context, lines []costing.Line) (costing.CostOf, error) {
	costs := make(map[int64]float64)
	for _, l := range lines {
		for _, u := range l.Product.Materials {
			if _, ok := costs[u.MaterialID]; ok {
				continue
			}
			m, err := s.materials.GetMaterial(ctx, u.MaterialID)
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					return nil, &UnknownEntityError{Kind: "material", ID: formatID(u.MaterialID)}
				}
				return nil, errors.WithStack(err)
			}
			costs[u.MaterialID] = m.AvgCostKg
		}
	}
	return func(id int64) float64 { return costs[id] }, nil
}

// snapshotAssignments resolves each requested assignment and captures the
// printer's economics as they stand right now. A printer whose type profile
// has gone missing gets no snapshot and will simply contribute zero
// equipment cost.
func (s *service) snapshotAssignments(ctx context.Context, reqs []AssignmentRequest, options ...core.QueryOptions) ([]Assignment, error) {
	assignments := make([]Assignment, 0, len(reqs))
	for _, r := range reqs {
		a := Assignment{
			PrinterID:     r.PrinterID,
			PrinterTypeID: r.PrinterTypeID,
			UnitsQty:      r.UnitsQty,
			HoursPerUnit:  r.HoursPerUnit,
		}

		if r.PrinterID != nil {
			p, err := s.printers.GetPrinter(ctx, *r.PrinterID, options...)
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					return nil, &UnknownEntityError{Kind: "printer", ID: formatID(*r.PrinterID)}
				}
				return nil, errors.WithStack(err)
			}

			t, err := s.printers.GetPrinterType(ctx, p.TypeID, options...)
			if err != nil {
				if !errors.Is(err, core.ErrNotFound) {
					return nil, errors.WithStack(err)
				}
				log.Warn().
					Int64("printerId", p.ID).
					Int64("typeId", p.TypeID).
					Msg("printer has no type profile, assignment will carry no economics")
			} else {
				a.Snapshot = &costing.Economics{Price: p.Price, LifeHours: t.LifeHours}
			}
		}

		assignments = append(assignments, a)
	}
	return assignments, nil
}

func (s *service) idlePrinters(ctx context.Context, b Batch, tx core.Transaction) error {
	for _, a := range b.Assignments {
		if a.PrinterID == nil {
			continue
		}

		p, err := s.printers.GetPrinter(ctx, *a.PrinterID, core.QueryOptions{Tx: tx, ForUpdate: true})
		if err != nil {
			return errors.WithMessage(err, "failed to get assigned printer")
		}

		p.Status = equipment.Idle

		if err = s.printers.SavePrinter(ctx, &p, core.UpdateOptions{Tx: tx}); err != nil {
			return errors.WithMessage(err, "failed to idle printer")
		}
	}
	return nil
}

func validateCreate(req CreateBatchRequest) error {
	if req.Name == "" {
		return errors.New("name is required")
	}
	if req.PackagingFee < 0 {
		return errors.New("packaging fee cannot be negative")
	}
	if len(req.LineItems) == 0 {
		return errors.New("at least one line item is required")
	}
	if err := validateLines(req.LineItems); err != nil {
		return err
	}
	return validateAssignments(req.Assignments)
}

func validateEdit(req EditBatchRequest) error {
	if req.PackagingFee != nil && *req.PackagingFee < 0 {
		return errors.New("packaging fee cannot be negative")
	}
	if req.LineItems != nil {
		if len(*req.LineItems) == 0 {
			return errors.New("at least one line item is required")
		}
		if err := validateLines(*req.LineItems); err != nil {
			return err
		}
	}
	if req.Assignments != nil {
		return validateAssignments(*req.Assignments)
	}
	return nil
}

func validateLines(lines []LineItem) error {
	for _, li := range lines {
		if li.Quantity < 1 {
			return errors.New("line item quantity must be greater than zero")
		}
	}
	return nil
}

func validateAssignments(assignments []AssignmentRequest) error {
	for _, a := range assignments {
		if a.PrinterID == nil && a.PrinterTypeID == nil {
			return errors.New("assignment requires a printer or printer type")
		}
		if a.UnitsQty < 1 {
			return errors.New("assignment units must be greater than zero")
		}
		if a.HoursPerUnit < 0 {
			return errors.New("assignment hours cannot be negative")
		}
	}
	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
