package material

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/print-factory/core"
)

func NewService(repo Repository, q Queue) *service {
	return &service{
		repo:      repo,
		queue:     q,
		stockSubs: make(map[StockSubID]chan<- Material),
	}
}

type Service interface {
	CreateMaterial(ctx context.Context, material Material) (Material, error)
	GetMaterial(ctx context.Context, id int64) (Material, error)
	GetAllMaterials(ctx context.Context, limit, offset int) ([]Material, error)
	DeleteMaterial(ctx context.Context, id int64) error

	RecordPurchase(ctx context.Context, pr PurchaseRequest) (Material, error)
	GetPurchases(ctx context.Context, materialID int64, limit, offset int) ([]Purchase, error)
	DeletePurchase(ctx context.Context, id int64) error

	Reserve(ctx context.Context, demand Demand, options ...core.UpdateOptions) ([]Material, error)
	Release(ctx context.Context, demand Demand, options ...core.UpdateOptions) ([]Material, error)
	Reconcile(ctx context.Context, old, new Demand, options ...core.UpdateOptions) ([]Material, error)
	PublishStockUpdates(ctx context.Context, updates []Material) error

	SubscribeStock(ch chan<- Material) (id StockSubID)
	UnsubscribeStock(id StockSubID)
}

type StockSubID string

type service struct {
	repo  Repository
	queue Queue

	subMtx    sync.Mutex
	stockSubs map[StockSubID]chan<- Material
}

func (s *service) CreateMaterial(ctx context.Context, m Material) (Material, error) {
	const funcName = "CreateMaterial"

	existing, err := s.repo.GetMaterialByAttrs(ctx, m.Color, m.Brand, m.Composition)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return Material{}, errors.WithStack(err)
	}

	if existing.ID != 0 {
		log.Debug().
			Str("func", funcName).
			Str("material", existing.DisplayName()).
			Msg("material already exists")
		return existing, nil
	}

	log.Info().
		Str("func", funcName).
		Str("material", m.DisplayName()).
		Msg("creating material")

	m.OnHandKg = 0
	m.AvgCostKg = 0
	m.Created = time.Now()

	if err = s.repo.SaveMaterial(ctx, &m); err != nil {
		return Material{}, errors.WithStack(err)
	}

	return m, nil
}

func (s *service) GetMaterial(ctx context.Context, id int64) (Material, error) {
	m, err := s.repo.GetMaterial(ctx, id)
	if err != nil {
		return m, errors.WithStack(err)
	}
	return m, nil
}

func (s *service) GetAllMaterials(ctx context.Context, limit, offset int) ([]Material, error) {
	return s.repo.GetAllMaterials(ctx, limit, offset)
}

// DeleteMaterial removes a material definition. Only zero-stock materials
// that no product references may go away.
func (s *service) DeleteMaterial(ctx context.Context, id int64) error {
	const funcName = "DeleteMaterial"

	m, err := s.repo.GetMaterial(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	if m.OnHandKg > 0 {
		return errors.New("material still has stock on hand")
	}

	inUse, err := s.repo.MaterialInUse(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	if inUse {
		return errors.New("material is referenced by a product")
	}

	log.Info().
		Str("func", funcName).
		Str("material", m.DisplayName()).
		Msg("deleting material")

	return s.repo.DeleteMaterial(ctx, id)
}

func (s *service) RecordPurchase(ctx context.Context, pr PurchaseRequest) (Material, error) {
	const funcName = "RecordPurchase"

	log.Info().
		Str("func", funcName).
		Int64("materialId", pr.MaterialID).
		Float64("quantityKg", pr.QuantityKg).
		Float64("costPerKg", pr.CostPerKg).
		Msg("recording purchase")

	if pr.QuantityKg <= 0 {
		return Material{}, errors.New("purchase quantity must be greater than zero")
	}
	if pr.CostPerKg <= 0 {
		return Material{}, errors.New("purchase cost must be greater than zero")
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return Material{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	m, err := s.repo.GetMaterial(ctx, pr.MaterialID, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return Material{}, errors.WithMessage(err, "failed to get material")
	}

	purchasedAt := pr.PurchasedAt
	if purchasedAt.IsZero() {
		purchasedAt = time.Now()
	}

	purchase := Purchase{
		MaterialID:  pr.MaterialID,
		QuantityKg:  pr.QuantityKg,
		CostPerKg:   pr.CostPerKg,
		PurchasedAt: purchasedAt,
		Channel:     pr.Channel,
		Notes:       pr.Notes,
	}

	if err = s.repo.SavePurchase(ctx, &purchase, core.UpdateOptions{Tx: tx}); err != nil {
		return Material{}, errors.WithMessage(err, "failed to save purchase")
	}

	m.applyPurchase(pr.QuantityKg, pr.CostPerKg)

	if err = s.repo.SaveMaterial(ctx, &m, core.UpdateOptions{Tx: tx}); err != nil {
		return Material{}, errors.WithMessage(err, "failed to apply purchase to material")
	}

	if err = tx.Commit(ctx); err != nil {
		return Material{}, errors.WithMessage(err, "failed to commit purchase transaction")
	}

	if err = s.publishStock(ctx, m); err != nil {
		return Material{}, errors.WithMessage(err, "failed to publish stock")
	}

	return m, nil
}

func (s *service) GetPurchases(ctx context.Context, materialID int64, limit, offset int) ([]Purchase, error) {
	return s.repo.GetPurchases(ctx, materialID, limit, offset)
}

// DeletePurchase backs out an administrative mistake. Stock drops by the
// purchased quantity, clamped at zero; the weighted-average cost stays
// where it is because the per-purchase cost layers are not retained.
func (s *service) DeletePurchase(ctx context.Context, id int64) error {
	const funcName = "DeletePurchase"

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	p, err := s.repo.GetPurchase(ctx, id, core.QueryOptions{Tx: tx})
	if err != nil {
		return errors.WithMessage(err, "failed to get purchase")
	}

	m, err := s.repo.GetMaterial(ctx, p.MaterialID, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return errors.WithMessage(err, "failed to get material")
	}

	log.Info().
		Str("func", funcName).
		Int64("purchaseId", id).
		Str("material", m.DisplayName()).
		Float64("quantityKg", p.QuantityKg).
		Msg("deleting purchase")

	m.OnHandKg -= p.QuantityKg
	if m.OnHandKg < 0 {
		m.OnHandKg = 0
	}

	if err = s.repo.SaveMaterial(ctx, &m, core.UpdateOptions{Tx: tx}); err != nil {
		return errors.WithMessage(err, "failed to save material")
	}

	if err = s.repo.DeletePurchase(ctx, id, core.UpdateOptions{Tx: tx}); err != nil {
		return errors.WithMessage(err, "failed to delete purchase")
	}

	if err = tx.Commit(ctx); err != nil {
		return errors.WithMessage(err, "failed to commit purchase deletion")
	}

	if err = s.publishStock(ctx, m); err != nil {
		return errors.WithMessage(err, "failed to publish stock")
	}

	return nil
}

func (s *service) SubscribeStock(ch chan<- Material) (id StockSubID) {
	id = StockSubID(uuid.NewString())
	s.subMtx.Lock()
	s.stockSubs[id] = ch
	s.subMtx.Unlock()
	log.Debug().Interface("clientId", id).Msg("subscribing to stock updates")
	return id
}

func (s *service) UnsubscribeStock(id StockSubID) {
	log.Debug().Interface("clientId", id).Msg("unsubscribing from stock updates")
	s.subMtx.Lock()
	defer s.subMtx.Unlock()
	if ch, ok := s.stockSubs[id]; ok {
		close(ch)
		delete(s.stockSubs, id)
	}
}

// PublishStockUpdates emits stock events for materials mutated inside a
// caller-owned transaction. Callers invoke it only after their commit, so
// consumers never see quantities from an operation that rolled back.
func (s *service) PublishStockUpdates(ctx context.Context, updates []Material) error {
	for _, m := range updates {
		if err := s.publishStock(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) publishStock(ctx context.Context, m Material) error {
	if m.ThresholdKg != nil && m.OnHandKg < *m.ThresholdKg {
		log.Warn().
			Str("material", m.DisplayName()).
			Float64("onHandKg", m.OnHandKg).
			Float64("thresholdKg", *m.ThresholdKg).
			Msg("material below minimum threshold")
	}
	err := s.queue.PublishStock(ctx, m)
	if err != nil {
		return errors.WithMessage(err, "failed to publish stock to queue")
	}
	go s.notifyStockSubscribers(m)
	return nil
}

func (s *service) notifyStockSubscribers(m Material) {
	s.subMtx.Lock()
	defer s.subMtx.Unlock()

	// Sends never block while the lock is held; a subscriber whose buffer
	// is full misses this update rather than stalling everyone else.
	for id, ch := range s.stockSubs {
		select {
		case ch <- m:
			log.Debug().Interface("clientId", id).Interface("material", m).Msg("notifying subscriber of stock update")
		default:
			log.Warn().Interface("clientId", id).Msg("subscriber not keeping up, dropping stock update")
		}
	}
}
