package equipment

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/print-factory/core"
)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

type Service interface {
	CreatePrinterType(ctx context.Context, t PrinterType) (PrinterType, error)
	GetPrinterType(ctx context.Context, id int64) (PrinterType, error)
	GetAllPrinterTypes(ctx context.Context, limit, offset int) ([]PrinterType, error)

	CreatePrinter(ctx context.Context, p Printer) (Printer, error)
	GetPrinter(ctx context.Context, id int64) (Printer, error)
	GetAllPrinters(ctx context.Context, limit, offset int) ([]Printer, error)
	UpdatePrinterStatus(ctx context.Context, id int64, status Status) (Printer, error)
	DeletePrinter(ctx context.Context, id int64) error

	GetUsageRecords(ctx context.Context, printerID int64, limit, offset int) ([]UsageRecord, error)
}

type service struct {
	repo Repository
}

func (s *service) CreatePrinterType(ctx context.Context, t PrinterType) (PrinterType, error) {
	const funcName = "CreatePrinterType"

	if t.LifeHours <= 0 {
		return PrinterType{}, errors.New("expected life hours must be greater than zero")
	}

	existing, err := s.repo.GetPrinterTypeByModel(ctx, t.Brand, t.Model)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return PrinterType{}, errors.WithStack(err)
	}

	if existing.ID != 0 {
		log.Debug().
			Str("func", funcName).
			Str("brand", t.Brand).
			Str("model", t.Model).
			Msg("printer type already exists")
		return existing, nil
	}

	log.Info().
		Str("func", funcName).
		Str("brand", t.Brand).
		Str("model", t.Model).
		Msg("creating printer type")

	if err = s.repo.SavePrinterType(ctx, &t); err != nil {
		return PrinterType{}, errors.WithStack(err)
	}

	return t, nil
}

func (s *service) GetPrinterType(ctx context.Context, id int64) (PrinterType, error) {
	t, err := s.repo.GetPrinterType(ctx, id)
	if err != nil {
		return t, errors.WithStack(err)
	}
	return t, nil
}

func (s *service) GetAllPrinterTypes(ctx context.Context, limit, offset int) ([]PrinterType, error) {
	return s.repo.GetAllPrinterTypes(ctx, limit, offset)
}

func (s *service) CreatePrinter(ctx context.Context, p Printer) (Printer, error) {
	const funcName = "CreatePrinter"

	if p.Price < 0 {
		return Printer{}, errors.New("price cannot be negative")
	}

	if _, err := s.repo.GetPrinterType(ctx, p.TypeID); err != nil {
		return Printer{}, errors.WithMessage(err, "unknown printer type")
	}

	existing, err := s.repo.GetPrinterByName(ctx, NormalizeName(p.Name))
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return Printer{}, errors.WithStack(err)
	}
	if existing.ID != 0 {
		return Printer{}, errors.New("a printer with that name already exists")
	}

	log.Info().
		Str("func", funcName).
		Str("name", p.Name).
		Int64("typeId", p.TypeID).
		Msg("creating printer")

	p.UsageHours = 0
	p.Status = Idle
	p.Created = time.Now()

	if err = s.repo.SavePrinter(ctx, &p); err != nil {
		return Printer{}, errors.WithStack(err)
	}

	return p, nil
}

func (s *service) GetPrinter(ctx context.Context, id int64) (Printer, error) {
	p, err := s.repo.GetPrinter(ctx, id)
	if err != nil {
		return p, errors.WithStack(err)
	}
	return p, nil
}

func (s *service) GetAllPrinters(ctx context.Context, limit, offset int) ([]Printer, error) {
	return s.repo.GetAllPrinters(ctx, limit, offset)
}

// UpdatePrinterStatus handles operator moves between idle, maintenance and
// offline. The printing status is owned by the batch lifecycle and cannot
// be set by hand.
func (s *service) UpdatePrinterStatus(ctx context.Context, id int64, status Status) (Printer, error) {
	const funcName = "UpdatePrinterStatus"

	if status == Printing {
		return Printer{}, errors.New("printing status is set by starting a batch")
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return Printer{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	p, err := s.repo.GetPrinter(ctx, id, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return Printer{}, errors.WithStack(err)
	}

	if p.Status == Printing {
		return Printer{}, errors.New("printer is running a batch")
	}

	log.Info().
		Str("func", funcName).
		Int64("printerId", id).
		Str("status", string(status)).
		Msg("updating printer status")

	p.Status = status

	if err = s.repo.SavePrinter(ctx, &p, core.UpdateOptions{Tx: tx}); err != nil {
		return Printer{}, errors.WithStack(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return Printer{}, errors.WithStack(err)
	}

	return p, nil
}

func (s *service) DeletePrinter(ctx context.Context, id int64) error {
	const funcName = "DeletePrinter"

	p, err := s.repo.GetPrinter(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	if p.Status == Printing {
		return errors.New("printer is running a batch")
	}

	log.Info().
		Str("func", funcName).
		Int64("printerId", id).
		Str("name", p.Name).
		Msg("deleting printer")

	return s.repo.DeletePrinter(ctx, id)
}

func (s *service) GetUsageRecords(ctx context.Context, printerID int64, limit, offset int) ([]UsageRecord, error) {
	return s.repo.GetUsageRecords(ctx, printerID, limit, offset)
}
