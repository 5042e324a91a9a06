package batchrepo

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/batch"
	"github.com/sksmith/print-factory/core/costing"
	"github.com/sksmith/print-factory/db"
)

type dbRepo struct {
	conn core.Conn
}

func NewPostgresRepo(conn core.Conn) batch.Repository {
	return &dbRepo{
		conn: conn,
	}
}

func (d *dbRepo) SaveBatch(ctx context.Context, b *batch.Batch, options ...core.UpdateOptions) error {
	m := db.StartMetric("SaveBatch")
	tx := db.GetUpdateOptions(d.conn, options...)

	_, err := tx.Exec(ctx, `
	INSERT INTO batches (id, name, status, packaging_fee, total_cost, started_at, est_completion_at, created)
	             VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE
	        SET name = $2, status = $3, packaging_fee = $4, total_cost = $5, started_at = $6, est_completion_at = $7;`,
		b.ID, b.Name, b.Status, b.PackagingFee, b.TotalCost, b.StartedAt, b.EstCompletionAt, b.Created)
	m.Complete(err)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (d *dbRepo) GetBatch(ctx context.Context, id string, options ...core.QueryOptions) (batch.Batch, error) {
	m := db.StartMetric("GetBatch")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	b := batch.Batch{}
	err := tx.QueryRow(ctx, `
	SELECT id, name, status, packaging_fee, total_cost, started_at, est_completion_at, created
	  FROM batches WHERE id = $1 `+forUpdate, id).
		Scan(&b.ID, &b.Name, &b.Status, &b.PackagingFee, &b.TotalCost, &b.StartedAt, &b.EstCompletionAt, &b.Created)

	if err != nil {
		m.Complete(err)
		if err == pgx.ErrNoRows {
			return b, errors.WithStack(core.ErrNotFound)
		}
		return b, errors.WithStack(err)
	}

	if b.LineItems, err = d.GetLineItems(ctx, b.ID, options...); err != nil {
		m.Complete(err)
		return b, err
	}
	if b.Assignments, err = d.GetAssignments(ctx, b.ID, options...); err != nil {
		m.Complete(err)
		return b, err
	}

	m.Complete(nil)
	return b, nil
}

func (d *dbRepo) GetAllBatches(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]batch.Batch, error) {
	m := db.StartMetric("GetAllBatches")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	batches := make([]batch.Batch, 0)
	rows, err := tx.Query(ctx, `
	SELECT id, name, status, packaging_fee, total_cost, started_at, est_completion_at, created
	  FROM batches ORDER BY created DESC LIMIT $1 OFFSET $2 `+forUpdate,
		limit, offset)
	if err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		b := batch.Batch{}
		err = rows.Scan(&b.ID, &b.Name, &b.Status, &b.PackagingFee, &b.TotalCost, &b.StartedAt, &b.EstCompletionAt, &b.Created)
		if err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		batches = append(batches, b)
	}
	rows.Close()

	for i := range batches {
		if batches[i].LineItems, err = d.GetLineItems(ctx, batches[i].ID, options...); err != nil {
			m.Complete(err)
			return nil, err
		}
		if batches[i].Assignments, err = d.GetAssignments(ctx, batches[i].ID, options...); err != nil {
			m.Complete(err)
			return nil, err
		}
	}

	m.Complete(nil)
	return batches, nil
}

func (d *dbRepo) GetLineItems(ctx context.Context, batchID string, options ...core.QueryOptions) ([]batch.LineItem, error) {
	m := db.StartMetric("GetLineItems")
	tx, _ := db.GetQueryOptions(d.conn, options...)

	lines := make([]batch.LineItem, 0)
	rows, err := tx.Query(ctx,
		`SELECT product_id, quantity FROM batch_line_items WHERE batch_id = $1 ORDER BY product_id`, batchID)
	if err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		l := batch.LineItem{}
		if err = rows.Scan(&l.ProductID, &l.Quantity); err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		lines = append(lines, l)
	}

	m.Complete(nil)
	return lines, nil
}

func (d *dbRepo) GetAssignments(ctx context.Context, batchID string, options ...core.QueryOptions) ([]batch.Assignment, error) {
	m := db.StartMetric("GetAssignments")
	tx, _ := db.GetQueryOptions(d.conn, options...)

	assignments := make([]batch.Assignment, 0)
	rows, err := tx.Query(ctx, `
	SELECT printer_id, printer_type_id, units_qty, hours_per_unit, snap_price, snap_life_hours
	  FROM batch_assignments WHERE batch_id = $1 ORDER BY id`, batchID)
	if err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		a := batch.Assignment{}
		var snapPrice, snapLife *float64
		err = rows.Scan(&a.PrinterID, &a.PrinterTypeID, &a.UnitsQty, &a.HoursPerUnit, &snapPrice, &snapLife)
		if err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		if snapPrice != nil && snapLife != nil {
			a.Snapshot = &costing.Economics{Price: *snapPrice, LifeHours: *snapLife}
		}
		assignments = append(assignments, a)
	}

	m.Complete(nil)
	return assignments, nil
}

func (d *dbRepo) GetPrintingHolder(ctx context.Context, printerID int64, excludeBatchID string, options ...core.QueryOptions) (string, error) {
	m := db.StartMetric("GetPrintingHolder")
	tx, _ := db.GetQueryOptions(d.conn, options...)

	var holder string
	err := tx.QueryRow(ctx, `
	SELECT b.id
	  FROM batches b
	  JOIN batch_assignments a ON a.batch_id = b.id
	 WHERE a.printer_id = $1 AND b.status = 'printing' AND b.id <> $2
	 LIMIT 1`, printerID, excludeBatchID).Scan(&holder)

	m.Complete(err)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", errors.WithStack(core.ErrNotFound)
		}
		return "", errors.WithStack(err)
	}
	return holder, nil
}

func (d *dbRepo) SaveLineItems(ctx context.Context, batchID string, lines []batch.LineItem, options ...core.UpdateOptions) error {
	m := db.StartMetric("SaveLineItems")
	tx := db.GetUpdateOptions(d.conn, options...)

	if _, err := tx.Exec(ctx, `DELETE FROM batch_line_items WHERE batch_id = $1;`, batchID); err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	for _, l := range lines {
		_, err := tx.Exec(ctx, `
		INSERT INTO batch_line_items (batch_id, product_id, quantity) VALUES ($1, $2, $3);`,
			batchID, l.ProductID, l.Quantity)
		if err != nil {
			m.Complete(err)
			return errors.WithStack(err)
		}
	}

	m.Complete(nil)
	return nil
}

func (d *dbRepo) SaveAssignments(ctx context.Context, batchID string, assignments []batch.Assignment, options ...core.UpdateOptions) error {
	m := db.StartMetric("SaveAssignments")
	tx := db.GetUpdateOptions(d.conn, options...)

	if _, err := tx.Exec(ctx, `DELETE FROM batch_assignments WHERE batch_id = $1;`, batchID); err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	for _, a := range assignments {
		var snapPrice, snapLife *float64
		if a.Snapshot != nil {
			snapPrice = &a.Snapshot.Price
			snapLife = &a.Snapshot.LifeHours
		}
		_, err := tx.Exec(ctx, `
		INSERT INTO batch_assignments (batch_id, printer_id, printer_type_id, units_qty, hours_per_unit, snap_price, snap_life_hours)
		                       VALUES ($1, $2, $3, $4, $5, $6, $7);`,
			batchID, a.PrinterID, a.PrinterTypeID, a.UnitsQty, a.HoursPerUnit, snapPrice, snapLife)
		if err != nil {
			m.Complete(err)
			return errors.WithStack(err)
		}
	}

	m.Complete(nil)
	return nil
}

func (d *dbRepo) DeleteBatch(ctx context.Context, id string, options ...core.UpdateOptions) error {
	m := db.StartMetric("DeleteBatch")
	tx := db.GetUpdateOptions(d.conn, options...)

	if _, err := tx.Exec(ctx, `DELETE FROM batch_line_items WHERE batch_id = $1;`, id); err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM batch_assignments WHERE batch_id = $1;`, id); err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}

	_, err := tx.Exec(ctx, `DELETE FROM batches WHERE id = $1;`, id)
	m.Complete(err)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (d *dbRepo) BeginTransaction(ctx context.Context) (core.Transaction, error) {
	tx, err := d.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
