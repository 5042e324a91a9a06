package equiprepo

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/equipment"
	"github.com/sksmith/print-factory/db"
)

type dbRepo struct {
	conn core.Conn
}

func NewPostgresRepo(conn core.Conn) equipment.Repository {
	return &dbRepo{
		conn: conn,
	}
}

func (d *dbRepo) SavePrinterType(ctx context.Context, t *equipment.PrinterType, options ...core.UpdateOptions) error {
	m := db.StartMetric("SavePrinterType")
	tx := db.GetUpdateOptions(d.conn, options...)

	if t.ID == 0 {
		err := tx.QueryRow(ctx, `
		INSERT INTO printer_types (brand, model, life_hours)
		                   VALUES ($1, $2, $3) RETURNING id;`,
			t.Brand, t.Model, t.LifeHours).Scan(&t.ID)
		m.Complete(err)
		if err != nil {
			return errors.WithStack(err)
		}
		return nil
	}

	_, err := tx.Exec(ctx, `
	UPDATE printer_types SET brand = $2, model = $3, life_hours = $4 WHERE id = $1;`,
		t.ID, t.Brand, t.Model, t.LifeHours)
	m.Complete(err)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (d *dbRepo) GetPrinterType(ctx context.Context, id int64, options ...core.QueryOptions) (equipment.PrinterType, error) {
	m := db.StartMetric("GetPrinterType")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	t := equipment.PrinterType{}
	err := tx.QueryRow(ctx, `SELECT id, brand, model, life_hours FROM printer_types WHERE id = $1 `+forUpdate, id).
		Scan(&t.ID, &t.Brand, &t.Model, &t.LifeHours)

	m.Complete(err)
	if err != nil {
		if err == pgx.ErrNoRows {
			return t, errors.WithStack(core.ErrNotFound)
		}
		return t, errors.WithStack(err)
	}
	return t, nil
}

func (d *dbRepo) GetPrinterTypeByModel(ctx context.Context, brand, model string, options ...core.QueryOptions) (equipment.PrinterType, error) {
	m := db.StartMetric("GetPrinterTypeByModel")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	t := equipment.PrinterType{}
	err := tx.QueryRow(ctx, `SELECT id, brand, model, life_hours FROM printer_types WHERE brand = $1 AND model = $2 `+forUpdate, brand, model).
		Scan(&t.ID, &t.Brand, &t.Model, &t.LifeHours)

	m.Complete(err)
	if err != nil {
		if err == pgx.ErrNoRows {
			return t, errors.WithStack(core.ErrNotFound)
		}
		return t, errors.WithStack(err)
	}
	return t, nil
}

func (d *dbRepo) GetAllPrinterTypes(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]equipment.PrinterType, error) {
	m := db.StartMetric("GetAllPrinterTypes")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	types := make([]equipment.PrinterType, 0)
	rows, err := tx.Query(ctx,
		`SELECT id, brand, model, life_hours FROM printer_types ORDER BY brand, model LIMIT $1 OFFSET $2 `+forUpdate,
		limit, offset)
	if err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		t := equipment.PrinterType{}
		if err = rows.Scan(&t.ID, &t.Brand, &t.Model, &t.LifeHours); err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		types = append(types, t)
	}

	m.Complete(nil)
	return types, nil
}

func (d *dbRepo) SavePrinter(ctx context.Context, p *equipment.Printer, options ...core.UpdateOptions) error {
	m := db.StartMetric("SavePrinter")
	tx := db.GetUpdateOptions(d.conn, options...)

	if p.ID == 0 {
		err := tx.QueryRow(ctx, `
		INSERT INTO printers (type_id, name, normalized_name, price, usage_hours, status, created)
		              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id;`,
			p.TypeID, p.Name, equipment.NormalizeName(p.Name), p.Price, p.UsageHours, p.Status, p.Created).Scan(&p.ID)
		m.Complete(err)
		if err != nil {
			return errors.WithStack(err)
		}
		return nil
	}

	_, err := tx.Exec(ctx, `
	UPDATE printers
	   SET type_id = $2, name = $3, normalized_name = $4, price = $5, usage_hours = $6, status = $7
	 WHERE id = $1;`,
		p.ID, p.TypeID, p.Name, equipment.NormalizeName(p.Name), p.Price, p.UsageHours, p.Status)
	m.Complete(err)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (d *dbRepo) GetPrinter(ctx context.Context, id int64, options ...core.QueryOptions) (equipment.Printer, error) {
	m := db.StartMetric("GetPrinter")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	p := equipment.Printer{}
	err := tx.QueryRow(ctx,
		`SELECT id, type_id, name, price, usage_hours, status, created FROM printers WHERE id = $1 `+forUpdate, id).
		Scan(&p.ID, &p.TypeID, &p.Name, &p.Price, &p.UsageHours, &p.Status, &p.Created)

	m.Complete(err)
	if err != nil {
		if err == pgx.ErrNoRows {
			return p, errors.WithStack(core.ErrNotFound)
		}
		return p, errors.WithStack(err)
	}
	return p, nil
}

func (d *dbRepo) GetPrinterByName(ctx context.Context, normalizedName string, options ...core.QueryOptions) (equipment.Printer, error) {
	m := db.StartMetric("GetPrinterByName")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	p := equipment.Printer{}
	err := tx.QueryRow(ctx,
		`SELECT id, type_id, name, price, usage_hours, status, created FROM printers WHERE normalized_name = $1 `+forUpdate, normalizedName).
		Scan(&p.ID, &p.TypeID, &p.Name, &p.Price, &p.UsageHours, &p.Status, &p.Created)

	m.Complete(err)
	if err != nil {
		if err == pgx.ErrNoRows {
			return p, errors.WithStack(core.ErrNotFound)
		}
		return p, errors.WithStack(err)
	}
	return p, nil
}

func (d *dbRepo) GetAllPrinters(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]equipment.Printer, error) {
	m := db.StartMetric("GetAllPrinters")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	printers := make([]equipment.Printer, 0)
	rows, err := tx.Query(ctx,
		`SELECT id, type_id, name, price, usage_hours, status, created FROM printers ORDER BY id LIMIT $1 OFFSET $2 `+forUpdate,
		limit, offset)
	if err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		p := equipment.Printer{}
		err = rows.Scan(&p.ID, &p.TypeID, &p.Name, &p.Price, &p.UsageHours, &p.Status, &p.Created)
		if err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		printers = append(printers, p)
	}

	m.Complete(nil)
	return printers, nil
}

func (d *dbRepo) DeletePrinter(ctx context.Context, id int64, options ...core.UpdateOptions) error {
	m := db.StartMetric("DeletePrinter")
	tx := db.GetUpdateOptions(d.conn, options...)

	_, err := tx.Exec(ctx, `DELETE FROM printers WHERE id = $1;`, id)
	m.Complete(err)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (d *dbRepo) SaveUsageRecord(ctx context.Context, r *equipment.UsageRecord, options ...core.UpdateOptions) error {
	m := db.StartMetric("SaveUsageRecord")
	tx := db.GetUpdateOptions(d.conn, options...)

	err := tx.QueryRow(ctx, `
	INSERT INTO usage_records (printer_id, batch_id, hours, year, month, created)
	                   VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;`,
		r.PrinterID, r.BatchID, r.Hours, r.Year, r.Month, r.Created).Scan(&r.ID)
	m.Complete(err)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (d *dbRepo) GetUsageRecords(ctx context.Context, printerID int64, limit, offset int, options ...core.QueryOptions) ([]equipment.UsageRecord, error) {
	m := db.StartMetric("GetUsageRecords")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	records := make([]equipment.UsageRecord, 0)
	rows, err := tx.Query(ctx, `
	SELECT id, printer_id, batch_id, hours, year, month, created
	  FROM usage_records WHERE printer_id = $1
	 ORDER BY created DESC LIMIT $2 OFFSET $3 `+forUpdate,
		printerID, limit, offset)
	if err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		r := equipment.UsageRecord{}
		err = rows.Scan(&r.ID, &r.PrinterID, &r.BatchID, &r.Hours, &r.Year, &r.Month, &r.Created)
		if err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		records = append(records, r)
	}

	m.Complete(nil)
	return records, nil
}

func (d *dbRepo) DeleteUsageRecordsForBatch(ctx context.Context, batchID string, options ...core.UpdateOptions) error {
	m := db.StartMetric("DeleteUsageRecordsForBatch")
	tx := db.GetUpdateOptions(d.conn, options...)

	_, err := tx.Exec(ctx, `DELETE FROM usage_records WHERE batch_id = $1;`, batchID)
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
