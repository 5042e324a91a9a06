package matrepo

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/material"
	"github.com/sksmith/print-factory/db"
)

type dbRepo struct {
	conn core.Conn
}

func NewPostgresRepo(conn core.Conn) material.Repository {
	return &dbRepo{
		conn: conn,
	}
}

func (d *dbRepo) SaveMaterial(ctx context.Context, m *material.Material, options ...core.UpdateOptions) error {
	mt := db.StartMetric("SaveMaterial")
	tx := db.GetUpdateOptions(d.conn, options...)

	if m.ID == 0 {
		err := tx.QueryRow(ctx, `
		INSERT INTO materials (color, brand, composition, on_hand_kg, avg_cost_kg, threshold_kg, created)
		              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id;`,
			m.Color, m.Brand, m.Composition, m.OnHandKg, m.AvgCostKg, m.ThresholdKg, m.Created).Scan(&m.ID)
		if err != nil {
			mt.Complete(err)
			return errors.WithStack(err)
		}
		mt.Complete(nil)
		return nil
	}

	_, err := tx.Exec(ctx, `
		UPDATE materials
		   SET color = $2, brand = $3, composition = $4, on_hand_kg = $5, avg_cost_kg = $6, threshold_kg = $7
		 WHERE id = $1;`,
		m.ID, m.Color, m.Brand, m.Composition, m.OnHandKg, m.AvgCostKg, m.ThresholdKg)
	if err != nil {
		mt.Complete(err)
		return errors.WithStack(err)
	}
	mt.Complete(nil)
	return nil
}

func (d *dbRepo) GetMaterial(ctx context.Context, id int64, options ...core.QueryOptions) (material.Material, error) {
	mt := db.StartMetric("GetMaterial")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	m := material.Material{}
	err := tx.QueryRow(ctx, `SELECT id, color, brand, composition, on_hand_kg, avg_cost_kg, threshold_kg, created FROM materials WHERE id = $1 `+forUpdate, id).
		Scan(&m.ID, &m.Color, &m.Brand, &m.Composition, &m.OnHandKg, &m.AvgCostKg, &m.ThresholdKg, &m.Created)

	if err != nil {
		mt.Complete(err)
		if err == pgx.ErrNoRows {
			return m, errors.WithStack(core.ErrNotFound)
		}
		return m, errors.WithStack(err)
	}

	mt.Complete(nil)
	return m, nil
}

func (d *dbRepo) GetMaterialByAttrs(ctx context.Context, color, brand, composition string, options ...core.QueryOptions) (material.Material, error) {
	mt := db.StartMetric("GetMaterialByAttrs")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	m := material.Material{}
	err := tx.QueryRow(ctx,
		`SELECT id, color, brand, composition, on_hand_kg, avg_cost_kg, threshold_kg, created FROM materials WHERE color = $1 AND brand = $2 AND composition = $3 `+forUpdate,
		color, brand, composition).
		Scan(&m.ID, &m.Color, &m.Brand, &m.Composition, &m.OnHandKg, &m.AvgCostKg, &m.ThresholdKg, &m.Created)

	if err != nil {
		mt.Complete(err)
		if err == pgx.ErrNoRows {
			return m, errors.WithStack(core.ErrNotFound)
		}
		return m, errors.WithStack(err)
	}

	mt.Complete(nil)
	return m, nil
}

func (d *dbRepo) GetAllMaterials(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]material.Material, error) {
	mt := db.StartMetric("GetAllMaterials")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	materials := make([]material.Material, 0)
	rows, err := tx.Query(ctx,
		`SELECT id, color, brand, composition, on_hand_kg, avg_cost_kg, threshold_kg, created FROM materials ORDER BY brand, color LIMIT $1 OFFSET $2 `+forUpdate,
		limit, offset)
	if err != nil {
		mt.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		m := material.Material{}
		err = rows.Scan(&m.ID, &m.Color, &m.Brand, &m.Composition, &m.OnHandKg, &m.AvgCostKg, &m.ThresholdKg, &m.Created)
		if err != nil {
			mt.Complete(err)
			return nil, errors.WithStack(err)
		}
		materials = append(materials, m)
	}

	mt.Complete(nil)
	return materials, nil
}

func (d *dbRepo) MaterialInUse(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error) {
	mt := db.StartMetric("MaterialInUse")
	tx, _ := db.GetQueryOptions(d.conn, options...)

	var count int
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM product_materials WHERE material_id = $1`, id).Scan(&count)
	if err != nil {
		mt.Complete(err)
		return false, errors.WithStack(err)
	}

	mt.Complete(nil)
	return count > 0, nil
}

func (d *dbRepo) DeleteMaterial(ctx context.Context, id int64, options ...core.UpdateOptions) error {
	mt := db.StartMetric("DeleteMaterial")
	tx := db.GetUpdateOptions(d.conn, options...)

	_, err := tx.Exec(ctx, `DELETE FROM materials WHERE id = $1;`, id)
	mt.Complete(err)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (d *dbRepo) SavePurchase(ctx context.Context, p *material.Purchase, options ...core.UpdateOptions) error {
	mt := db.StartMetric("SavePurchase")
	tx := db.GetUpdateOptions(d.conn, options...)

	insert := `INSERT INTO purchases (material_id, quantity_kg, cost_per_kg, purchased_at, channel, notes)
	                  VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;`

	err := tx.QueryRow(ctx, insert, p.MaterialID, p.QuantityKg, p.CostPerKg, p.PurchasedAt, p.Channel, p.Notes).Scan(&p.ID)
	if err != nil {
		mt.Complete(err)
		return errors.WithStack(err)
	}
	mt.Complete(nil)
	return nil
}

func (d *dbRepo) GetPurchase(ctx context.Context, id int64, options ...core.QueryOptions) (material.Purchase, error) {
	mt := db.StartMetric("GetPurchase")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	p := material.Purchase{}
	err := tx.QueryRow(ctx, `SELECT id, material_id, quantity_kg, cost_per_kg, purchased_at, channel, notes FROM purchases WHERE id = $1 `+forUpdate, id).
		Scan(&p.ID, &p.MaterialID, &p.QuantityKg, &p.CostPerKg, &p.PurchasedAt, &p.Channel, &p.Notes)

	if err != nil {
		mt.Complete(err)
		if err == pgx.ErrNoRows {
			return p, errors.WithStack(core.ErrNotFound)
		}
		return p, errors.WithStack(err)
	}

	mt.Complete(nil)
	return p, nil
}

func (d *dbRepo) GetPurchases(ctx context.Context, materialID int64, limit, offset int, options ...core.QueryOptions) ([]material.Purchase, error) {
	mt := db.StartMetric("GetPurchases")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	purchases := make([]material.Purchase, 0)
	rows, err := tx.Query(ctx,
		`SELECT id, material_id, quantity_kg, cost_per_kg, purchased_at, channel, notes FROM purchases WHERE material_id = $1 ORDER BY purchased_at DESC LIMIT $2 OFFSET $3 `+forUpdate,
		materialID, limit, offset)
	if err != nil {
		mt.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		p := material.Purchase{}
		err = rows.Scan(&p.ID, &p.MaterialID, &p.QuantityKg, &p.CostPerKg, &p.PurchasedAt, &p.Channel, &p.Notes)
		if err != nil {
			mt.Complete(err)
			return nil, errors.WithStack(err)
		}
		purchases = append(purchases, p)
	}

	mt.Complete(nil)
	return purchases, nil
}

func (d *dbRepo) DeletePurchase(ctx context.Context, id int64, options ...core.UpdateOptions) error {
	mt := db.StartMetric("DeletePurchase")
	tx := db.GetUpdateOptions(d.conn, options...)

	_, err := tx.Exec(ctx, `DELETE FROM purchases WHERE id = $1;`, id)
	mt.Complete(err)
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
