package prodrepo

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/product"
	"github.com/sksmith/print-factory/db"
)

type dbRepo struct {
	conn core.Conn
}

func NewPostgresRepo(conn core.Conn) product.Repository {
	return &dbRepo{
		conn: conn,
	}
}

func (d *dbRepo) SaveProduct(ctx context.Context, p *product.Product, options ...core.UpdateOptions) error {
	m := db.StartMetric("SaveProduct")
	tx := db.GetUpdateOptions(d.conn, options...)

	if p.ID == 0 {
		err := tx.QueryRow(ctx, `
		INSERT INTO products (sku, name, print_time_hours, fixed_cost, created)
		              VALUES ($1, $2, $3, $4, $5) RETURNING id;`,
			p.Sku, p.Name, p.PrintTimeHours, p.FixedCost, p.Created).Scan(&p.ID)
		if err != nil {
			m.Complete(err)
			return errors.WithStack(err)
		}
	} else {
		_, err := tx.Exec(ctx, `
		UPDATE products
		   SET name = $2, print_time_hours = $3, fixed_cost = $4
		 WHERE id = $1;`,
			p.ID, p.Name, p.PrintTimeHours, p.FixedCost)
		if err != nil {
			m.Complete(err)
			return errors.WithStack(err)
		}
	}

	// Material usages are replaced wholesale; the product owns them.
	if _, err := tx.Exec(ctx, `DELETE FROM product_materials WHERE product_id = $1;`, p.ID); err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	for _, u := range p.Materials {
		_, err := tx.Exec(ctx, `
		INSERT INTO product_materials (product_id, material_id, grams)
		              VALUES ($1, $2, $3);`,
			p.ID, u.MaterialID, u.Grams)
		if err != nil {
			m.Complete(err)
			return errors.WithStack(err)
		}
	}

	m.Complete(nil)
	return nil
}

func (d *dbRepo) GetProduct(ctx context.Context, sku string, options ...core.QueryOptions) (product.Product, error) {
	m := db.StartMetric("GetProduct")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	p := product.Product{}
	err := tx.QueryRow(ctx, `SELECT id, sku, name, print_time_hours, fixed_cost, created FROM products WHERE sku = $1 `+forUpdate, sku).
		Scan(&p.ID, &p.Sku, &p.Name, &p.PrintTimeHours, &p.FixedCost, &p.Created)

	if err != nil {
		m.Complete(err)
		if err == pgx.ErrNoRows {
			return p, errors.WithStack(core.ErrNotFound)
		}
		return p, errors.WithStack(err)
	}

	if p.Materials, err = d.getUsages(ctx, tx, p.ID); err != nil {
		m.Complete(err)
		return p, err
	}

	m.Complete(nil)
	return p, nil
}

func (d *dbRepo) GetProductByID(ctx context.Context, id int64, options ...core.QueryOptions) (product.Product, error) {
	m := db.StartMetric("GetProductByID")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	p := product.Product{}
	err := tx.QueryRow(ctx, `SELECT id, sku, name, print_time_hours, fixed_cost, created FROM products WHERE id = $1 `+forUpdate, id).
		Scan(&p.ID, &p.Sku, &p.Name, &p.PrintTimeHours, &p.FixedCost, &p.Created)

	if err != nil {
		m.Complete(err)
		if err == pgx.ErrNoRows {
			return p, errors.WithStack(core.ErrNotFound)
		}
		return p, errors.WithStack(err)
	}

	if p.Materials, err = d.getUsages(ctx, tx, p.ID); err != nil {
		m.Complete(err)
		return p, err
	}

	m.Complete(nil)
	return p, nil
}

func (d *dbRepo) getUsages(ctx context.Context, tx core.Conn, productID int64) ([]product.MaterialUsage, error) {
	usages := make([]product.MaterialUsage, 0)
	rows, err := tx.Query(ctx, `SELECT material_id, grams FROM product_materials WHERE product_id = $1 ORDER BY material_id`, productID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		u := product.MaterialUsage{}
		if err = rows.Scan(&u.MaterialID, &u.Grams); err != nil {
			return nil, errors.WithStack(err)
		}
		usages = append(usages, u)
	}

	return usages, nil
}

func (d *dbRepo) GetAllProducts(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]product.Product, error) {
	m := db.StartMetric("GetAllProducts")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	products := make([]product.Product, 0)
	rows, err := tx.Query(ctx,
		`SELECT id, sku, name, print_time_hours, fixed_cost, created FROM products ORDER BY sku LIMIT $1 OFFSET $2 `+forUpdate,
		limit, offset)
	if err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		p := product.Product{}
		err = rows.Scan(&p.ID, &p.Sku, &p.Name, &p.PrintTimeHours, &p.FixedCost, &p.Created)
		if err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		products = append(products, p)
	}
	rows.Close()

	for i := range products {
		if products[i].Materials, err = d.getUsages(ctx, tx, products[i].ID); err != nil {
			m.Complete(err)
			return nil, err
		}
	}

	m.Complete(nil)
	return products, nil
}

func (d *dbRepo) ProductInUse(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error) {
	m := db.StartMetric("ProductInUse")
	tx, _ := db.GetQueryOptions(d.conn, options...)

	var count int
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM batch_line_items WHERE product_id = $1`, id).Scan(&count)
	if err != nil {
		m.Complete(err)
		return false, errors.WithStack(err)
	}

	m.Complete(nil)
	return count > 0, nil
}

func (d *dbRepo) DeleteProduct(ctx context.Context, id int64, options ...core.UpdateOptions) error {
	m := db.StartMetric("DeleteProduct")
	tx := db.GetUpdateOptions(d.conn, options...)

	if _, err := tx.Exec(ctx, `DELETE FROM product_materials WHERE product_id = $1;`, id); err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}

	_, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1;`, id)
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
