package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/architeacher/catalog/internal/domain/model"
	"github.com/architeacher/catalog/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	productsTable = "products"

	uniqueViolationCode = "23505"
)

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	productColumns = []string{"id", "name", "color", "size", "price", "created_at"}

	schemaStatements = []string{
		`CREATE TABLE IF NOT EXISTS products (
			id         UUID PRIMARY KEY,
			name       TEXT NOT NULL,
			color      TEXT NOT NULL CHECK (color IN ('red', 'green', 'blue')),
			size       TEXT NOT NULL CHECK (size IN ('small', 'medium', 'large')),
			price      DOUBLE PRECISION NOT NULL CHECK (price >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS products_color_size_idx ON products (color, size)`,
		`CREATE INDEX IF NOT EXISTS products_price_idx ON products (price)`,
		`CREATE INDEX IF NOT EXISTS products_created_at_idx ON products (created_at, id)`,
	}
)

type (
	// PoolOps defines the subset of pgxpool.Pool the repository needs.
	PoolOps interface {
		Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
		Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
		Ping(ctx context.Context) error
	}

	// ProductsRepository stores products in PostgreSQL and evaluates
	// specifications as SQL.
	ProductsRepository struct {
		pool       PoolOps
		scanner    Scanner
		logger     logger.Logger
		translator *CriteriaTranslator
	}

	productRow struct {
		ID        string    `db:"id"`
		Name      string    `db:"name"`
		Color     string    `db:"color"`
		Size      string    `db:"size"`
		Price     float64   `db:"price"`
		CreatedAt time.Time `db:"created_at"`
	}

	productRowWithCount struct {
		productRow
		TotalCount uint `db:"total_count"`
	}

	countRow struct {
		Count uint `db:"count"`
	}
)

func NewProductsRepository(
	pool PoolOps,
	scanner Scanner,
	translator *CriteriaTranslator,
	log logger.Logger,
) *ProductsRepository {
	return &ProductsRepository{
		pool:       pool,
		scanner:    scanner,
		translator: translator,
		logger:     log,
	}
}

// EnsureSchema creates the products table and its indexes when missing.
func (r *ProductsRepository) EnsureSchema(ctx context.Context) error {
	for _, statement := range schemaStatements {
		if _, err := r.pool.Exec(ctx, statement); err != nil {
			return fmt.Errorf("%w: applying schema: %v", model.ErrDatabaseQuery, err)
		}
	}

	return nil
}

func (r *ProductsRepository) Save(ctx context.Context, product model.Product) error {
	query, args, err := psql.Insert(productsTable).
		Columns(productColumns...).
		Values(
			product.ID.String(),
			product.Name,
			product.Color.String(),
			product.Size.String(),
			product.Price,
			product.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err = r.pool.Exec(ctx, query, args...); err != nil {
		if isDuplicateKeyError(err) {
			return model.ErrDuplicateProduct
		}

		return fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}

	return nil
}

func (r *ProductsRepository) FetchByID(ctx context.Context, id model.ProductID) (model.Product, error) {
	query, args, err := psql.Select(productColumns...).
		From(productsTable).
		Where(sq.Eq{"id": id.String()}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return model.Product{}, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}
	defer rows.Close()

	var row productRow
	if err := r.scanner.ScanOne(&row, rows); err != nil {
		if r.scanner.IsNotFound(err) {
			return model.Product{}, model.ErrProductNotFound
		}

		return model.Product{}, fmt.Errorf("%w: product %s: %v", model.ErrDatabaseQuery, id, err)
	}

	return convertRowToProduct(row)
}

func (r *ProductsRepository) FindByCriteria(ctx context.Context, criteria model.Criteria) ([]model.Product, uint, error) {
	columns := append(append([]string{}, productColumns...), "COUNT(*) OVER() AS total_count")

	selectBuilder, err := r.translator.ApplyToSelect(psql.Select(columns...).From(productsTable), criteria)
	if err != nil {
		return nil, 0, err
	}

	products, total, err := r.queryProductsWithCount(ctx, selectBuilder)
	if err != nil {
		return nil, 0, err
	}

	// A page past the end returns no rows and thus no window count.
	if len(products) == 0 && criteria.HasPagination() && criteria.Offset() > 0 {
		total, err = r.count(ctx, criteria)
		if err != nil {
			return nil, 0, err
		}
	}

	return products, total, nil
}

func (r *ProductsRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *ProductsRepository) count(ctx context.Context, criteria model.Criteria) (uint, error) {
	builder, err := r.translator.ApplyConditionsOnly(psql.Select("COUNT(*) AS count").From(productsTable), criteria)
	if err != nil {
		return 0, err
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}
	defer rows.Close()

	var row countRow
	if err := r.scanner.ScanOne(&row, rows); err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}

	return row.Count, nil
}

func (r *ProductsRepository) queryProductsWithCount(ctx context.Context, builder sq.SelectBuilder) ([]model.Product, uint, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build select query: %w", err)
	}

	r.logger.Debug().Str("query", query).Int("args", len(args)).Msg("filtering products")

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}
	defer rows.Close()

	var productRows []productRowWithCount
	if err := r.scanner.ScanAll(&productRows, rows); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}

	products := make([]model.Product, 0, len(productRows))
	if len(productRows) == 0 {
		return products, 0, nil
	}

	for index := range productRows {
		product, err := convertRowToProduct(productRows[index].productRow)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
		}

		products = append(products, product)
	}

	return products, productRows[0].TotalCount, nil
}

func convertRowToProduct(row productRow) (model.Product, error) {
	id, err := model.ParseProductID(row.ID)
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to parse product ID: %w", err)
	}

	color, err := model.ParseColor(row.Color)
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to parse product color: %w", err)
	}

	size, err := model.ParseSize(row.Size)
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to parse product size: %w", err)
	}

	return model.Product{
		ID:        id,
		Name:      row.Name,
		Color:     color,
		Size:      size,
		Price:     row.Price,
		CreatedAt: row.CreatedAt,
	}, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
