package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/strategic-ledger/internal/domain"
	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
	"github.com/jhoicas/strategic-ledger/internal/domain/repository"
)

var (
	_ repository.ResourceRepository        = (*ResourceRepo)(nil)
	_ repository.ResourceBalanceRepository = (*ResourceBalanceRepo)(nil)
)

const resourceColumns = `r.id, r.slug, r.name, r.description, r.department_id,
	r.initial_balance, r.current_balance, r.status, r.created_by, r.created_at, r.updated_at`

// ResourceRepo implementación de ResourceRepository sobre PostgreSQL (usable con pool o tx).
type ResourceRepo struct {
	q Querier
}

// NewResourceRepository construye el adaptador de recursos. Pasar pool o tx (Querier).
func NewResourceRepository(q Querier) *ResourceRepo {
	return &ResourceRepo{q: q}
}

// Create persiste un recurso nuevo. Un slug repetido devuelve domain.ErrDuplicate.
func (r *ResourceRepo) Create(ctx context.Context, res *entity.Resource) error {
	query := `
		INSERT INTO resources (id, slug, name, description, department_id,
			initial_balance, current_balance, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		res.ID, res.Slug, res.Name, res.Description, res.DepartmentID,
		res.InitialBalance, res.CurrentBalance, string(res.Status), res.CreatedBy,
		res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert resource: %w: slug %q", domain.ErrDuplicate, res.Slug)
		}
		return translate("insert resource", err)
	}
	return nil
}

// GetByID obtiene un recurso por ID. (nil, nil) si no existe.
func (r *ResourceRepo) GetByID(ctx context.Context, id string) (*entity.Resource, error) {
	return r.getOne(ctx, `SELECT `+resourceColumns+` FROM resources r WHERE r.id = $1`, id)
}

// GetBySlug obtiene un recurso por slug. (nil, nil) si no existe.
func (r *ResourceRepo) GetBySlug(ctx context.Context, slug string) (*entity.Resource, error) {
	return r.getOne(ctx, `SELECT `+resourceColumns+` FROM resources r WHERE r.slug = $1`, slug)
}

func (r *ResourceRepo) getOne(ctx context.Context, query string, arg any) (*entity.Resource, error) {
	res, err := scanResource(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translate("get resource", err)
	}
	return res, nil
}

// List devuelve la página pedida y el total de filas que cumplen el filtro.
func (r *ResourceRepo) List(ctx context.Context, f repository.ResourceFilter) ([]*entity.ResourceSummary, int, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != nil {
		args = append(args, string(*f.Status))
		where = append(where, fmt.Sprintf("r.status = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, likePattern(s))
		n := len(args)
		where = append(where, fmt.Sprintf("(r.name ILIKE $%d OR r.slug ILIKE $%d OR d.name ILIKE $%d)", n, n, n))
	}
	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM resources r LEFT JOIN departments d ON d.id = r.department_id ` + clause
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, translate("count resources", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, f.Offset)
	query := fmt.Sprintf(`
		SELECT %s, COALESCE(d.name, ''),
			(SELECT COUNT(*) FROM movements m WHERE m.resource_id = r.id)
		FROM resources r
		LEFT JOIN departments d ON d.id = r.department_id
		%s
		ORDER BY r.created_at DESC, r.id
		LIMIT $%d OFFSET $%d`, resourceColumns, clause, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, translate("list resources", err)
	}
	defer rows.Close()

	out := make([]*entity.ResourceSummary, 0, limit)
	for rows.Next() {
		var (
			s      entity.ResourceSummary
			status string
		)
		if err := rows.Scan(
			&s.ID, &s.Slug, &s.Name, &s.Description, &s.DepartmentID,
			&s.InitialBalance, &s.CurrentBalance, &status, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
			&s.DepartmentName, &s.MovementCount,
		); err != nil {
			return nil, 0, translate("scan resource", err)
		}
		s.Status = entity.ResourceStatus(status)
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate("list resources", err)
	}
	return out, total, nil
}

// ResourceBalanceRepo operaciones sobre el saldo; solo se construye con la tx del TxRunner.
type ResourceBalanceRepo struct {
	tx pgx.Tx
}

// GetForUpdate lee el recurso y bloquea su fila (SELECT FOR UPDATE). (nil, nil) si no existe.
func (r *ResourceBalanceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources r WHERE r.id = $1 FOR UPDATE`
	res, err := scanResource(r.tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translate("lock resource", err)
	}
	return res, nil
}

// UpdateBalance escribe el nuevo saldo. La fila debe estar bloqueada por GetForUpdate.
func (r *ResourceBalanceRepo) UpdateBalance(ctx context.Context, id string, newBalance decimal.Decimal, updatedAt time.Time) error {
	cmd, err := r.tx.Exec(ctx,
		`UPDATE resources SET current_balance = $2, updated_at = $3 WHERE id = $1`,
		id, newBalance, updatedAt,
	)
	if err != nil {
		return translate("update balance", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update balance: %w", domain.ErrNotFound)
	}
	return nil
}

func scanResource(row pgx.Row) (*entity.Resource, error) {
	var (
		res    entity.Resource
		status string
	)
	if err := row.Scan(
		&res.ID, &res.Slug, &res.Name, &res.Description, &res.DepartmentID,
		&res.InitialBalance, &res.CurrentBalance, &status, &res.CreatedBy, &res.CreatedAt, &res.UpdatedAt,
	); err != nil {
		return nil, err
	}
	res.Status = entity.ResourceStatus(status)
	return &res, nil
}
