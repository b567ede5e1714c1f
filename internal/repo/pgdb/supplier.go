package pgdb

import (
	"context"
	"database/sql"

	"pooled-auction-api/internal/entity"
	"pooled-auction-api/internal/repo/repo_errors"
	"pooled-auction-api/pkg/postgres"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type SupplierRepo struct {
	*postgres.Postgres
}

func NewSupplierRepo(pgdb *postgres.Postgres) *SupplierRepo {
	return &SupplierRepo{pgdb}
}

func (r *SupplierRepo) GetSupplierById(ctx context.Context, id uuid.UUID) (*entity.Supplier, error) {
	sqlReq, args, _ := r.SqlBuilder.
		Select("user_id", "business_name", "verification_status").
		From("supplier").
		Where("user_id = ?", id).
		ToSql()

	var supplier entity.Supplier
	err := r.Conn(ctx).QueryRowContext(ctx, sqlReq, args...).
		Scan(&supplier.UserId, &supplier.BusinessName, &supplier.VerificationStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, errors.Wrap(err, "select supplier")
	}

	return &supplier, nil
}
