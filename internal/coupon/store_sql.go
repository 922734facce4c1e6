package coupon

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Create(ctx context.Context, c Coupon) error {
	ids, err := json.Marshal(nonNil(c.CourseIDs))
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO coupons
		(code,type,value,course_ids_json,valid_from,valid_until,max_uses,used_count,is_active,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (code) DO NOTHING`,
		c.Code, string(c.Type), c.Value, string(ids), nullInt(c.ValidFrom), nullInt(c.ValidUntil),
		c.MaxUses, c.UsedCount, c.IsActive, c.CreatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Validation("coupon %q already exists", c.Code)
	}
	return nil
}

const couponCols = `code,type,value,course_ids_json,valid_from,valid_until,max_uses,used_count,is_active,created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCoupon(r rowScanner) (Coupon, error) {
	var (
		c        Coupon
		typ, ids string
		from, to sql.NullInt64
	)
	if err := r.Scan(&c.Code, &typ, &c.Value, &ids, &from, &to, &c.MaxUses, &c.UsedCount, &c.IsActive, &c.CreatedAt); err != nil {
		return Coupon{}, err
	}
	c.Type = Type(typ)
	if err := json.Unmarshal([]byte(ids), &c.CourseIDs); err != nil {
		return Coupon{}, err
	}
	if from.Valid {
		v := from.Int64
		c.ValidFrom = &v
	}
	if to.Valid {
		v := to.Int64
		c.ValidUntil = &v
	}
	return c, nil
}

func (s *SQLStore) Get(ctx context.Context, code string) (Coupon, error) {
	c, err := scanCoupon(s.db.QueryRowContext(ctx, `SELECT `+couponCols+` FROM coupons WHERE code=$1`, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Coupon{}, apperr.NotFound("coupon not found")
		}
		return Coupon{}, err
	}
	return c, nil
}

func (s *SQLStore) List(ctx context.Context) ([]Coupon, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+couponCols+` FROM coupons ORDER BY created_at DESC, code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Coupon, 0, 16)
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) IncrementUse(ctx context.Context, code string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE coupons SET used_count = used_count + 1
		WHERE code=$1 AND is_active=$2 AND (max_uses = 0 OR used_count < max_uses)`, code, true)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
