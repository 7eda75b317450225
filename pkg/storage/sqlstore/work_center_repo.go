package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/LENAX/plan-engine/pkg/core/block"
	"github.com/LENAX/plan-engine/pkg/storage"
	"github.com/LENAX/plan-engine/pkg/storage/dao"
)

// ensureUniqueCode 检查编码是否已被其他记录占用
func ensureUniqueCode(ctx context.Context, tx *sqlx.Tx, table, code string, selfID int64) error {
	var n int
	query := tx.Rebind(fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE code = ? AND id <> ?`, table))
	if err := tx.GetContext(ctx, &n, query, code, selfID); err != nil {
		return fmt.Errorf("检查编码失败: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %s", storage.ErrDuplicateCode, code)
	}
	return nil
}

// ensureUnreferenced 检查table中没有column等于id的记录
func ensureUnreferenced(ctx context.Context, tx *sqlx.Tx, table, column string, id int64) error {
	var n int
	query := tx.Rebind(fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, table, column))
	if err := tx.GetContext(ctx, &n, query, id); err != nil {
		return fmt.Errorf("检查引用失败: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %s 中有 %d 条记录引用 ID=%d", storage.ErrInUse, table, n, id)
	}
	return nil
}

// CreateWorkCenter 新建工作中心
func (s *Store) CreateWorkCenter(ctx context.Context, wc *block.WorkCenter) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	if err := ensureUniqueCode(ctx, tx, "work_center", wc.Code, 0); err != nil {
		return err
	}
	row := &dao.WorkCenterDAO{Code: wc.Code, Name: wc.Name, Capacity: wc.Capacity}
	id, err := s.insert(ctx, tx, `INSERT INTO work_center (code, name, capacity) VALUES (:code, :name, :capacity)`, row)
	if err != nil {
		return fmt.Errorf("保存工作中心失败: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	wc.ID = id
	return nil
}

// GetWorkCenter 根据ID查询工作中心
func (s *Store) GetWorkCenter(ctx context.Context, id int64) (*block.WorkCenter, error) {
	var row dao.WorkCenterDAO
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT id, code, name, capacity FROM work_center WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("查询工作中心失败: %w", err)
	}
	return &block.WorkCenter{ID: row.ID, Code: row.Code, Name: row.Name, Capacity: row.Capacity}, nil
}

// UpdateWorkCenter 更新工作中心
func (s *Store) UpdateWorkCenter(ctx context.Context, wc *block.WorkCenter) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	if err := ensureUniqueCode(ctx, tx, "work_center", wc.Code, wc.ID); err != nil {
		return err
	}
	row := &dao.WorkCenterDAO{ID: wc.ID, Code: wc.Code, Name: wc.Name, Capacity: wc.Capacity}
	res, err := tx.NamedExecContext(ctx, `UPDATE work_center SET code = :code, name = :name, capacity = :capacity WHERE id = :id`, row)
	if err != nil {
		return fmt.Errorf("更新工作中心失败: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteWorkCenter 删除工作中心，引用它的Block不再分配工作中心
func (s *Store) DeleteWorkCenter(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE blocks SET work_center_id = NULL WHERE work_center_id = ?`), id); err != nil {
		return fmt.Errorf("解除Block工作中心引用失败: %w", err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM work_center WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("删除工作中心失败: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// ListWorkCenters 按编码返回全部工作中心
func (s *Store) ListWorkCenters(ctx context.Context) ([]*block.WorkCenter, error) {
	var rows []dao.WorkCenterDAO
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, code, name, capacity FROM work_center ORDER BY code ASC`); err != nil {
		return nil, fmt.Errorf("查询工作中心列表失败: %w", err)
	}
	list := make([]*block.WorkCenter, 0, len(rows))
	for _, r := range rows {
		list = append(list, &block.WorkCenter{ID: r.ID, Code: r.Code, Name: r.Name, Capacity: r.Capacity})
	}
	return list, nil
}

// CreateArticle 新建物料
func (s *Store) CreateArticle(ctx context.Context, a *block.Article) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	if err := ensureUniqueCode(ctx, tx, "article", a.Code, 0); err != nil {
		return err
	}
	row := &dao.ArticleDAO{Code: a.Code, Designation: a.Designation}
	id, err := s.insert(ctx, tx, `INSERT INTO article (code, designation) VALUES (:code, :designation)`, row)
	if err != nil {
		return fmt.Errorf("保存物料失败: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	a.ID = id
	return nil
}

// GetArticle 根据ID查询物料
func (s *Store) GetArticle(ctx context.Context, id int64) (*block.Article, error) {
	var row dao.ArticleDAO
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT id, code, designation FROM article WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("查询物料失败: %w", err)
	}
	return &block.Article{ID: row.ID, Code: row.Code, Designation: row.Designation}, nil
}

// UpdateArticle 更新物料
func (s *Store) UpdateArticle(ctx context.Context, a *block.Article) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	if err := ensureUniqueCode(ctx, tx, "article", a.Code, a.ID); err != nil {
		return err
	}
	row := &dao.ArticleDAO{ID: a.ID, Code: a.Code, Designation: a.Designation}
	res, err := tx.NamedExecContext(ctx, `UPDATE article SET code = :code, designation = :designation WHERE id = :id`, row)
	if err != nil {
		return fmt.Errorf("更新物料失败: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteArticle 删除物料，仍被工艺路线引用时拒绝
func (s *Store) DeleteArticle(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	if err := ensureUnreferenced(ctx, tx, "routing_code", "article_id", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM article WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("删除物料失败: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// ListArticles 按编码返回全部物料
func (s *Store) ListArticles(ctx context.Context) ([]*block.Article, error) {
	var rows []dao.ArticleDAO
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, code, designation FROM article ORDER BY code ASC`); err != nil {
		return nil, fmt.Errorf("查询物料列表失败: %w", err)
	}
	list := make([]*block.Article, 0, len(rows))
	for _, r := range rows {
		list = append(list, &block.Article{ID: r.ID, Code: r.Code, Designation: r.Designation})
	}
	return list, nil
}
