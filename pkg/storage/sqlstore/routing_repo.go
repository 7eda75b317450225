package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/LENAX/plan-engine/pkg/core/block"
	"github.com/LENAX/plan-engine/pkg/storage"
	"github.com/LENAX/plan-engine/pkg/storage/dao"
)

const selectOrderColumns = `SELECT id, code, routing_code_id, start_date, due_date, mode FROM manufacturing_order`

// CreateRoutingCode 新建工艺路线
func (s *Store) CreateRoutingCode(ctx context.Context, rc *block.RoutingCode) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	if err := ensureUniqueCode(ctx, tx, "routing_code", rc.Code, 0); err != nil {
		return err
	}
	row := &dao.RoutingCodeDAO{Code: rc.Code, ArticleID: rc.ArticleID}
	id, err := s.insert(ctx, tx, `INSERT INTO routing_code (code, article_id) VALUES (:code, :article_id)`, row)
	if err != nil {
		return fmt.Errorf("保存工艺路线失败: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	rc.ID = id
	return nil
}

// GetRoutingCode 根据ID查询工艺路线
func (s *Store) GetRoutingCode(ctx context.Context, id int64) (*block.RoutingCode, error) {
	var row dao.RoutingCodeDAO
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT id, code, article_id FROM routing_code WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("查询工艺路线失败: %w", err)
	}
	return &block.RoutingCode{ID: row.ID, Code: row.Code, ArticleID: row.ArticleID}, nil
}

// UpdateRoutingCode 更新工艺路线
func (s *Store) UpdateRoutingCode(ctx context.Context, rc *block.RoutingCode) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	if err := ensureUniqueCode(ctx, tx, "routing_code", rc.Code, rc.ID); err != nil {
		return err
	}
	row := &dao.RoutingCodeDAO{ID: rc.ID, Code: rc.Code, ArticleID: rc.ArticleID}
	res, err := tx.NamedExecContext(ctx, `UPDATE routing_code SET code = :code, article_id = :article_id WHERE id = :id`, row)
	if err != nil {
		return fmt.Errorf("更新工艺路线失败: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteRoutingCode 删除工艺路线，仍被订单引用时拒绝
func (s *Store) DeleteRoutingCode(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	if err := ensureUnreferenced(ctx, tx, "manufacturing_order", "routing_code_id", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM routing_code WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("删除工艺路线失败: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// ListRoutingCodes 按编码返回全部工艺路线
func (s *Store) ListRoutingCodes(ctx context.Context) ([]*block.RoutingCode, error) {
	var rows []dao.RoutingCodeDAO
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, code, article_id FROM routing_code ORDER BY code ASC`); err != nil {
		return nil, fmt.Errorf("查询工艺路线列表失败: %w", err)
	}
	list := make([]*block.RoutingCode, 0, len(rows))
	for _, r := range rows {
		list = append(list, &block.RoutingCode{ID: r.ID, Code: r.Code, ArticleID: r.ArticleID})
	}
	return list, nil
}

// CreateOrder 新建制造订单
func (s *Store) CreateOrder(ctx context.Context, o *block.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	if err := ensureUniqueCode(ctx, tx, "manufacturing_order", o.Code, 0); err != nil {
		return err
	}
	id, err := s.insert(ctx, tx, `INSERT INTO manufacturing_order (code, routing_code_id, start_date, due_date, mode)
		VALUES (:code, :routing_code_id, :start_date, :due_date, :mode)`, orderToDAO(o))
	if err != nil {
		return fmt.Errorf("保存订单失败: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	o.ID = id
	return nil
}

// GetOrder 根据ID查询制造订单
func (s *Store) GetOrder(ctx context.Context, id int64) (*block.Order, error) {
	var row dao.OrderDAO
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(selectOrderColumns+` WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	return daoToOrder(&row), nil
}

// UpdateOrder 更新制造订单
func (s *Store) UpdateOrder(ctx context.Context, o *block.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	if err := ensureUniqueCode(ctx, tx, "manufacturing_order", o.Code, o.ID); err != nil {
		return err
	}
	res, err := tx.NamedExecContext(ctx, `UPDATE manufacturing_order SET code = :code, routing_code_id = :routing_code_id,
		start_date = :start_date, due_date = :due_date, mode = :mode WHERE id = :id`, orderToDAO(o))
	if err != nil {
		return fmt.Errorf("更新订单失败: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteOrder 删除制造订单，其工序不再归属任何订单
func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE blocks SET order_id = NULL WHERE order_id = ?`), id); err != nil {
		return fmt.Errorf("解除Block订单引用失败: %w", err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM manufacturing_order WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("删除订单失败: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// ListOrders 按编码返回全部制造订单
func (s *Store) ListOrders(ctx context.Context) ([]*block.Order, error) {
	var rows []dao.OrderDAO
	if err := s.db.SelectContext(ctx, &rows, selectOrderColumns+` ORDER BY code ASC`); err != nil {
		return nil, fmt.Errorf("查询订单列表失败: %w", err)
	}
	list := make([]*block.Order, 0, len(rows))
	for i := range rows {
		list = append(list, daoToOrder(&rows[i]))
	}
	return list, nil
}
