package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LENAX/plan-engine/pkg/core/block"
	"github.com/LENAX/plan-engine/pkg/core/dag"
	"github.com/LENAX/plan-engine/pkg/storage"
	"github.com/LENAX/plan-engine/pkg/storage/dao"
)

const blockColumns = `id, name, qty_to_produce, qty_produced, planned_hours, spent_hours, planned_weeks,
	work_center_id, order_id, predecessor_id, completed, planned_start, planned_finish, create_time, update_time`

var blockWritableColumns = []string{
	"name", "qty_to_produce", "qty_produced", "planned_hours", "spent_hours", "planned_weeks",
	"work_center_id", "order_id", "predecessor_id", "completed", "planned_start", "planned_finish", "update_time",
}

func insertBlockSQL() string {
	cols := append([]string{}, blockWritableColumns...)
	cols = append(cols, "create_time")
	named := make([]string, len(cols))
	for i, c := range cols {
		named[i] = ":" + c
	}
	return fmt.Sprintf("INSERT INTO blocks (%s) VALUES (%s)", strings.Join(cols, ", "), strings.Join(named, ", "))
}

// CreateBlock 新建Block，成功后回填ID
func (s *Store) CreateBlock(ctx context.Context, b *block.Block) error {
	row := blockToDAO(b, time.Now().UTC())
	id, err := s.insert(ctx, s.db, insertBlockSQL(), row)
	if err != nil {
		return fmt.Errorf("保存Block失败: %w", err)
	}
	b.ID = id
	return nil
}

// GetBlock 根据ID查询
func (s *Store) GetBlock(ctx context.Context, id int64) (*block.Block, error) {
	var row dao.BlockDAO
	query := s.db.Rebind(`SELECT ` + blockColumns + ` FROM blocks WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("查询Block失败: %w", err)
	}
	return daoToBlock(&row), nil
}

// UpdateBlock 更新全部可写字段
func (s *Store) UpdateBlock(ctx context.Context, b *block.Block) error {
	sets := make([]string, len(blockWritableColumns))
	for i, c := range blockWritableColumns {
		sets[i] = fmt.Sprintf("%s = :%s", c, c)
	}
	query := fmt.Sprintf("UPDATE blocks SET %s WHERE id = :id", strings.Join(sets, ", "))

	res, err := s.db.NamedExecContext(ctx, query, blockToDAO(b, time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("更新Block失败: %w", err)
	}
	return checkAffected(res)
}

// DeleteBlock 删除Block，并在同一事务中解除后续工序的前置引用
func (s *Store) DeleteBlock(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	detach := tx.Rebind(`UPDATE blocks SET predecessor_id = NULL, update_time = ? WHERE predecessor_id = ?`)
	if _, err := tx.ExecContext(ctx, detach, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("解除后续工序引用失败: %w", err)
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM blocks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("删除Block失败: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// ListBlocks 条件查询，返回当前页与总数
func (s *Store) ListBlocks(ctx context.Context, filter storage.BlockFilter) ([]*block.Block, int, error) {
	filter.Normalize()

	var where []string
	var args []interface{}
	if filter.Query != "" {
		where = append(where, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(filter.Query)+"%")
	}
	if filter.Completed != nil {
		where = append(where, "completed = ?")
		args = append(args, *filter.Completed)
	}
	if filter.WorkCenterID != nil {
		where = append(where, "work_center_id = ?")
		args = append(args, *filter.WorkCenterID)
	}
	if filter.OrderID != nil {
		where = append(where, "order_id = ?")
		args = append(args, *filter.OrderID)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(`SELECT COUNT(*) FROM blocks`+clause), args...); err != nil {
		return nil, 0, fmt.Errorf("统计Block失败: %w", err)
	}

	dir := "ASC"
	if filter.Desc {
		dir = "DESC"
	}
	query := fmt.Sprintf(`SELECT %s FROM blocks%s ORDER BY %s %s, id ASC LIMIT ? OFFSET ?`,
		blockColumns, clause, storage.BlockSortColumns[filter.OrderBy], dir)
	pageArgs := append(append([]interface{}{}, args...), filter.Size, filter.Offset())

	var rows []*dao.BlockDAO
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("查询Block列表失败: %w", err)
	}

	blocks := make([]*block.Block, 0, len(rows))
	for _, r := range rows {
		blocks = append(blocks, daoToBlock(r))
	}
	return blocks, total, nil
}

// AllBlocks 按ID升序返回全部Block
func (s *Store) AllBlocks(ctx context.Context) ([]*block.Block, error) {
	var rows []*dao.BlockDAO
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+blockColumns+` FROM blocks ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("加载Block快照失败: %w", err)
	}
	blocks := make([]*block.Block, 0, len(rows))
	for _, r := range rows {
		blocks = append(blocks, daoToBlock(r))
	}
	return blocks, nil
}

// PredecessorLinks 返回全部前置关系
func (s *Store) PredecessorLinks(ctx context.Context) (dag.Links, error) {
	var rows []dao.BlockLinkDAO
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, predecessor_id FROM blocks`); err != nil {
		return nil, fmt.Errorf("加载前置关系失败: %w", err)
	}
	links := make(dag.Links, len(rows))
	for _, r := range rows {
		links[r.ID] = intPtr(r.PredecessorID)
	}
	return links, nil
}

// ApplyPlan 在一个事务中写入计划时间
func (s *Store) ApplyPlan(ctx context.Context, blocks []*block.Block) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(
		`UPDATE blocks SET planned_start = ?, planned_finish = ?, update_time = ? WHERE id = ?`))
	if err != nil {
		return fmt.Errorf("准备更新语句失败: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, b := range blocks {
		if _, err := stmt.ExecContext(ctx, nullTime(b.PlannedStart), nullTime(b.PlannedFinish), now, b.ID); err != nil {
			return fmt.Errorf("写入Block %d 计划时间失败: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// UpsertBlocks 批量导入
func (s *Store) UpsertBlocks(ctx context.Context, blocks []*block.Block) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	columns := append([]string{"id", "create_time"}, blockWritableColumns...)
	upsert := s.dialect.UpsertSQL("blocks", columns, "id", blockWritableColumns)
	now := time.Now().UTC()

	explicitIDs := false
	for _, b := range blocks {
		row := blockToDAO(b, now)
		if b.ID == 0 {
			id, err := s.insert(ctx, tx, insertBlockSQL(), row)
			if err != nil {
				return fmt.Errorf("导入Block %q 失败: %w", b.Name, err)
			}
			b.ID = id
			continue
		}
		if _, err := tx.NamedExecContext(ctx, upsert, row); err != nil {
			return fmt.Errorf("导入Block %d 失败: %w", b.ID, err)
		}
		explicitIDs = true
	}

	if explicitIDs {
		if err := s.syncSequence(ctx, tx, "blocks"); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// BlockStats 统计总数、已排程数、已完成数
func (s *Store) BlockStats(ctx context.Context) (storage.BlockStats, error) {
	var stats storage.BlockStats
	query := `SELECT COUNT(*) AS total,
		COALESCE(SUM(CASE WHEN planned_start IS NOT NULL THEN 1 ELSE 0 END), 0) AS planned,
		COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0) AS completed
		FROM blocks`
	if err := s.db.GetContext(ctx, &stats, query); err != nil {
		return stats, fmt.Errorf("统计排程进度失败: %w", err)
	}
	return stats, nil
}
