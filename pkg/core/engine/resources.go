package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/LENAX/plan-engine/pkg/core/block"
	"github.com/LENAX/plan-engine/pkg/core/planner"
	"github.com/LENAX/plan-engine/pkg/storage"
)

// CreateWorkCenter 新建工作中心，编码必须唯一
func (e *Engine) CreateWorkCenter(ctx context.Context, wc *block.WorkCenter) error {
	if err := validateWorkCenter(wc); err != nil {
		return err
	}
	wc.ID = 0
	return e.repo.CreateWorkCenter(ctx, wc)
}

// GetWorkCenter 查询工作中心
func (e *Engine) GetWorkCenter(ctx context.Context, id int64) (*block.WorkCenter, error) {
	return e.repo.GetWorkCenter(ctx, id)
}

// UpdateWorkCenter 更新工作中心
func (e *Engine) UpdateWorkCenter(ctx context.Context, wc *block.WorkCenter) error {
	if err := validateWorkCenter(wc); err != nil {
		return err
	}
	return e.repo.UpdateWorkCenter(ctx, wc)
}

// DeleteWorkCenter 删除工作中心，引用它的工序不再占用机器
func (e *Engine) DeleteWorkCenter(ctx context.Context, id int64) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	return e.repo.DeleteWorkCenter(ctx, id)
}

// ListWorkCenters 按编码列出工作中心
func (e *Engine) ListWorkCenters(ctx context.Context) ([]*block.WorkCenter, error) {
	return e.repo.ListWorkCenters(ctx)
}

// CreateArticle 新建物料，编码必须唯一
func (e *Engine) CreateArticle(ctx context.Context, a *block.Article) error {
	if err := validateArticle(a); err != nil {
		return err
	}
	a.ID = 0
	return e.repo.CreateArticle(ctx, a)
}

// GetArticle 查询物料
func (e *Engine) GetArticle(ctx context.Context, id int64) (*block.Article, error) {
	return e.repo.GetArticle(ctx, id)
}

// UpdateArticle 更新物料
func (e *Engine) UpdateArticle(ctx context.Context, a *block.Article) error {
	if err := validateArticle(a); err != nil {
		return err
	}
	return e.repo.UpdateArticle(ctx, a)
}

// DeleteArticle 删除物料
func (e *Engine) DeleteArticle(ctx context.Context, id int64) error {
	return e.repo.DeleteArticle(ctx, id)
}

// ListArticles 按编码列出物料
func (e *Engine) ListArticles(ctx context.Context) ([]*block.Article, error) {
	return e.repo.ListArticles(ctx)
}

// CreateRoutingCode 新建工艺路线，所属物料必须存在
func (e *Engine) CreateRoutingCode(ctx context.Context, rc *block.RoutingCode) error {
	if err := e.validateRoutingCode(ctx, rc); err != nil {
		return err
	}
	rc.ID = 0
	return e.repo.CreateRoutingCode(ctx, rc)
}

// GetRoutingCode 查询工艺路线
func (e *Engine) GetRoutingCode(ctx context.Context, id int64) (*block.RoutingCode, error) {
	return e.repo.GetRoutingCode(ctx, id)
}

// UpdateRoutingCode 更新工艺路线
func (e *Engine) UpdateRoutingCode(ctx context.Context, rc *block.RoutingCode) error {
	if err := e.validateRoutingCode(ctx, rc); err != nil {
		return err
	}
	return e.repo.UpdateRoutingCode(ctx, rc)
}

// DeleteRoutingCode 删除工艺路线；仍有订单使用时返回storage.ErrInUse
func (e *Engine) DeleteRoutingCode(ctx context.Context, id int64) error {
	return e.repo.DeleteRoutingCode(ctx, id)
}

// ListRoutingCodes 按编码列出工艺路线
func (e *Engine) ListRoutingCodes(ctx context.Context) ([]*block.RoutingCode, error) {
	return e.repo.ListRoutingCodes(ctx)
}

// CreateOrder 新建制造订单
func (e *Engine) CreateOrder(ctx context.Context, o *block.Order) error {
	if err := e.validateOrder(ctx, o); err != nil {
		return err
	}
	o.ID = 0
	return e.repo.CreateOrder(ctx, o)
}

// GetOrder 查询制造订单
func (e *Engine) GetOrder(ctx context.Context, id int64) (*block.Order, error) {
	return e.repo.GetOrder(ctx, id)
}

// UpdateOrder 更新制造订单
func (e *Engine) UpdateOrder(ctx context.Context, o *block.Order) error {
	if err := e.validateOrder(ctx, o); err != nil {
		return err
	}
	return e.repo.UpdateOrder(ctx, o)
}

// DeleteOrder 删除制造订单，其工序保留但不再归属订单
func (e *Engine) DeleteOrder(ctx context.Context, id int64) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	return e.repo.DeleteOrder(ctx, id)
}

// ListOrders 按编码列出制造订单
func (e *Engine) ListOrders(ctx context.Context) ([]*block.Order, error) {
	return e.repo.ListOrders(ctx)
}

func (e *Engine) validateRoutingCode(ctx context.Context, rc *block.RoutingCode) error {
	rc.Code = strings.TrimSpace(rc.Code)
	if rc.Code == "" {
		return fmt.Errorf("%w: 工艺路线编码不能为空", ErrInvalidResource)
	}
	if _, err := e.repo.GetArticle(ctx, rc.ArticleID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: 物料 %d 不存在", ErrInvalidResource, rc.ArticleID)
		}
		return fmt.Errorf("查询物料失败: %w", err)
	}
	return nil
}

// validateOrder 模式统一为asap/retro（默认asap），工艺路线必须存在，交付时间不早于开始时间
func (e *Engine) validateOrder(ctx context.Context, o *block.Order) error {
	o.Code = strings.TrimSpace(o.Code)
	if o.Code == "" {
		return fmt.Errorf("%w: 订单编码不能为空", ErrInvalidResource)
	}

	mode := strings.TrimSpace(o.Mode)
	if mode == "" {
		mode = block.ModeASAP
	}
	dir, err := planner.ParseDirection(mode)
	if err != nil {
		return fmt.Errorf("%w: 排程模式 %q 无效", ErrInvalidResource, o.Mode)
	}
	o.Mode = block.ModeASAP
	if dir == planner.Backward {
		o.Mode = block.ModeRETRO
	}

	if o.StartDate != nil && o.DueDate != nil && o.DueDate.Before(*o.StartDate) {
		return fmt.Errorf("%w: 交付时间早于开始时间", ErrInvalidResource)
	}
	if o.RoutingCodeID != nil {
		if _, err := e.repo.GetRoutingCode(ctx, *o.RoutingCodeID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%w: 工艺路线 %d 不存在", ErrInvalidResource, *o.RoutingCodeID)
			}
			return fmt.Errorf("查询工艺路线失败: %w", err)
		}
	}
	return nil
}

func validateWorkCenter(wc *block.WorkCenter) error {
	wc.Code = strings.TrimSpace(wc.Code)
	wc.Name = strings.TrimSpace(wc.Name)
	if wc.Code == "" || wc.Name == "" {
		return fmt.Errorf("%w: 工作中心编码和名称不能为空", ErrInvalidResource)
	}
	if wc.Capacity < 0 {
		return fmt.Errorf("%w: 产能不能为负", ErrInvalidResource)
	}
	return nil
}

func validateArticle(a *block.Article) error {
	a.Code = strings.TrimSpace(a.Code)
	a.Designation = strings.TrimSpace(a.Designation)
	if a.Code == "" || a.Designation == "" {
		return fmt.Errorf("%w: 物料编码和名称不能为空", ErrInvalidResource)
	}
	return nil
}
