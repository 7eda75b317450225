package engine

import "errors"

var (
	// ErrCycle 前置关系会形成循环依赖
	ErrCycle = errors.New("检测到循环依赖")
	// ErrPredecessorNotFound 指定的前置工序不存在
	ErrPredecessorNotFound = errors.New("前置工序不存在")
	// ErrClosingRule 不满足工序关闭条件
	ErrClosingRule = errors.New("工序不能关闭")
	// ErrInvalidBlock 工序字段不合法
	ErrInvalidBlock = errors.New("工序数据不合法")
	// ErrInvalidResource 工作中心或物料字段不合法
	ErrInvalidResource = errors.New("资源数据不合法")
	// ErrNotRunning 引擎未启动
	ErrNotRunning = errors.New("排程引擎未启动")
	// ErrStopped 引擎已停止，不能再次启动
	ErrStopped = errors.New("排程引擎已停止")
)
