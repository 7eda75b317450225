// Package transfer 工序的CSV导入导出
//
// 文件使用分号分隔，首行为表头；读取时容忍UTF-8/UTF-16 BOM，数值允许使用小数逗号。
package transfer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/LENAX/plan-engine/pkg/core/block"
)

// Separator CSV字段分隔符
const Separator = ';'

// 列名
const (
	ColID            = "id"
	ColName          = "name"
	ColQtyToProduce  = "qty_to_produce"
	ColQtyProduced   = "qty_produced"
	ColPlannedHours  = "planned_hours"
	ColSpentHours    = "spent_hours"
	ColPlannedWeeks  = "planned_weeks"
	ColWorkCenterID  = "work_center_id"
	ColOrderID       = "order_id"
	ColPredecessorID = "predecessor_id"
	ColCompleted     = "completed"
	ColPlannedStart  = "planned_start"
	ColPlannedFinish = "planned_finish"
)

// Columns 导出时的列顺序
var Columns = []string{
	ColID, ColName, ColQtyToProduce, ColQtyProduced,
	ColPlannedHours, ColSpentHours, ColPlannedWeeks,
	ColWorkCenterID, ColOrderID, ColPredecessorID,
	ColCompleted, ColPlannedStart, ColPlannedFinish,
}

// ErrMissingColumn 缺少必需的列
var ErrMissingColumn = errors.New("缺少必需的列")

// ErrEmptyFile 文件没有表头
var ErrEmptyFile = errors.New("CSV文件为空")

// ErrNonFinite 数值为NaN或Inf
var ErrNonFinite = errors.New("数值必须是有限数")

// WriteBlocks 按Columns顺序写出工序
func WriteBlocks(w io.Writer, blocks []*block.Block) error {
	cw := csv.NewWriter(w)
	cw.Comma = Separator

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("写入表头失败: %w", err)
	}
	for _, b := range blocks {
		record := []string{
			strconv.FormatInt(b.ID, 10),
			b.Name,
			formatFloat(b.QtyToProduce),
			formatFloat(b.QtyProduced),
			formatOptFloat(b.PlannedHours),
			formatOptFloat(b.SpentHours),
			formatOptFloat(b.PlannedWeeks),
			formatOptInt(b.WorkCenterID),
			formatOptInt(b.ManufacturingOrder),
			formatOptInt(b.PredecessorID),
			strconv.FormatBool(b.Completed),
			formatOptTime(b.PlannedStart),
			formatOptTime(b.PlannedFinish),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("写入工序 %d 失败: %w", b.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadBlocks 读取工序；只有name列是必需的，其余列缺失时取零值
// id为空或0的行视为新建
func ReadBlocks(r io.Reader) ([]*block.Block, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	cr.Comma = Separator
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := index[ColName]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColName)
	}

	blocks := make([]*block.Block, 0)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取CSV失败: %w", err)
		}
		line, _ := cr.FieldPos(0)
		row := &rowReader{record: record, index: index, line: line}
		if row.blank() {
			continue
		}
		b, err := row.block()
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

type rowReader struct {
	record []string
	index  map[string]int
	line   int
}

func (r *rowReader) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r *rowReader) blank() bool {
	for _, v := range r.record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (r *rowReader) fail(col string, err error) error {
	return fmt.Errorf("第%d行 %s 列解析失败: %w", r.line, col, err)
}

func (r *rowReader) block() (*block.Block, error) {
	b := &block.Block{Name: r.get(ColName)}
	var err error

	if id, err := r.optInt(ColID); err != nil {
		return nil, err
	} else if id != nil {
		b.ID = *id
	}
	if b.QtyToProduce, err = r.float(ColQtyToProduce); err != nil {
		return nil, err
	}
	if b.QtyProduced, err = r.float(ColQtyProduced); err != nil {
		return nil, err
	}
	if b.PlannedHours, err = r.optFloat(ColPlannedHours); err != nil {
		return nil, err
	}
	if b.SpentHours, err = r.optFloat(ColSpentHours); err != nil {
		return nil, err
	}
	if b.PlannedWeeks, err = r.optFloat(ColPlannedWeeks); err != nil {
		return nil, err
	}
	if b.WorkCenterID, err = r.optInt(ColWorkCenterID); err != nil {
		return nil, err
	}
	if b.ManufacturingOrder, err = r.optInt(ColOrderID); err != nil {
		return nil, err
	}
	if b.PredecessorID, err = r.optInt(ColPredecessorID); err != nil {
		return nil, err
	}
	if b.Completed, err = r.bool(ColCompleted); err != nil {
		return nil, err
	}
	if b.PlannedStart, err = r.optTime(ColPlannedStart); err != nil {
		return nil, err
	}
	if b.PlannedFinish, err = r.optTime(ColPlannedFinish); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *rowReader) float(col string) (float64, error) {
	v, err := r.optFloat(col)
	if err != nil || v == nil {
		return 0, err
	}
	return *v, nil
}

func (r *rowReader) optFloat(col string) (*float64, error) {
	s := r.get(col)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil, r.fail(col, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, r.fail(col, ErrNonFinite)
	}
	return &v, nil
}

func (r *rowReader) optInt(col string) (*int64, error) {
	s := r.get(col)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, r.fail(col, err)
	}
	if v == 0 && col != ColID {
		return nil, nil
	}
	return &v, nil
}

func (r *rowReader) bool(col string) (bool, error) {
	switch strings.ToLower(r.get(col)) {
	case "", "0", "false", "no", "non", "n":
		return false, nil
	case "1", "true", "yes", "oui", "y", "x":
		return true, nil
	default:
		return false, r.fail(col, fmt.Errorf("无法识别的布尔值 %q", r.get(col)))
	}
}

func (r *rowReader) optTime(col string) (*time.Time, error) {
	s := r.get(col)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, r.fail(col, fmt.Errorf("无法识别的时间 %q", s))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatOptInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatOptTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
