package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/LENAX/plan-engine/pkg/cli/output"
	"github.com/LENAX/plan-engine/pkg/cli/planengine"
	"github.com/LENAX/plan-engine/pkg/core/block"
)

var (
	blockQuery     string
	blockCompleted string
	blockOrderBy   string
	blockDesc      bool
	blockPage      int
	blockSize      int
	blockProduced  float64
)

// blockCmd block子命令
var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "工序管理命令",
	Long:  `查询工序、查看详情、关闭工序。`,
}

// blockListCmd 列出工序
var blockListCmd = &cobra.Command{
	Use:   "list",
	Short: "条件分页列出工序",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := planengine.ListOptions{
			Query:   blockQuery,
			OrderBy: blockOrderBy,
			Desc:    blockDesc,
			Page:    blockPage,
			Size:    blockSize,
		}
		if blockCompleted != "" {
			v, err := strconv.ParseBool(blockCompleted)
			if err != nil {
				return fmt.Errorf("--completed必须是true或false")
			}
			opts.Completed = &v
		}

		client := planengine.New(serverURL)
		result, err := client.ListBlocks(opts)
		if err != nil {
			output.Error("查询失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(result)
		}

		if len(result.Items) == 0 {
			output.Info("暂无工序")
			return nil
		}

		table := output.NewTable([]string{"ID", "NAME", "PRED", "WORK_CENTER", "HOURS", "STATUS", "START", "FINISH"})
		for _, b := range result.Items {
			table.AddRow([]string{
				fmt.Sprintf("%d", b.ID),
				b.Name,
				formatOptID(b.PredecessorID),
				formatOptID(b.WorkCenterID),
				fmt.Sprintf("%.1f", b.Duration().Hours()),
				formatCompleted(b.Completed),
				formatOptTime(b.PlannedStart),
				formatOptTime(b.PlannedFinish),
			})
		}
		table.Render()
		if result.HasMore {
			output.Info("共 %d 条，使用 --page 查看更多", result.Total)
		}
		return nil
	},
}

// blockGetCmd 查看工序
var blockGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "查看工序详情",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("ID无效: %s", args[0])
		}

		client := planengine.New(serverURL)
		b, err := client.GetBlock(id)
		if err != nil {
			output.Error("查询失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(b)
		}
		printBlock(b)
		return nil
	},
}

// blockDoneCmd 关闭工序
var blockDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "关闭工序（前置必须已完成，产出不少于需求）",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("ID无效: %s", args[0])
		}

		var produced *float64
		if cmd.Flags().Changed("produced") {
			produced = &blockProduced
		}

		client := planengine.New(serverURL)
		b, err := client.CompleteBlock(id, produced)
		if err != nil {
			output.Error("关闭失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(b)
		}
		output.Success("工序已关闭: %d %s", b.ID, b.Name)
		return nil
	},
}

func printBlock(b *block.Block) {
	fmt.Printf("ID:          %d\n", b.ID)
	fmt.Printf("Name:        %s\n", b.Name)
	fmt.Printf("Status:      %s\n", formatCompleted(b.Completed))
	fmt.Printf("Quantity:    %g / %g\n", b.QtyProduced, b.QtyToProduce)
	fmt.Printf("Duration:    %.1fh\n", b.Duration().Hours())
	fmt.Printf("Predecessor: %s\n", formatOptID(b.PredecessorID))
	fmt.Printf("WorkCenter:  %s\n", formatOptID(b.WorkCenterID))
	fmt.Printf("Order:       %s\n", formatOptID(b.ManufacturingOrder))
	fmt.Printf("Start:       %s\n", formatOptTime(b.PlannedStart))
	fmt.Printf("Finish:      %s\n", formatOptTime(b.PlannedFinish))
}

// formatCompleted 格式化完成状态（带颜色）
func formatCompleted(done bool) string {
	if done {
		return color.GreenString("DONE")
	}
	return color.YellowString("OPEN")
}

func formatOptID(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func formatOptTime(v *time.Time) string {
	if v == nil {
		return "-"
	}
	return v.Local().Format("2006-01-02 15:04")
}

func init() {
	blockListCmd.Flags().StringVarP(&blockQuery, "query", "q", "", "按名称模糊查询")
	blockListCmd.Flags().StringVar(&blockCompleted, "completed", "", "按完成状态过滤（true/false）")
	blockListCmd.Flags().StringVar(&blockOrderBy, "order-by", "id", "排序字段")
	blockListCmd.Flags().BoolVar(&blockDesc, "desc", false, "降序")
	blockListCmd.Flags().IntVar(&blockPage, "page", 1, "页码")
	blockListCmd.Flags().IntVar(&blockSize, "size", 20, "每页条数（最大100）")

	blockDoneCmd.Flags().Float64Var(&blockProduced, "produced", 0, "同时更新产出数量")

	blockCmd.AddCommand(blockListCmd)
	blockCmd.AddCommand(blockGetCmd)
	blockCmd.AddCommand(blockDoneCmd)
}
