package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LENAX/plan-engine/pkg/cli/output"
	"github.com/LENAX/plan-engine/pkg/cli/planengine"
)

var (
	planMode string
	planDate string
)

// planCmd plan子命令
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "排程命令",
	Long:  `执行排程、查看排程进度和前置关系审计。`,
}

// planRunCmd 执行排程
var planRunCmd = &cobra.Command{
	Use:   "run",
	Short: "执行一次排程",
	RunE: func(cmd *cobra.Command, args []string) error {
		if planMode != "asap" && planMode != "retro" {
			return fmt.Errorf("--mode必须是asap或retro")
		}
		if planMode == "retro" && planDate == "" {
			return fmt.Errorf("倒排必须通过--date指定交付日期")
		}

		client := planengine.New(serverURL)
		report, err := client.RunPlanning(planMode, planDate)
		if err != nil {
			output.Error("排程失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(report)
		}

		output.Success("排程完成: %d/%d 个工序已排定 (RunID=%s)", report.Scheduled, report.Total, report.RunID)
		if report.Warning != "" {
			output.Warning("%s", report.Warning)
		}

		table := output.NewTable([]string{"BLOCK_ID", "START", "FINISH"})
		for _, e := range report.Entries {
			table.AddRow([]string{
				fmt.Sprintf("%d", e.ID),
				e.Start.Format("2006-01-02 15:04"),
				e.Finish.Format("2006-01-02 15:04"),
			})
		}
		table.Render()
		return nil
	},
}

// planStatusCmd 排程进度
var planStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "查看排程进度",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := planengine.New(serverURL)
		status, err := client.Status()
		if err != nil {
			output.Error("查询失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(status)
		}

		output.Info("工序总数: %d", status.Total)
		output.Info("已排程:   %d", status.Planned)
		output.Info("已完成:   %d", status.Completed)
		output.Info("进度:     %s", output.ProgressBar(status.Progress, 30))
		return nil
	},
}

// planIntegrityCmd 前置关系审计
var planIntegrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "审计前置关系（循环依赖、悬空前置）",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := planengine.New(serverURL)
		report, err := client.Integrity()
		if err != nil {
			output.Error("审计失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(report)
		}

		if report.OK() {
			output.Success("前置关系正常: %d 个工序, %d 条前置关系", report.Blocks, report.Edges)
			return nil
		}

		output.Warning("发现 %d 条问题前置关系", len(report.Issues))
		table := output.NewTable([]string{"BLOCK_ID", "PREDECESSOR_ID", "REASON"})
		for _, issue := range report.Issues {
			table.AddRow([]string{
				fmt.Sprintf("%d", issue.BlockID),
				fmt.Sprintf("%d", issue.PredecessorID),
				issue.Reason,
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	planRunCmd.Flags().StringVarP(&planMode, "mode", "m", "asap", "排程模式（asap/retro）")
	planRunCmd.Flags().StringVarP(&planDate, "date", "d", "", "正排开始日期或倒排交付日期（YYYY-MM-DD或RFC3339）")

	planCmd.AddCommand(planRunCmd)
	planCmd.AddCommand(planStatusCmd)
	planCmd.AddCommand(planIntegrityCmd)
}
