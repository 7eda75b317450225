// Package cmd plan-engine命令行
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/LENAX/plan-engine/pkg/cli/output"
)

var (
	// 全局变量
	serverURL  string
	outputJSON bool
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "plan-engine",
	Short: "Plan Engine CLI - 生产工序排程命令行工具",
	Long: `Plan Engine CLI 通过HTTP API管理生产工序排程。

支持的功能：
  - 执行正排（ASAP）或倒排（RETRO）
  - 查看排程进度与前置关系审计
  - 查询与关闭工序

使用示例：
  # 从指定日期起正排
  plan-engine plan run --mode asap --date 2024-03-01

  # 按交付日期倒排
  plan-engine plan run --mode retro --date 2024-06-30

  # 列出未完成的工序
  plan-engine block list --completed=false`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// SetOut替换过的输出（如测试缓冲区）同样接管彩色输出
		if w := cmd.OutOrStdout(); w != os.Stdout {
			output.Out = w
		}
	},
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "Plan Engine服务器地址")
	rootCmd.PersistentFlags().BoolVarP(&outputJSON, "json", "j", false, "使用JSON格式输出")

	// 添加子命令
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(blockCmd)
	rootCmd.AddCommand(versionCmd)
}
