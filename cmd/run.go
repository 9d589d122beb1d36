package cmd

import (
	"fmt"
	"time"

	"copyjob/internal/backup"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var runNames []string

var runCmd = &cobra.Command{
	Use:   "run [selection...]",
	Short: "Run jobs by position (\"1-3\", \"1;2;4\") or by --name",
	Example: `  copyjob run 1-3
  copyjob run "1;3" 5
  copyjob run --name docs --name photos`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && len(runNames) == 0 {
			return fmt.Errorf("nothing to run: give job positions or --name")
		}

		var reports []backup.Report
		if len(runNames) > 0 {
			r, err := app.Executor.RunNames(runNames)
			if err != nil {
				return err
			}
			reports = append(reports, r...)
		}

		var indices []int
		for _, arg := range args {
			indices = append(indices, backup.ParseIndices(arg)...)
		}
		if len(indices) > 0 {
			r, err := app.Executor.RunMany(indices)
			if err != nil {
				return err
			}
			reports = append(reports, r...)
		}

		if len(reports) == 0 {
			fmt.Println("no matching jobs")
			return nil
		}

		for _, r := range reports {
			fmt.Printf("%-16s %d/%d copied, %d failed, %s in %s\n",
				r.Job, r.Copied, r.TotalFiles, r.Failed,
				humanize.IBytes(uint64(r.CopiedBytes)), r.Duration.Round(time.Millisecond))
		}

		return nil
	},
}

func init() {
	runCmd.Flags().StringArrayVar(&runNames, "name", nil, "job name to run (repeatable)")
	rootCmd.AddCommand(runCmd)
}
