package cmd

import (
	"fmt"
	"time"

	"copyjob/internal/model"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	logsDate string
	logsJob  string
	logsN    int
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the transfer log",
	RunE: func(cmd *cobra.Command, args []string) error {
		day := time.Now()
		if logsDate != "" {
			parsed, err := time.ParseInLocation("2006-01-02", logsDate, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date, want YYYY-MM-DD: %w", err)
			}
			day = parsed
		}

		records, err := app.TransLog.ReadDay(day)
		if err != nil {
			return err
		}

		var shown []model.TransferRecord
		for _, r := range records {
			if logsJob == "" || r.BackupName == logsJob {
				shown = append(shown, r)
			}
		}
		if logsN > 0 && len(shown) > logsN {
			shown = shown[len(shown)-logsN:]
		}

		if len(shown) == 0 {
			fmt.Println("no log entries")
			return nil
		}

		for _, r := range shown {
			mark := "✓"
			if !r.Success {
				mark = "✗"
			}

			if r.IsTransfer() {
				fmt.Printf("%s [%s] %-12s %s -> %s (%s, %dms)\n",
					mark, r.Timestamp.Format("2006-01-02 15:04:05"), r.BackupName,
					r.SourcePath, r.TargetPath, humanize.IBytes(uint64(r.FileSize)), r.TransferTime)
				continue
			}

			fmt.Printf("%s [%s] %-12s %s: %s\n",
				mark, r.Timestamp.Format("2006-01-02 15:04:05"), r.BackupName, r.ActionType, r.Message)
		}

		return nil
	},
}

func init() {
	logsCmd.Flags().StringVar(&logsDate, "date", "", "day to show (YYYY-MM-DD, default today)")
	logsCmd.Flags().StringVar(&logsJob, "job", "", "only entries of this job")
	logsCmd.Flags().IntVar(&logsN, "n", 0, "show only the last n entries")
	rootCmd.AddCommand(logsCmd)
}
