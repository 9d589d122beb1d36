package cmd

import (
	"fmt"

	"copyjob/internal/model"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	addKind    string
	updateKind string
	jobRename  string
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage backup jobs",
}

var jobListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := app.Manager.Jobs()
		if err != nil {
			return err
		}

		if len(jobs) == 0 {
			fmt.Println("no jobs configured")
			return nil
		}

		states, err := persistedStates()
		if err != nil {
			return err
		}

		fmt.Printf("%-3s %-16s %-13s %-9s %-30s %s\n", "#", "NAME", "KIND", "STATUS", "SRC", "DST")
		for i, j := range jobs {
			status := model.JobStatusPending
			if st, ok := states[j.Name]; ok {
				status = st.Status
			}
			fmt.Printf("%-3d %-16s %-13s %-9s %-30s %s\n", i+1, j.Name, j.Kind, status, j.SourcePath, j.TargetPath)
		}
		fmt.Printf("%d/%d jobs\n", len(jobs), app.Jobs.MaxJobs())

		return nil
	},
}

var jobShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show one job and its state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := app.Manager.Find(args[0])
		if err != nil {
			return err
		}

		fmt.Println(job)

		states, err := persistedStates()
		if err != nil {
			return err
		}
		if st, ok := states[job.Name]; ok {
			printState(st)
		}

		return nil
	},
}

var jobAddCmd = &cobra.Command{
	Use:   "add [name] [src] [dst]",
	Short: "Add a new job",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := model.ParseJobKind(addKind)
		if err != nil {
			return err
		}

		job, err := app.Manager.Add(model.Job{
			Name:       args[0],
			SourcePath: args[1],
			TargetPath: args[2],
			Kind:       kind,
		})
		if err != nil {
			return err
		}

		fmt.Printf("job added: %s\n", job)
		return nil
	},
}

var jobUpdateCmd = &cobra.Command{
	Use:   "update [name] [src] [dst]",
	Short: "Update a job",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var kind model.JobKind
		if updateKind != "" {
			var err error
			if kind, err = model.ParseJobKind(updateKind); err != nil {
				return err
			}
		}

		job, err := app.Manager.Update(args[0], model.Job{
			Name:       jobRename,
			SourcePath: args[1],
			TargetPath: args[2],
			Kind:       kind,
		})
		if err != nil {
			return err
		}

		fmt.Printf("job updated: %s\n", job)
		return nil
	},
}

var jobRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Manager.Remove(args[0]); err != nil {
			return err
		}

		fmt.Printf("job %s removed\n", args[0])
		return nil
	},
}

func printState(st model.JobState) {
	fmt.Printf("  status:    %s (since %s)\n", st.Status, humanize.Time(st.LastActionTime))
	fmt.Printf("  total:     %d files, %s\n", st.TotalFiles, humanize.IBytes(uint64(st.TotalBytes)))

	if st.Status != model.JobStatusActive {
		return
	}

	fmt.Printf("  remaining: %d files, %s (%.0f%%)\n",
		st.FilesRemaining, humanize.IBytes(uint64(st.BytesRemaining)), st.Progress()*100)
	if st.CurrentSourceFile != "" {
		fmt.Printf("  current:   %s -> %s\n", st.CurrentSourceFile, st.CurrentTargetFile)
	}
}

func init() {
	jobAddCmd.Flags().StringVar(&addKind, "kind", "Full", "Full or Differential")
	jobUpdateCmd.Flags().StringVar(&updateKind, "kind", "", "Full or Differential (unchanged when empty)")
	jobUpdateCmd.Flags().StringVar(&jobRename, "rename", "", "new job name")

	jobCmd.AddCommand(jobListCmd, jobShowCmd, jobAddCmd, jobUpdateCmd, jobRemoveCmd)
	rootCmd.AddCommand(jobCmd)
}
