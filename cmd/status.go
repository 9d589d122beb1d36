package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [name]",
	Short: "Show the last known state of every job",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		states, err := persistedStates()
		if err != nil {
			return err
		}

		if len(args) == 1 {
			st, ok := states[args[0]]
			if !ok {
				return fmt.Errorf("no state for job %q", args[0])
			}
			fmt.Println(st.Name)
			printState(st)
			return nil
		}

		if len(states) == 0 {
			fmt.Println("no jobs configured")
			return nil
		}

		names := make([]string, 0, len(states))
		for name := range states {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Println(name)
			printState(states[name])
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
