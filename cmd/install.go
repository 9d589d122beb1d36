package cmd

import (
	"fmt"
	"os"

	"copyjob/internal/autostart"

	"github.com/spf13/cobra"
)

var installMode string

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Start copyjob watch (or serve) automatically at login",
	RunE: func(cmd *cobra.Command, args []string) error {
		if installMode != "watch" && installMode != "serve" {
			return fmt.Errorf("--mode must be watch or serve, got %q", installMode)
		}

		execPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to get executable path: %w", err)
		}

		svcArgs := []string{installMode}
		if configDir != "" {
			svcArgs = append(svcArgs, "--config", configDir)
		}

		if err := autostart.New().Install(execPath, svcArgs); err != nil {
			return err
		}

		fmt.Printf("copyjob %s registered for autostart\n", installMode)
		return nil
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the autostart registration",
	RunE: func(cmd *cobra.Command, args []string) error {
		as := autostart.New()
		installed, err := as.IsInstalled()
		if err != nil {
			return err
		}
		if !installed {
			fmt.Println("copyjob is not registered for autostart")
			return nil
		}

		if err := as.Uninstall(); err != nil {
			return err
		}

		fmt.Println("copyjob autostart removed")
		return nil
	},
}

func init() {
	installCmd.Flags().StringVar(&installMode, "mode", "watch", "command to autostart: watch or serve")
	rootCmd.AddCommand(installCmd, uninstallCmd)
}
