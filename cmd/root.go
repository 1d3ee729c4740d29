package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/avicenna-clinic/avicenna_backend/cmd/http"
	systemcmd "github.com/avicenna-clinic/avicenna_backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "avicenna",
	Short: "Avicenna doctor scheduling and availability engine.",
	Long: `Avicenna manages doctor schedules for outpatient clinics: appointment
lifecycles, temporary slot holds, leave requests, and the busy calendar
that booking and schedule views query.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
