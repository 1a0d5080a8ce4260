package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/electriceye-tools/eectl/cmd"
	"github.com/electriceye-tools/eectl/internal/log"
)

func main() {
	log.InitLogger()

	rootCmd := &cobra.Command{
		Use:   "eectl",
		Short: "ElectricEye deployment context and Lambda audit tools",
	}

	rootCmd.AddCommand(cmd.NewContextCmd())
	rootCmd.AddCommand(cmd.NewAuditCmd())
	rootCmd.AddCommand(cmd.NewForwardCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
