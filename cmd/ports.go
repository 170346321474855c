package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.bug.st/serial/enumerator"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List attached serial devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := enumerator.GetDetailedPortsList()
		if err != nil {
			return fmt.Errorf("enumerating serial ports: %w", err)
		}
		if len(ports) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No serial devices found.")
			return nil
		}
		for _, p := range ports {
			if p.IsUSB {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tUSB %s:%s", p.Name, p.VID, p.PID)
				if p.SerialNumber != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "\tserial %s", p.SerialNumber)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), p.Name)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
