package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/oddshellnick/osn-system-utils/pkg/prockill"
)

var (
	killName          string
	killForce         bool
	killTree          bool
	killCaseSensitive bool
)

var killCmd = &cobra.Command{
	Use:   "kill [pid]",
	Short: "Terminate a process by PID or all processes by name",
	Long: `kill terminates the process with the given PID, or, with --name,
every process whose name matches exactly. Termination is graceful unless
--force; --tree includes all descendants discovered at call time.

Success means termination was issued, not that the processes are confirmed
gone.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (len(args) == 0) == (killName == "") {
			return fmt.Errorf("provide exactly one of a pid argument or --name")
		}

		ctl := prockill.System()
		opts := prockill.Options{
			Force:         killForce,
			Tree:          killTree,
			CaseSensitive: killCaseSensitive,
		}

		if killName != "" {
			pids, err := ctl.KillByName(killName, opts)
			if err != nil {
				return err
			}
			if len(pids) == 0 {
				return fmt.Errorf("no process named %q", killName)
			}
			for _, pid := range pids {
				fmt.Printf("terminated %d\n", pid)
			}
			return nil
		}

		pid, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid pid %q: %w", args[0], err)
		}
		if !ctl.KillByPID(int32(pid), opts) {
			return fmt.Errorf("process %d not found or not accessible", pid)
		}
		fmt.Printf("terminated %d\n", pid)
		return nil
	},
}

func init() {
	killCmd.Flags().StringVar(&killName, "name", "", "terminate every process with exactly this name")
	killCmd.Flags().BoolVar(&killForce, "force", false, "send a forceful kill signal instead of a graceful stop")
	killCmd.Flags().BoolVar(&killTree, "tree", false, "also terminate all descendants")
	killCmd.Flags().BoolVar(&killCaseSensitive, "case-sensitive", false, "match --name case-sensitively")
}
