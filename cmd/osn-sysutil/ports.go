package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oddshellnick/osn-system-utils/pkg/localport"
)

var (
	portsCandidates []int
	probeStart      int
	probeEnd        int
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "Inspect and allocate localhost ports",
}

var portsBusyCmd = &cobra.Command{
	Use:   "busy",
	Short: "List localhost ports with a bound socket",
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := newScanner().BusyPorts()
		if err != nil {
			return err
		}
		return renderPorts(ports, cfg.Output)
	},
}

var portsFreeCmd = &cobra.Command{
	Use:   "free",
	Short: fmt.Sprintf("List free ports in the scan range [%d, %d)", localport.PortRangeStart, localport.PortRangeEnd),
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := newScanner().FreePorts()
		if err != nil {
			return err
		}
		return renderPorts(ports, cfg.Output)
	},
}

var portsMapCmd = &cobra.Command{
	Use:   "map",
	Short: "Map PIDs to their bound localhost addresses",
	RunE: func(cmd *cobra.Command, args []string) error {
		byPID, err := newScanner().PIDAddresses()
		if err != nil {
			return err
		}
		return renderPIDAddresses(byPID, cfg.Output)
	},
}

var portsMinCmd = &cobra.Command{
	Use:   "min",
	Short: "Print the minimum free port, preferring --ports candidates",
	RunE: func(cmd *cobra.Command, args []string) error {
		candidates := portsCandidates
		if len(candidates) == 0 {
			candidates = cfg.CandidatePorts
		}
		port, err := newScanner().MinimumFreePort(candidates...)
		if err != nil {
			return err
		}
		fmt.Println(port)
		return nil
	},
}

var portsRandomCmd = &cobra.Command{
	Use:   "random",
	Short: "Print an OS-assigned free ephemeral port",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := localport.RandomFreePort()
		if err != nil {
			return err
		}
		fmt.Println(port)
		return nil
	},
}

var portsProbeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Bind-probe a port range in parallel and list the free ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		if probeStart >= probeEnd {
			return fmt.Errorf("probe range [%d, %d) is empty", probeStart, probeEnd)
		}
		return renderPorts(newScanner().ProbeRange(probeStart, probeEnd), cfg.Output)
	},
}

func newScanner() *localport.Scanner {
	s := localport.NewScanner()
	s.SetProbeWorkers(cfg.ProbeWorkers)
	return s
}

func init() {
	portsMinCmd.Flags().IntSliceVar(&portsCandidates, "ports", nil, "candidate ports to check before scanning the range")
	portsProbeCmd.Flags().IntVar(&probeStart, "start", localport.PortRangeStart, "first port to probe (inclusive)")
	portsProbeCmd.Flags().IntVar(&probeEnd, "end", localport.PortRangeEnd, "last port to probe (exclusive)")

	portsCmd.AddCommand(portsBusyCmd)
	portsCmd.AddCommand(portsFreeCmd)
	portsCmd.AddCommand(portsMapCmd)
	portsCmd.AddCommand(portsMinCmd)
	portsCmd.AddCommand(portsRandomCmd)
	portsCmd.AddCommand(portsProbeCmd)
}
