package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/blockc/internal/profile"
)

// DeviceInfo describes one device profile.
type DeviceInfo struct {
	Target    string `json:"target"`
	Device    string `json:"device"`
	Name      string `json:"name"`
	Extension string `json:"extension"`
}

// NewDevicesCommand creates the devices command.
func NewDevicesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "devices [target]",
		Short:         "List targets and their device profiles",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDevices(rootOpts, args, cmd)
		},
	}
}

func runDevices(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	targets := profile.Targets()
	if len(args) == 1 {
		targets = []string{args[0]}
	}

	devices, err := ListDevices(targets)
	if err != nil {
		return fail(formatter, ExitCommandError, &LoadError{Code: ErrCodeUnknownTarget, Message: err.Error()})
	}
	if formatter.JSON() {
		return formatter.Success(devices)
	}

	current := ""
	for _, d := range devices {
		if d.Target != current {
			current = d.Target
			fmt.Fprintf(formatter.Writer, "%s (%s)\n", d.Target, d.Extension)
		}
		fmt.Fprintf(formatter.Writer, "  %-12s %s\n", d.Device, d.Name)
	}
	return nil
}

// ListDevices returns every device of the given targets, in profile order.
func ListDevices(targets []string) ([]DeviceInfo, error) {
	out := []DeviceInfo{}
	for _, target := range targets {
		ids, err := profile.Devices(target)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			p, err := profile.Lookup(target, id)
			if err != nil {
				return nil, err
			}
			out = append(out, DeviceInfo{Target: p.Target.ID, Device: p.Device, Name: p.Name, Extension: p.Target.Extension})
		}
	}
	return out, nil
}
