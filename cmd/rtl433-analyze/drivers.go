package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AJolly/rtl-433/internal/driver"
)

var driversCmd = &cobra.Command{
	Use:   "drivers [name]",
	Short: "List registered drivers and the receiver settings they need",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		return runDrivers(os.Stdout, name)
	},
}

func runDrivers(w io.Writer, name string) error {
	drivers := driver.All()
	if name != "" {
		drv, ok := driver.ByName(name)
		if !ok {
			return fmt.Errorf("unknown driver %q", name)
		}
		drivers = []driver.Driver{drv}
	}
	for _, drv := range drivers {
		m := drv.Modulation()
		fmt.Fprintf(w, "%s\t%s\n", drv.Name(), drv.Description())
		fmt.Fprintf(w, "  model:      %s\n", drv.Model())
		fmt.Fprintf(w, "  fields:     %s\n", strings.Join(drv.Fields(), ", "))
		fmt.Fprintf(w, "  modulation: %s short=%dus long=%dus gap=%dus reset=%dus\n",
			m.Kind, m.ShortWidth, m.LongWidth, m.GapLimit, m.ResetLimit)
	}
	return nil
}
