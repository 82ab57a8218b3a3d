package showports

import (
	"fmt"

	"github.com/mdouchement/airqd/pms"
	"github.com/spf13/cobra"
)

func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "show-ports",
		Short: "Show the serial ports available for the sensor",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			ports, err := pms.ListPorts()
			if err != nil {
				return err
			}

			if len(ports) == 0 {
				fmt.Println("No serial port found")
				return nil
			}

			for _, p := range ports {
				mark := " "
				if pms.IsBridge(p) {
					mark = "*" // Candidate for auto-detection
				}

				if !p.IsUSB {
					fmt.Printf("%s %-16s\n", mark, p.Name)
					continue
				}
				fmt.Printf("%s %-16s %s:%s  %-12s \"%s\"\n", mark, p.Name, p.VID, p.PID, p.SerialNumber, p.Product)
			}

			return nil
		},
	}
}
