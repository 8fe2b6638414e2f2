// =============================================================================
// GST Returns Reporter - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   gstreport version [--short]
//
// OUTPUT:
//   GST Returns Reporter
//   Version:    1.0.0
//   Build Date: 2024-01-01
//   Go Version: go1.24.0
//   excelize:   v2.10.0
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set at build time:
//   go build -ldflags "-X 'github.com/nihasbabu/gst-modules/cmd.Version=1.0.0'"
var (
	Version   = "1.0.0"
	BuildDate = "unknown"
)

// reportedModules are the libraries whose versions affect the workbooks.
var reportedModules = []struct {
	path  string
	label string
}{
	{"github.com/xuri/excelize/v2", "excelize"},
	{"github.com/shopspring/decimal", "decimal"},
}

var short bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, Go runtime version and the versions of the spreadsheet and decimal libraries.`,
	Run: func(cmd *cobra.Command, args []string) {
		if short {
			fmt.Println(Version)
			return
		}
		fmt.Println("GST Returns Reporter")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Build Date: %s\n", BuildDate)
		fmt.Printf("Go Version: %s\n", runtime.Version())
		for _, m := range moduleVersions() {
			fmt.Printf("%-11s %s\n", m[0]+":", m[1])
		}
	},
}

// moduleVersions returns label/version pairs of the reported modules found
// in the build info. Test binaries and builds without module info give none.
func moduleVersions() [][2]string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	var out [][2]string
	for _, m := range reportedModules {
		for _, dep := range info.Deps {
			if dep.Path == m.path {
				out = append(out, [2]string{m.label, dep.Version})
			}
		}
	}
	return out
}

func init() {
	versionCmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	rootCmd.AddCommand(versionCmd)
}
