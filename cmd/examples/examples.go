// Package examples contains the "slaunch examples" command.
package examples

import (
	"fmt"
	"path/filepath"
	"strings"

	ex "github.com/hpcops/slaunch/examples"
	"github.com/spf13/cobra"
)

// Cmd represents the examples command
var Cmd = &cobra.Command{
	Use:     "examples [name]",
	Aliases: []string{"example"},
	Short:   "Print example job files.",
	RunE: func(cmd *cobra.Command, args []string) error {

		// Map example name to asset name
		// e.g. gan-train => gan-train.yml
		byShortName := map[string]string{}
		for _, n := range ex.AssetNames() {
			sn := strings.TrimSuffix(n, filepath.Ext(n))
			byShortName[sn] = n
		}

		// Print a list of example names and exit
		if len(args) == 0 || args[0] == "list" {
			for _, n := range ex.AssetNames() {
				fmt.Println(n)
			}
			return nil
		}

		// Retrieve and print the example
		name := args[0]
		if key, ok := byShortName[name]; ok {
			name = key
		}

		data, err := ex.Asset(name)
		if err != nil {
			return err
		}

		fmt.Println(string(data))
		return nil
	},
}
