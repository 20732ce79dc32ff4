// geowalk drives a standalone 2-D geospatial index out of process: insert
// points, then run a near-neighbor or bounding-box query against them.
//
// Usage:
//
//	geowalk insert --dir ./data --lng 12.5 --lat 55.7 --doc '{"name":"a"}'
//	geowalk near --dir ./data --lng 12.5 --lat 55.7 --k 5
//	geowalk box --dir ./data --minlng 10 --minlat 50 --maxlng 15 --maxlat 60
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dataDir string

var rootCmd = &cobra.Command{
	Use:   "geowalk",
	Short: "Exercise a standalone geo index from the command line",
	Long:  "geowalk inserts points into and queries a 2d geohash+B-tree index persisted under --dir.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", "geowalk-data", "directory holding the index files and document store")
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(nearCmd)
	rootCmd.AddCommand(boxCmd)
	rootCmd.AddCommand(walkCmd)
}

func main() {
	Execute()
}
