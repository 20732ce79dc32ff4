package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"GeoDB/geo"
)

var (
	boxMinLng, boxMinLat, boxMaxLng, boxMaxLat float64
	boxLimit                                   int
	boxBits                                    uint8
	boxMin, boxMax                             float64
)

var boxCmd = &cobra.Command{
	Use:   "box",
	Short: "Find points inside an axis-aligned rectangle",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openIndexEnv(dataDir, boxBits, boxMin, boxMax)
		if err != nil {
			return err
		}
		defer env.Close()

		region := geo.NewBox(
			geo.Point{X: boxMinLng, Y: boxMinLat},
			geo.Point{X: boxMaxLng, Y: boxMaxLat},
		)

		browse, err := geo.NewBoxBrowse(env.desc, env.cursor, env.docs, acceptAllMatcher{}, region)
		if err != nil {
			return err
		}
		defer browse.Close()

		results, err := browse.Run(boxLimit)
		if err != nil {
			return fmt.Errorf("box browse: %w", err)
		}

		for _, r := range results {
			doc, err := env.docs.Load(r.Ref)
			if err != nil {
				doc = []byte("null")
			}
			fmt.Printf("%s\t%s\n", r.Ref, doc)
		}
		return nil
	},
}

func init() {
	boxCmd.Flags().Float64Var(&boxMinLng, "minlng", 0, "minimum longitude")
	boxCmd.Flags().Float64Var(&boxMinLat, "minlat", 0, "minimum latitude")
	boxCmd.Flags().Float64Var(&boxMaxLng, "maxlng", 0, "maximum longitude")
	boxCmd.Flags().Float64Var(&boxMaxLat, "maxlat", 0, "maximum latitude")
	boxCmd.Flags().IntVar(&boxLimit, "limit", 1000, "maximum number of candidates to check before stopping")
	boxCmd.Flags().Uint8Var(&boxBits, "bits", 26, "index precision in bits per axis (only used when creating the index)")
	boxCmd.Flags().Float64Var(&boxMin, "min", -180, "index domain minimum (only used when creating the index)")
	boxCmd.Flags().Float64Var(&boxMax, "max", 180, "index domain maximum (only used when creating the index)")
}
