package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"GeoDB/geo"
)

var (
	nearLng, nearLat float64
	nearK            int
	nearMaxDist      float64
	nearSphere       bool
	nearBits         uint8
	nearMin, nearMax float64
)

var nearCmd = &cobra.Command{
	Use:   "near",
	Short: "Find the k nearest points to a location",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openIndexEnv(dataDir, nearBits, nearMin, nearMax)
		if err != nil {
			return err
		}
		defer env.Close()

		metric := geo.MetricPlane
		if nearSphere {
			metric = geo.MetricSphere
		}

		search, err := geo.NewNearSearch(env.desc, env.cursor, env.docs, acceptAllMatcher{},
			geo.Point{X: nearLng, Y: nearLat}, nearK, nearMaxDist, metric)
		if err != nil {
			return err
		}
		defer search.Close()

		results, err := search.Run()
		if err != nil {
			return fmt.Errorf("near search: %w", err)
		}

		for _, r := range results {
			doc, err := env.docs.Load(r.Ref)
			if err != nil {
				doc = []byte("null")
			}
			fmt.Printf("%s\tdistance=%.6f\t%s\n", r.Ref, r.ExactDistance, doc)
		}
		return nil
	},
}

func init() {
	nearCmd.Flags().Float64Var(&nearLng, "lng", 0, "query longitude (x)")
	nearCmd.Flags().Float64Var(&nearLat, "lat", 0, "query latitude (y)")
	nearCmd.Flags().IntVar(&nearK, "k", 10, "number of neighbors to return")
	nearCmd.Flags().Float64Var(&nearMaxDist, "max-distance", 1e18, "maximum distance to search out to")
	nearCmd.Flags().BoolVar(&nearSphere, "sphere", false, "use great-circle distance instead of planar distance")
	nearCmd.Flags().Uint8Var(&nearBits, "bits", 26, "index precision in bits per axis (only used when creating the index)")
	nearCmd.Flags().Float64Var(&nearMin, "min", -180, "index domain minimum (only used when creating the index)")
	nearCmd.Flags().Float64Var(&nearMax, "max", 180, "index domain maximum (only used when creating the index)")
}
