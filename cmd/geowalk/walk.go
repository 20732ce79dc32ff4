package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	walkLng, walkLat float64
	walkPrefixBits   uint8
	walkBits         uint8
	walkMin, walkMax float64
)

// walkCmd is the geoWalk diagnostic: walk every key under a geohash
// prefix cell and print the raw (key, docRef) pairs as stored, with no
// accumulation, dedup, or residual filtering.
var walkCmd = &cobra.Command{
	Use:   "walk",
	Short: "Walk every key under the geohash prefix containing a point",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openIndexEnv(dataDir, walkBits, walkMin, walkMax)
		if err != nil {
			return err
		}
		defer env.Close()

		hash, err := env.desc.Hash(walkLng, walkLat)
		if err != nil {
			return fmt.Errorf("hash point: %w", err)
		}
		for hash.Bits() > walkPrefixBits {
			hash = hash.Parent()
		}

		low := hash.Bytes()
		high := hash.HighBound()

		pos, ok, err := env.cursor.Locate(low, +1)
		if err != nil {
			return fmt.Errorf("locate prefix start: %w", err)
		}
		if !ok {
			return nil
		}

		for {
			key, ref, err := env.cursor.KeyAt(pos)
			if err != nil {
				return fmt.Errorf("read key: %w", err)
			}
			if len(key) < 8 || bytes.Compare(key[:8], high) > 0 {
				break
			}
			fmt.Printf("%x\t%s\n", key, ref)

			next, ok, err := env.cursor.Advance(pos, +1)
			if err != nil {
				return fmt.Errorf("advance cursor: %w", err)
			}
			if !ok {
				break
			}
			pos = next
		}
		return nil
	},
}

func init() {
	walkCmd.Flags().Float64Var(&walkLng, "lng", 0, "longitude of a point inside the prefix cell")
	walkCmd.Flags().Float64Var(&walkLat, "lat", 0, "latitude of a point inside the prefix cell")
	walkCmd.Flags().Uint8Var(&walkPrefixBits, "prefix-bits", 8, "geohash precision, in bits per axis, to walk")
	walkCmd.Flags().Uint8Var(&walkBits, "bits", 26, "index precision in bits per axis (only used when creating the index)")
	walkCmd.Flags().Float64Var(&walkMin, "min", -180, "index domain minimum (only used when creating the index)")
	walkCmd.Flags().Float64Var(&walkMax, "max", 180, "index domain maximum (only used when creating the index)")
}
