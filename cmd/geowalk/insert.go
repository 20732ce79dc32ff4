package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"GeoDB/geo"
)

var (
	insertLng, insertLat       float64
	insertDocJSON              string
	insertBits                 uint8
	insertMin, insertMax       float64
)

var insertCmd = &cobra.Command{
	Use:   "insert",
	Short: "Insert a point into the index",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openIndexEnv(dataDir, insertBits, insertMin, insertMax)
		if err != nil {
			return err
		}
		defer env.Close()

		hash, err := env.desc.Hash(insertLng, insertLat)
		if err != nil {
			return fmt.Errorf("hash point: %w", err)
		}

		ref := geo.NewDocRef()
		if err := env.cursor.Insert(hash.Bytes(), ref, nil); err != nil {
			return fmt.Errorf("insert into index: %w", err)
		}

		doc := json.RawMessage(insertDocJSON)
		if insertDocJSON == "" {
			doc = json.RawMessage("{}")
		}
		if !json.Valid(doc) {
			return fmt.Errorf("--doc must be valid JSON, got %q", insertDocJSON)
		}
		if err := env.docs.Put(ref, doc); err != nil {
			return fmt.Errorf("store document: %w", err)
		}

		fmt.Println(ref.String())
		return nil
	},
}

func init() {
	insertCmd.Flags().Float64Var(&insertLng, "lng", 0, "longitude (x)")
	insertCmd.Flags().Float64Var(&insertLat, "lat", 0, "latitude (y)")
	insertCmd.Flags().StringVar(&insertDocJSON, "doc", "", "JSON document body to store alongside the point")
	insertCmd.Flags().Uint8Var(&insertBits, "bits", 26, "index precision in bits per axis (only used when creating the index)")
	insertCmd.Flags().Float64Var(&insertMin, "min", -180, "index domain minimum (only used when creating the index)")
	insertCmd.Flags().Float64Var(&insertMax, "max", 180, "index domain maximum (only used when creating the index)")
}
