// DIM Station - decentralized instant-messaging relay
// Copyright (C) 2025 dimchat
//
// This file is part of DIM Station.
//
// DIM Station is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// DIM Station is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with DIM Station. If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dimchat/station/config"
)

var validateConfigPath string

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Parse a station config file and report any error",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadFromFile(validateConfigPath)
		if err != nil {
			return err
		}
		fmt.Printf("ok: station %s:%d, %d neighbor(s), storage=%s, spool=%s, push=%s\n",
			cfg.Station.Host, cfg.Station.Port, len(cfg.Neighbors),
			cfg.Storage.Driver, cfg.Spool.Driver, cfg.Push.Backend)
		return nil
	},
}

func init() {
	validateConfigCmd.Flags().StringVarP(&validateConfigPath, "config", "c", "station.yaml", "path to the station config file")
	rootCmd.AddCommand(validateConfigCmd)
}
