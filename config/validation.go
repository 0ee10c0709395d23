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

package config

import "fmt"

// ValidationError describes a single configuration problem. Level
// "error" makes Load return an error; Load does not act on "warning".
type ValidationError struct {
	Field   string
	Message string
	Level   string // error, warning
}

func (e ValidationError) String() string {
	return fmt.Sprintf("[%s] %s: %s", e.Level, e.Field, e.Message)
}

// ValidateConfiguration checks a loaded Config for problems. Bad
// ports, drivers, backends, missing DSN/webhook URL and neighbor
// entries without an id are errors; an ans_reserved_records entry
// naming an unknown neighbor is only a warning.
func ValidateConfiguration(cfg *Config) []ValidationError {
	var errs []ValidationError

	if cfg.Station.Port <= 0 || cfg.Station.Port > 65535 {
		errs = append(errs, ValidationError{
			Field: "station.port", Message: "must be between 1 and 65535", Level: "error",
		})
	}

	if cfg.Storage.Driver != "memory" && cfg.Storage.Driver != "postgres" {
		errs = append(errs, ValidationError{
			Field: "storage.driver", Message: "must be 'memory' or 'postgres'", Level: "error",
		})
	}
	if cfg.Storage.Driver == "postgres" && cfg.Storage.DSN == "" {
		errs = append(errs, ValidationError{
			Field: "storage.dsn", Message: "required when storage.driver is 'postgres'", Level: "error",
		})
	}

	if cfg.Spool.Driver != "file" && cfg.Spool.Driver != "memory" {
		errs = append(errs, ValidationError{
			Field: "spool.driver", Message: "must be 'file' or 'memory'", Level: "error",
		})
	}

	if cfg.Push.Backend != "log" && cfg.Push.Backend != "webhook" {
		errs = append(errs, ValidationError{
			Field: "push.backend", Message: "must be 'log' or 'webhook'", Level: "error",
		})
	}
	if cfg.Push.Backend == "webhook" && cfg.Push.WebhookURL == "" {
		errs = append(errs, ValidationError{
			Field: "push.webhook_url", Message: "required when push.backend is 'webhook'", Level: "error",
		})
	}

	neighborIDs := make(map[string]bool, len(cfg.Neighbors))
	for _, n := range cfg.Neighbors {
		if n.ID == "" {
			errs = append(errs, ValidationError{
				Field: "neighbors", Message: "neighbor entry missing id", Level: "error",
			})
			continue
		}
		neighborIDs[n.ID] = true
	}

	for name, id := range cfg.ANS {
		if id == "" {
			continue
		}
		if !neighborIDs[id] && id != cfg.Station.Host {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("ans_reserved_records.%s", name),
				Message: fmt.Sprintf("references unknown neighbor id %q", id),
				Level:   "warning",
			})
		}
	}

	return errs
}
