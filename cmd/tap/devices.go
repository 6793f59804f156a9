// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/tap/pkg/device"
	"github.com/walteh/tap/pkg/log"
)

// 💾 newDevicesCmd creates the devices subcommand
func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List candidate partitions that are not mounted by the system",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			devices, err := device.List(ctx, cfg.Mount.DevicePrefixes)
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				pterm.Info.Println("no unmounted data partitions found")
				return nil
			}

			rows := pterm.TableData{{"DEVICE", "SIZE"}}
			for _, d := range devices {
				size := "unknown"
				if d.SizeBytes > 0 {
					size = log.FormatSize(d.SizeBytes)
				}
				rows = append(rows, []string{d.Path, size})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}
}
