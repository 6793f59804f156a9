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

// Package device enumerates candidate data partitions and mounts them
// read-only. It is a thin, non-interactive shell over /dev, /proc/mounts
// and mount(8); callers decide what to do with the results.
package device

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 💾 BlockDevice is one candidate partition.
type BlockDevice struct {
	Path      string // /dev/sdb1
	Name      string // sdb1
	SizeBytes int64  // 0 when unknown
}

// ❓ IsDevicePath reports whether the argument names a raw device rather
// than a mounted directory.
func IsDevicePath(p string) bool {
	return strings.HasPrefix(p, "/dev/")
}

// 📋 List returns partitions under /dev that look like data partitions and
// are not mounted by the running system. prefixes are device-name prefixes
// such as "sd", "nvme", "mmcblk", "vd".
func List(ctx context.Context, prefixes []string) ([]BlockDevice, error) {
	logger := zerolog.Ctx(ctx)

	mounted, err := mountedSources()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir("/dev")
	if err != nil {
		return nil, errors.Errorf("reading /dev: %w", err)
	}

	var devices []BlockDevice
	for _, entry := range entries {
		name := entry.Name()
		if !isDataPartition(name, prefixes) {
			continue
		}
		path := "/dev/" + name
		if _, ok := mounted[path]; ok {
			logger.Debug().Str("device", path).Msg("skipping mounted system partition")
			continue
		}
		devices = append(devices, BlockDevice{
			Path:      path,
			Name:      name,
			SizeBytes: sizeOf(name),
		})
	}
	return devices, nil
}

// isDataPartition matches partition names like sda1, vdb2, nvme0n1p1 and
// mmcblk0p2, but not whole disks.
func isDataPartition(name string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if !strings.HasPrefix(name, prefix) || len(name) <= len(prefix) {
			continue
		}
		rest := name[len(prefix):]
		last := rune(name[len(name)-1])
		switch prefix {
		case "nvme", "mmcblk":
			// Partitions carry a pN suffix; plain nvme0n1 is a whole disk.
			if strings.Contains(rest, "p") && unicode.IsDigit(last) {
				return true
			}
		default:
			// sdXN / vdXN: letters then a trailing partition number.
			if unicode.IsLetter(rune(rest[0])) && unicode.IsDigit(last) {
				return true
			}
		}
	}
	return false
}

func sizeOf(name string) int64 {
	data, err := os.ReadFile(filepath.Join("/sys/class/block", name, "size"))
	if err != nil {
		return 0
	}
	sectors, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0
	}
	return sectors * 512
}

type mountEntry struct {
	source   string
	point    string
	readOnly bool
}

// parseMounts reads /proc/mounts-format data.
func parseMounts(r io.Reader) ([]mountEntry, error) {
	var entries []mountEntry
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			continue
		}
		readOnly := false
		for _, opt := range strings.Split(fields[3], ",") {
			if opt == "ro" {
				readOnly = true
				break
			}
		}
		entries = append(entries, mountEntry{source: fields[0], point: fields[1], readOnly: readOnly})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Errorf("scanning mounts: %w", err)
	}
	return entries, nil
}

func readSystemMounts() ([]mountEntry, error) {
	f, err := os.Open("/proc/mounts")
	if err != nil {
		return nil, errors.Errorf("opening /proc/mounts: %w", err)
	}
	defer f.Close()
	return parseMounts(f)
}

func mountedSources() (map[string]struct{}, error) {
	entries, err := readSystemMounts()
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.source, "/dev/") {
			out[e.source] = struct{}{}
		}
	}
	return out, nil
}

// 🔍 MountPoint returns where device is currently mounted, whether that
// mount is read-only, and whether it is mounted at all.
func MountPoint(device string) (string, bool, bool, error) {
	entries, err := readSystemMounts()
	if err != nil {
		return "", false, false, err
	}
	for _, e := range entries {
		if e.source == device {
			return e.point, e.readOnly, true, nil
		}
	}
	return "", false, false, nil
}
