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

package device

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔒 MountReadOnly mounts device read-only under baseDir using the given
// mount-point prefix and returns the mount point. If the device is already
// mounted read-only its existing mount point is reused; an existing
// writable mount is an error because triage must never touch the source.
func MountReadOnly(ctx context.Context, device, baseDir, prefix string) (string, error) {
	logger := zerolog.Ctx(ctx)

	point, readOnly, mounted, err := MountPoint(device)
	if err != nil {
		return "", err
	}
	if mounted {
		if !readOnly {
			return "", errors.Errorf("device %s is already mounted writable at %s", device, point)
		}
		logger.Debug().Str("device", device).Str("mountpoint", point).Msg("reusing existing read-only mount")
		return point, nil
	}

	target := filepath.Join(baseDir, prefix+filepath.Base(device))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", errors.Errorf("creating mount point %s: %w", target, err)
	}

	cmd := exec.CommandContext(ctx, "mount", "-o", "ro", device, target)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", errors.Errorf("mounting %s at %s: %w: %s", device, target, err, strings.TrimSpace(string(out)))
	}

	logger.Info().Str("device", device).Str("mountpoint", target).Msg("mounted read-only")
	return target, nil
}

// 🔓 Unmount detaches a mount point created by MountReadOnly.
func Unmount(ctx context.Context, mountPoint string) error {
	cmd := exec.CommandContext(ctx, "umount", mountPoint)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Errorf("unmounting %s: %w: %s", mountPoint, err, strings.TrimSpace(string(out)))
	}
	zerolog.Ctx(ctx).Info().Str("mountpoint", mountPoint).Msg("unmounted")
	return nil
}
