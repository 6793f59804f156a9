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
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/fang"
)

// Exit codes. A partial export copied everything it could but recorded
// failures; callers scripting around tap can tell it apart from a fatal run.
const (
	exitOK      = 0
	exitFatal   = 1
	exitPartial = 3
)

func main() {
	err := fang.Execute(context.Background(), newRootCmd())
	switch {
	case err == nil:
		os.Exit(exitOK)
	case errors.Is(err, errPartialExport):
		os.Exit(exitPartial)
	default:
		os.Exit(exitFatal)
	}
}
