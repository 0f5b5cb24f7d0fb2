/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/carverauto/autochecks/pkg/cli"
	"github.com/carverauto/autochecks/pkg/lifecycle"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := lifecycle.SignalContext(context.Background())
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		return cli.ExitSuccess
	}

	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || exitErr.Err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}

	return cli.ExitCode(err)
}
