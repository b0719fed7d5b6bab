/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */


package main

import (
	"context"
	"os"
	"os/signal"

	"goscreenwriter/internal/cli"
	"goscreenwriter/internal/crash"
)

func main() {
	app := cli.NewApp()
	defer func() {
		if r := recover(); r != nil {
			crash.Handle(r, app.Workspace(), app.Journal())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	cmd := cli.NewRootCmd(app)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		_ = app.Close()
		os.Exit(1)
	}
}
