// Copyright 2026 The AgentVox Authors
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

// Command cleanup purges expired sessions and stale pending invites. It is
// meant to run from cron; the server does the same purge on a timer, this
// exists for deployments that run the server with a read-mostly database user.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/agentvox/agentvox/internal/config"
	"github.com/agentvox/agentvox/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	now := time.Now()

	sessions, err := postgres.NewSessionRepository(db).DeleteExpired(ctx, now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Session purge failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Purged %d expired sessions.\n", sessions)

	invites, err := postgres.NewInviteRepository(db).DeleteExpired(ctx, now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invite purge failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Purged %d expired invites.\n", invites)
}
