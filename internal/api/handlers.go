// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package api

import (
	"time"

	"github.com/librarium-app/librarium/internal/cache"
	"github.com/librarium-app/librarium/internal/circulation"
	"github.com/librarium-app/librarium/internal/config"
	"github.com/librarium-app/librarium/internal/database"
	"github.com/librarium-app/librarium/internal/oracle"
)

// Handler holds the wired components the endpoints operate on.
type Handler struct {
	db        *database.DB
	engine    *circulation.Engine
	oracle    *oracle.Oracle
	summaries *cache.LRUCache
	cfg       *config.Config
	startTime time.Time
}

// NewHandler wires the API handler.
func NewHandler(db *database.DB, engine *circulation.Engine, ora *oracle.Oracle, summaries *cache.LRUCache, cfg *config.Config) *Handler {
	return &Handler{
		db:        db,
		engine:    engine,
		oracle:    ora,
		summaries: summaries,
		cfg:       cfg,
		startTime: time.Now(),
	}
}
