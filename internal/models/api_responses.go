// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package models

import "time"

// APIResponse is the standardized response wrapper used by all HTTP
// endpoints.
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {...},
//	  "metadata": {"timestamp": "2026-02-10T12:00:00Z", "query_time_ms": 4}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "ALREADY_BORROWED", "message": "Book is not available"},
//	  "metadata": {"timestamp": "2026-02-10T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError carries a machine-readable code alongside a human-readable
// message.
//
// Error codes used by the API:
//   - VALIDATION_ERROR: missing/malformed required fields, empty query text
//   - NOT_FOUND: referenced book/user/loan absent
//   - DUPLICATE_KEY: isbn/email collision
//   - CONFLICT: deletion blocked by referencing loan records
//   - ALREADY_BORROWED / ALREADY_RETURNED: circulation state conflicts
//   - ORACLE_UNAVAILABLE: scoring/generation collaborator failure or timeout
//   - DATABASE_ERROR: store failure
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
