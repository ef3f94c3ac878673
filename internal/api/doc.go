// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

// Package api implements the HTTP surface of Librarium: catalog and
// borrower CRUD, the borrow/return circulation endpoints, lexical
// search, oracle-backed recommendations and summaries, and the stats
// and health endpoints.
//
// All endpoints respond with the models.APIResponse envelope. Errors
// carry a machine-readable code; store and oracle sentinels are mapped
// onto HTTP status codes in errors.go.
package api
