// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package models

import "time"

// Request bodies for the HTTP API. Unknown fields in incoming JSON are
// ignored; required fields are enforced with go-playground/validator tags
// at the handler boundary.

// CreateBookRequest is the body for POST /books. Description is optional;
// when absent the server asks the generation oracle for one (creation
// still succeeds if the oracle is unavailable).
type CreateBookRequest struct {
	Title           string `json:"title" validate:"required,max=200"`
	Author          string `json:"author" validate:"required,max=150"`
	ISBN            string `json:"isbn" validate:"required,max=20"`
	Genre           string `json:"genre" validate:"max=100"`
	PublicationYear *int   `json:"publication_year" validate:"omitempty,gte=0,lte=2100"`
	Description     string `json:"description"`
}

// UpdateBookRequest is the body for PUT /books/{id}. All fields are
// optional; nil pointers leave the stored value unchanged. The id and the
// available flag cannot be updated through this request.
type UpdateBookRequest struct {
	Title           *string `json:"title" validate:"omitempty,min=1,max=200"`
	Author          *string `json:"author" validate:"omitempty,min=1,max=150"`
	ISBN            *string `json:"isbn" validate:"omitempty,min=1,max=20"`
	Genre           *string `json:"genre" validate:"omitempty,max=100"`
	PublicationYear *int    `json:"publication_year" validate:"omitempty,gte=0,lte=2100"`
	Description     *string `json:"description"`
}

// CreateUserRequest is the body for POST /users.
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email,max=120"`
	Phone string `json:"phone" validate:"max=20"`
}

// UpdateUserRequest is the body for PUT /users/{id}.
type UpdateUserRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email *string `json:"email" validate:"omitempty,email,max=120"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`
}

// BorrowRequest is the body for POST /borrow.
type BorrowRequest struct {
	BookID int64 `json:"book_id" validate:"required,gt=0"`
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

// ReturnRequest is the body for POST /return.
type ReturnRequest struct {
	RecordID int64 `json:"record_id" validate:"required,gt=0"`
}

// SearchRequest is the body for POST /search. An empty query is rejected
// with VALIDATION_ERROR rather than returning the whole catalog.
type SearchRequest struct {
	Query string `json:"query" validate:"required"`
}

// RecommendationsRequest is the body for POST /recommendations.
type RecommendationsRequest struct {
	Preferences string `json:"preferences" validate:"required"`
}

// RecommendationsResponse wraps the ordered recommendation list.
type RecommendationsResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
}

// SummaryResponse is the body for GET /books/{id}/summary.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// HealthResponse reports component status for GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Oracle    string    `json:"oracle"`
	Timestamp time.Time `json:"timestamp"`
}
