// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package database

import (
	"context"
	"fmt"

	"github.com/librarium-app/librarium/internal/logging"
	"github.com/librarium-app/librarium/internal/models"
)

func intPtr(v int) *int { return &v }

// sampleBooks is the starter catalog loaded into an empty database when
// seeding is enabled.
var sampleBooks = []models.Book{
	{
		Title: "To Kill a Mockingbird", Author: "Harper Lee", ISBN: "9780061120084",
		Genre: "Fiction", PublicationYear: intPtr(1960),
		Description: "A young girl watches her father defend a Black man falsely accused of a crime in the Depression-era South.",
	},
	{
		Title: "1984", Author: "George Orwell", ISBN: "9780451524935",
		Genre: "Dystopian Fiction", PublicationYear: intPtr(1949),
		Description: "A bureaucrat in a totalitarian state commits the crime of independent thought.",
	},
	{
		Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", ISBN: "9780743273565",
		Genre: "Fiction", PublicationYear: intPtr(1925),
		Description: "A mysterious millionaire throws lavish parties in pursuit of a lost love during the Jazz Age.",
	},
	{
		Title: "Pride and Prejudice", Author: "Jane Austen", ISBN: "9780141439518",
		Genre: "Romance", PublicationYear: intPtr(1813),
		Description: "Elizabeth Bennet navigates manners, marriage, and her own first impressions in Regency England.",
	},
	{
		Title: "The Catcher in the Rye", Author: "J.D. Salinger", ISBN: "9780316769488",
		Genre: "Fiction", PublicationYear: intPtr(1951),
		Description: "A disaffected teenager drifts through New York City after being expelled from prep school.",
	},
}

var sampleUser = models.User{
	Name:  "John Doe",
	Email: "john.doe@email.com",
	Phone: "555-0123",
}

// SeedSampleData loads the starter catalog and a sample borrower into an
// empty database. A non-empty catalog disables seeding entirely, so
// restarting against an existing database never duplicates rows.
func (db *DB) SeedSampleData(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var bookCount int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM books`).Scan(&bookCount); err != nil {
		return fmt.Errorf("failed to check seed state: %w", err)
	}
	if bookCount > 0 {
		logging.Debug().Int("books", bookCount).Msg("Catalog not empty, skipping seed")
		return nil
	}

	for i := range sampleBooks {
		b := sampleBooks[i]
		if err := db.CreateBook(ctx, &b); err != nil {
			return fmt.Errorf("failed to seed book %q: %w", b.Title, err)
		}
	}

	u := sampleUser
	if err := db.CreateUser(ctx, &u); err != nil {
		return fmt.Errorf("failed to seed user %q: %w", u.Email, err)
	}

	logging.Info().
		Int("books", len(sampleBooks)).
		Int("users", 1).
		Msg("Sample data seeded")
	return nil
}
