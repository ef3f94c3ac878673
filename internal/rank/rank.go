// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

// Package rank implements catalog discovery: deterministic lexical search
// over book fields, and re-validation of oracle recommendation scores
// against the candidate snapshot.
package rank

import (
	"sort"
	"strings"

	"github.com/librarium-app/librarium/internal/metrics"
	"github.com/librarium-app/librarium/internal/models"
	"github.com/librarium-app/librarium/internal/oracle"
)

// Field weights for lexical scoring. A title hit outranks an author or
// genre hit, which outrank a description hit. A token matching the
// start of the title earns a bonus on top of the title weight.
const (
	weightTitle       = 4
	weightAuthor      = 3
	weightGenre       = 3
	weightDescription = 1
	bonusTitlePrefix  = 2
)

// scoredBook pairs a book with its lexical score for sorting.
type scoredBook struct {
	book  models.Book
	score int
	pos   int
}

// Search returns the books matching the query, best match first. The
// query is split into whitespace-separated tokens; each token is a
// case-insensitive substring test per field and the book's score is the
// weighted sum of its hits. Ties keep catalog insertion order, so
// results are fully deterministic for a given catalog state.
func Search(books []models.Book, query string) []models.Book {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return []models.Book{}
	}

	scored := make([]scoredBook, 0)
	for i, b := range books {
		if score := scoreBook(b, tokens); score > 0 {
			scored = append(scored, scoredBook{book: b, score: score, pos: i})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].pos < scored[j].pos
	})

	results := make([]models.Book, len(scored))
	for i, s := range scored {
		results[i] = s.book
	}
	metrics.RecordSearch(len(results))
	return results
}

// scoreBook sums weighted per-token field hits. Tokens must already be
// lowercased.
func scoreBook(b models.Book, tokens []string) int {
	title := strings.ToLower(b.Title)
	author := strings.ToLower(b.Author)
	genre := strings.ToLower(b.Genre)
	description := strings.ToLower(b.Description)

	score := 0
	for _, tok := range tokens {
		if strings.Contains(title, tok) {
			score += weightTitle
			if strings.HasPrefix(title, tok) {
				score += bonusTitlePrefix
			}
		}
		if strings.Contains(author, tok) {
			score += weightAuthor
		}
		if strings.Contains(genre, tok) {
			score += weightGenre
		}
		if strings.Contains(description, tok) {
			score += weightDescription
		}
	}
	return score
}

// clamp bounds a rating to [0, 10].
func clamp(rating float64) float64 {
	if rating < 0 {
		return 0
	}
	if rating > 10 {
		return 10
	}
	return rating
}

// BuildRecommendations re-validates raw oracle scores against the
// candidate snapshot the prompt was built from. Scores referencing books
// outside the snapshot are dropped (the model hallucinated an id),
// ratings are clamped to [0, 10], and duplicates keep the first
// occurrence. The oracle's own ordering is preserved: the model ranks,
// this function only repairs.
func BuildRecommendations(candidates []models.Book, scores []oracle.CandidateScore) []models.Recommendation {
	byID := make(map[int64]int, len(candidates))
	for i, b := range candidates {
		byID[b.ID] = i
	}

	seen := make(map[int64]bool, len(scores))
	recs := make([]models.Recommendation, 0, len(scores))
	for _, s := range scores {
		pos, ok := byID[s.BookID]
		if !ok || seen[s.BookID] {
			continue
		}
		seen[s.BookID] = true
		recs = append(recs, models.Recommendation{
			Book:   candidates[pos],
			Rating: clamp(s.Rating),
			Reason: s.Reason,
		})
	}
	return recs
}
