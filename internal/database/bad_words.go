package database

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	log "github.com/sirupsen/logrus"
)

// SeedBadWords downloads a newline separated word list into the bad_words table.
// It does nothing when the table is already populated.
func (db *DB) SeedBadWords(ctx context.Context, url string) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bad_words").Scan(&count); err != nil {
		return fmt.Errorf("failed to check bad words count: %w", err)
	}

	if count > 0 {
		log.Debugf("Bad words filter already populated with %d words", count)
		return nil
	}

	log.WithField("url", url).Info("Downloading bad words list")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build bad words request: %w", err)
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download bad words list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status code from bad words URL: %d", resp.StatusCode)
	}

	wordsAdded := 0
	err = db.WithTx(ctx, func(tx *Tx) error {
		stmt, err := tx.PrepareContext(ctx, db.Dialect.RewriteQuery("INSERT INTO bad_words (word) VALUES (?)"))
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		// A failed insert aborts a Postgres transaction, so duplicates are dropped up front
		seen := make(map[string]struct{})
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			word := strings.TrimSpace(strings.ToLower(scanner.Text()))
			if word == "" {
				continue
			}
			if _, dup := seen[word]; dup {
				continue
			}
			seen[word] = struct{}{}
			if _, err := stmt.ExecContext(ctx, word); err != nil {
				return fmt.Errorf("failed to insert bad word: %w", err)
			}
			wordsAdded++
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("error reading bad words: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Infof("Bad words filter populated with %d words", wordsAdded)
	return nil
}

// IsBadWord checks a single word against the filter
func (db *DB) IsBadWord(ctx context.Context, word string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bad_words WHERE word = ?", strings.TrimSpace(strings.ToLower(word))).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check bad word: %w", err)
	}
	return count > 0, nil
}

// ContainsBadWord reports whether the text, or any word in it, is on the filter list
func (db *DB) ContainsBadWord(ctx context.Context, text string) (bool, error) {
	candidates := []string{text}
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len(words) > 1 {
		candidates = append(candidates, words...)
	}

	for _, w := range candidates {
		bad, err := db.IsBadWord(ctx, w)
		if err != nil {
			return false, err
		}
		if bad {
			log.WithField("text", text).Info("Bad word detected")
			return true, nil
		}
	}
	return false, nil
}
