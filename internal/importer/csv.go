// Package importer loads contacts into LifeGraph from external formats.
// Currently that means CSV exports from address books and spreadsheets.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/scrypster/lifegraph/internal/storage"
	"github.com/scrypster/lifegraph/pkg/types"
)

// Recognized CSV columns. Only "name" is required; header matching is
// case-insensitive and column order is free.
var knownColumns = map[string]bool{
	"name":     true,
	"nickname": true,
	"email":    true,
	"phone":    true,
	"location": true,
	"birthday": true,
	"notes":    true,
	"tags":     true,
}

// Accepted birthday layouts, tried in order.
var birthdayLayouts = []string{"2006-01-02", "2006/01/02", "01/02/2006"}

// Result summarizes a CSV import run. Row numbers in Errors are 1-based and
// include the header row, matching what users see in their spreadsheet.
type Result struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// ImportCSV reads contacts from r and creates a person per row. Rows that
// fail validation are skipped and reported in the result; a malformed file
// (bad header, unreadable CSV) fails the whole import instead.
func ImportCSV(ctx context.Context, r io.Reader, people storage.PersonStore) (*Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if knownColumns[key] {
			columns[key] = i
		}
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("CSV header is missing the required %q column", "name")
	}

	result := &Result{}
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row %d: %w", rowNum, err)
		}

		person, err := personFromRecord(record, columns)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		if err := people.CreatePerson(ctx, person); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		result.Created++
	}

	return result, nil
}

func personFromRecord(record []string, columns map[string]int) (*types.Person, error) {
	field := func(key string) string {
		i, ok := columns[key]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	name := field("name")
	if name == "" {
		return nil, fmt.Errorf("name is empty")
	}

	person := &types.Person{
		ID:       types.NewPersonID(),
		Name:     name,
		Nickname: field("nickname"),
		Email:    field("email"),
		Phone:    field("phone"),
		Location: field("location"),
		Notes:    field("notes"),
	}

	if raw := field("birthday"); raw != "" {
		birthday, err := parseBirthday(raw)
		if err != nil {
			return nil, err
		}
		person.Birthday = &birthday
	}

	if raw := field("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ";") {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" {
				person.Tags = append(person.Tags, tag)
			}
		}
	}

	return person, nil
}

func parseBirthday(raw string) (time.Time, error) {
	for _, layout := range birthdayLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized birthday %q", raw)
}
