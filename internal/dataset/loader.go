// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

// Package dataset loads interaction records from CSV files.
//
// The expected format is one interaction per row:
//
//	user_id,item_id[,weight]
//
// A header row is detected and skipped when the first field is not
// numeric. The weight column is optional and defaults to 1.0.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/reclens/reclens/internal/userknn"
)

// Load reads interactions from the CSV file at path.
func Load(path string) ([]userknn.Interaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	records, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return records, nil
}

// Read parses interactions from r.
func Read(r io.Reader) ([]userknn.Interaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // row width validated per record
	cr.TrimLeadingSpace = true

	var records []userknn.Interaction
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line++

		// Skip a header row such as "user_id,item_id,weight".
		if line == 1 && len(row) > 0 {
			if _, convErr := strconv.ParseInt(row[0], 10, 64); convErr != nil {
				continue
			}
		}

		rec, err := parseRow(row, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string, line int) (userknn.Interaction, error) {
	if len(row) < 2 || len(row) > 3 {
		return userknn.Interaction{}, &userknn.MalformedInteractionError{
			Line:  line,
			Field: "row",
			Value: fmt.Sprintf("%d columns", len(row)),
			Err:   fmt.Errorf("expected 2 or 3 columns"),
		}
	}

	userID, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return userknn.Interaction{}, &userknn.MalformedInteractionError{
			Line: line, Field: "user_id", Value: row[0], Err: err,
		}
	}

	itemID, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return userknn.Interaction{}, &userknn.MalformedInteractionError{
			Line: line, Field: "item_id", Value: row[1], Err: err,
		}
	}

	weight := 1.0
	if len(row) == 3 && row[2] != "" {
		weight, err = strconv.ParseFloat(row[2], 64)
		if err != nil {
			return userknn.Interaction{}, &userknn.MalformedInteractionError{
				Line: line, Field: "weight", Value: row[2], Err: err,
			}
		}
	}

	return userknn.Interaction{UserID: userID, ItemID: itemID, Weight: weight}, nil
}
