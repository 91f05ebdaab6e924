// Package ledgercsv maps return records to the ledger CSV row layout shared by
// the flat-file store and the admin export.
package ledgercsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/polkiloo/returnearn/internal/domain/model"
)

// Header is the ledger column order. The first ten columns are the portal's
// historical layout; the trailing ones carry provenance.
var Header = []string{
	"Username",
	"Product Name",
	"Condition",
	"Days Used",
	"Score",
	"Credit Earned",
	"action",
	"Time",
	"Pickup Date",
	"Pickup Time",
	"Record ID",
	"Policy Version",
	"Model Version",
}

// TimeLayout is the encoding of the submission time column.
const TimeLayout = time.RFC3339Nano

// Encode converts record into a CSV row.
func Encode(record model.ReturnRecord) []string {
	return []string{
		record.Username,
		record.ProductName,
		string(record.Condition),
		strconv.Itoa(record.DaysUsed),
		strconv.FormatFloat(record.Score, 'f', -1, 64),
		strconv.FormatInt(record.Credit, 10),
		string(record.Action),
		record.SubmittedAt.UTC().Format(TimeLayout),
		record.PickupDate,
		record.PickupTime,
		record.ID,
		strconv.FormatInt(record.PolicyVersion, 10),
		record.ModelVersion,
	}
}

// Decode parses a CSV row produced by Encode.
func Decode(row []string) (model.ReturnRecord, error) {
	if len(row) != len(Header) {
		return model.ReturnRecord{}, fmt.Errorf("ledger row has %d columns, want %d", len(row), len(Header))
	}

	days, err := strconv.Atoi(row[3])
	if err != nil {
		return model.ReturnRecord{}, fmt.Errorf("parse days used: %w", err)
	}
	score, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		return model.ReturnRecord{}, fmt.Errorf("parse score: %w", err)
	}
	credit, err := strconv.ParseInt(row[5], 10, 64)
	if err != nil {
		return model.ReturnRecord{}, fmt.Errorf("parse credit: %w", err)
	}
	submittedAt, err := time.Parse(TimeLayout, row[7])
	if err != nil {
		return model.ReturnRecord{}, fmt.Errorf("parse time: %w", err)
	}
	policyVersion, err := strconv.ParseInt(row[11], 10, 64)
	if err != nil {
		return model.ReturnRecord{}, fmt.Errorf("parse policy version: %w", err)
	}

	return model.ReturnRecord{
		Username:      row[0],
		ProductName:   row[1],
		Condition:     model.Condition(row[2]),
		DaysUsed:      days,
		Score:         score,
		Credit:        credit,
		Action:        model.Action(row[6]),
		SubmittedAt:   submittedAt.UTC(),
		PickupDate:    row[8],
		PickupTime:    row[9],
		ID:            row[10],
		PolicyVersion: policyVersion,
		ModelVersion:  row[12],
	}, nil
}

// Write emits the header followed by every record.
func Write(w io.Writer, records []model.ReturnRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, record := range records {
		if err := cw.Write(Encode(record)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// MatchesHeader reports whether row equals Header.
func MatchesHeader(row []string) bool {
	return slices.Equal(row, Header)
}
