// Package reviews loads the restaurant reviews dataset from CSV.
package reviews

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/slicewise/crust/internal/models"
	"github.com/slicewise/crust/internal/ragerrors"
)

// Required header columns, matched case-insensitively.
const (
	colTitle  = "title"
	colReview = "review"
	colRating = "rating"
	colDate   = "date"
)

// LoadCSV reads the reviews dataset at path. The file must have a header row
// containing Title, Review, Rating, and Date columns (any order, extra columns
// ignored). Every failure is reported as a DataLoadError: indexing never
// proceeds on a partially readable dataset.
func LoadCSV(path string) ([]models.Review, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ragerrors.NewDataLoadError(path, fmt.Sprintf("open reviews dataset: %v", err))
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		var dle *ragerrors.DataLoadError
		if errors.As(err, &dle) {
			dle.Path = path
			return nil, dle
		}

		return nil, ragerrors.NewDataLoadError(path, err.Error())
	}

	return records, nil
}

// Parse reads CSV review rows from r. Split out from LoadCSV so tests can feed
// in-memory data.
func Parse(r io.Reader) ([]models.Review, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // validated against the header below

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ragerrors.NewDataLoadError("", "reviews dataset is empty (missing header row)")
		}

		return nil, ragerrors.NewDataLoadError("", fmt.Sprintf("read header: %v", err))
	}

	idx, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var out []models.Review

	row := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ragerrors.NewDataLoadError("", fmt.Sprintf("read row %d: %v", row, err))
		}

		review, err := parseRow(record, idx, row)
		if err != nil {
			return nil, err
		}

		out = append(out, review)
		row++
	}

	return out, nil
}

// columnIndex maps each required column name to its position in the header.
type columnIndex struct {
	title  int
	review int
	rating int
	date   int
}

func headerIndex(header []string) (columnIndex, error) {
	idx := columnIndex{title: -1, review: -1, rating: -1, date: -1}

	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case colTitle:
			idx.title = i
		case colReview:
			idx.review = i
		case colRating:
			idx.rating = i
		case colDate:
			idx.date = i
		}
	}

	var missing []string
	if idx.title < 0 {
		missing = append(missing, "Title")
	}
	if idx.review < 0 {
		missing = append(missing, "Review")
	}
	if idx.rating < 0 {
		missing = append(missing, "Rating")
	}
	if idx.date < 0 {
		missing = append(missing, "Date")
	}

	if len(missing) > 0 {
		return idx, ragerrors.NewDataLoadError("", "reviews dataset is missing required columns: "+strings.Join(missing, ", "))
	}

	return idx, nil
}

func parseRow(record []string, idx columnIndex, row int) (models.Review, error) {
	maxIdx := idx.title
	for _, i := range []int{idx.review, idx.rating, idx.date} {
		if i > maxIdx {
			maxIdx = i
		}
	}

	if len(record) <= maxIdx {
		return models.Review{}, ragerrors.NewDataLoadError("", fmt.Sprintf("row %d has %d fields, expected at least %d", row, len(record), maxIdx+1))
	}

	rating, err := strconv.ParseFloat(strings.TrimSpace(record[idx.rating]), 64)
	if err != nil {
		return models.Review{}, ragerrors.NewDataLoadError("", fmt.Sprintf("row %d has malformed rating %q", row, record[idx.rating]))
	}

	return models.Review{
		Title:  record[idx.title],
		Body:   record[idx.review],
		Rating: rating,
		Date:   record[idx.date],
	}, nil
}
