package dto

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CustomerIDColumn optionally supplies customer ids in an uploaded CSV.
const CustomerIDColumn = "customerID"

// ReadCSV decodes an uploaded CSV with a header row of dataset column names
// into batch items. A row whose column count differs from the header becomes
// an item with ParseError set; an unreadable header fails the whole upload.
func ReadCSV(r io.Reader) ([]BatchItem, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv is empty")
		}
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	var items []BatchItem
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				items = append(items, BatchItem{ParseError: parseErr.Error()})
				continue
			}
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		if len(row) != len(header) {
			items = append(items, BatchItem{
				ParseError: fmt.Sprintf("expected %d columns, got %d", len(header), len(row)),
			})
			continue
		}
		items = append(items, rowToItem(row, columns))
	}
	return items, nil
}

func rowToItem(row []string, columns map[string]int) BatchItem {
	text := func(name string) string {
		if i, ok := columns[name]; ok {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	number := func(name string) Number {
		if i, ok := columns[name]; ok {
			return ParseNumber(row[i])
		}
		return Number{}
	}

	return BatchItem{
		CustomerID: text(CustomerIDColumn),
		Customer: CustomerRecord{
			Gender:           text("gender"),
			SeniorCitizen:    number("SeniorCitizen"),
			Partner:          text("Partner"),
			Dependents:       text("Dependents"),
			Tenure:           number("tenure"),
			PhoneService:     text("PhoneService"),
			MultipleLines:    text("MultipleLines"),
			InternetService:  text("InternetService"),
			OnlineSecurity:   text("OnlineSecurity"),
			OnlineBackup:     text("OnlineBackup"),
			DeviceProtection: text("DeviceProtection"),
			TechSupport:      text("TechSupport"),
			StreamingTV:      text("StreamingTV"),
			StreamingMovies:  text("StreamingMovies"),
			Contract:         text("Contract"),
			PaperlessBilling: text("PaperlessBilling"),
			PaymentMethod:    text("PaymentMethod"),
			MonthlyCharges:   number("MonthlyCharges"),
			TotalCharges:     number("TotalCharges"),
		},
	}
}
