// Package importer reads ingredient and tag catalogs from files for bulk loading.
package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/petermazzocco/foodgram/models"
)

const maxFieldLen = 200

var (
	colorPattern = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)
	slugPattern  = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV, nil
	case ".json":
		return JSON, nil
	default:
		return "", fmt.Errorf("unsupported catalog file %q", path)
	}
}

type ingredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// ReadIngredients parses name/measurement_unit pairs. CSV input may start with a header row.
// Duplicate pairs within the input are dropped.
func ReadIngredients(r io.Reader, format Format) ([]models.Ingredient, error) {
	var records []ingredientRecord
	switch format {
	case CSV:
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = 2
		cr.TrimLeadingSpace = true
		for line := 1; ; line++ {
			row, err := cr.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("read ingredients: %w", err)
			}
			if line == 1 && strings.EqualFold(row[0], "name") {
				continue
			}
			records = append(records, ingredientRecord{Name: row[0], MeasurementUnit: row[1]})
		}
	case JSON:
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, fmt.Errorf("decode ingredients: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	seen := make(map[ingredientRecord]bool, len(records))
	out := make([]models.Ingredient, 0, len(records))
	for i, rec := range records {
		rec.Name = strings.TrimSpace(rec.Name)
		rec.MeasurementUnit = strings.TrimSpace(rec.MeasurementUnit)
		if rec.Name == "" || rec.MeasurementUnit == "" {
			return nil, fmt.Errorf("ingredient %d: name and measurement_unit are required", i+1)
		}
		if utf8.RuneCountInString(rec.Name) > maxFieldLen || utf8.RuneCountInString(rec.MeasurementUnit) > maxFieldLen {
			return nil, fmt.Errorf("ingredient %d: fields must be at most %d characters", i+1, maxFieldLen)
		}
		if seen[rec] {
			continue
		}
		seen[rec] = true
		out = append(out, models.Ingredient{Name: rec.Name, MeasurementUnit: rec.MeasurementUnit})
	}
	return out, nil
}

type tagRecord struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

// ReadTags parses a JSON array of {name, color, slug} objects.
func ReadTags(r io.Reader) ([]models.Tag, error) {
	var records []tagRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}

	out := make([]models.Tag, 0, len(records))
	for i, rec := range records {
		rec.Name = strings.TrimSpace(rec.Name)
		if rec.Name == "" || utf8.RuneCountInString(rec.Name) > maxFieldLen {
			return nil, fmt.Errorf("tag %d: name is required and at most %d characters", i+1, maxFieldLen)
		}
		if !colorPattern.MatchString(rec.Color) {
			return nil, fmt.Errorf("tag %d: color %q is not a hex color", i+1, rec.Color)
		}
		if !slugPattern.MatchString(rec.Slug) || len(rec.Slug) > maxFieldLen {
			return nil, fmt.Errorf("tag %d: slug %q is invalid", i+1, rec.Slug)
		}
		out = append(out, models.Tag{Name: rec.Name, Color: strings.ToUpper(rec.Color), Slug: rec.Slug})
	}
	return out, nil
}
