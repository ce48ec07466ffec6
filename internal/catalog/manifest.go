package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vytor/mriflash/internal/models"
)

// ImportManifest reads an XLSX or CSV manifest whose columns are
// id, filename, type, subject. A header row is skipped. A blank id is derived
// from the filename; a blank subject from the id.
func ImportManifest(path string) (models.Metadata, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSX(path)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return models.Metadata{}, fmt.Errorf("unsupported manifest format %q", filepath.Ext(path))
	}
	if err != nil {
		return models.Metadata{}, err
	}

	images := make([]models.Image, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		img, ok, err := parseRow(row)
		if err != nil {
			if i == 0 {
				continue
			}
			return models.Metadata{}, fmt.Errorf("manifest row %d: %w", i+1, err)
		}
		if !ok {
			continue
		}
		if seen[img.ID] {
			return models.Metadata{}, fmt.Errorf("manifest row %d: duplicate id %q", i+1, img.ID)
		}
		seen[img.ID] = true
		images = append(images, img)
	}
	return models.NewMetadata(images), nil
}

func parseRow(row []string) (models.Image, bool, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	id, filename, kind, subject := cell(0), cell(1), cell(2), cell(3)
	if id == "" && filename == "" && kind == "" && subject == "" {
		return models.Image{}, false, nil
	}

	cat, err := models.ParseCategory(kind)
	if err != nil {
		return models.Image{}, false, err
	}
	if filename == "" {
		return models.Image{}, false, fmt.Errorf("missing filename")
	}

	img := ImageFromFilename(filename, cat)
	if id != "" {
		img.ID = id
		img.Subject, _, _ = strings.Cut(id, "-")
	}
	if subject != "" {
		img.Subject = subject
	}
	return img, true, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("manifest %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

// Write stores metadata as indented JSON, recomputing the stats.
func Write(path string, meta models.Metadata) error {
	meta = models.NewMetadata(meta.Images)
	if meta.Images == nil {
		meta.Images = []models.Image{}
	}
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}
