// Package catalog loads and builds the image pool the quiz draws from.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/vytor/mriflash/internal/logger"
	"github.com/vytor/mriflash/internal/models"
)

// PoolLoader supplies the item pool.
type PoolLoader interface {
	Load(ctx context.Context) (models.Metadata, error)
}

// Loader reads metadata from a file path or an http(s) URL.
type Loader struct {
	source     string
	httpClient *http.Client
}

var _ PoolLoader = (*Loader)(nil)

func NewLoader(source string) *Loader {
	return &Loader{
		source:     source,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (l *Loader) Source() string {
	return l.source
}

// Load reads and decodes the metadata. Images with an unknown category are
// dropped and the stats recomputed from what is left.
func (l *Loader) Load(ctx context.Context) (models.Metadata, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog").WithField("source", l.source)
	start := time.Now()

	var (
		raw []byte
		err error
	)
	if isURL(l.source) {
		raw, err = l.fetch(ctx)
	} else {
		raw, err = os.ReadFile(l.source)
	}
	if err != nil {
		return models.Metadata{}, fmt.Errorf("read metadata: %w", err)
	}

	meta, err := Decode(raw)
	if err != nil {
		return models.Metadata{}, err
	}
	if len(meta.Images) == 0 {
		return models.Metadata{}, fmt.Errorf("metadata at %s has no images", l.source)
	}

	log.Info("loaded %d images (t1=%d, t2=%d) in %v", meta.Stats.Total, meta.Stats.T1Count, meta.Stats.T2Count, time.Since(start))
	return meta, nil
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("metadata status %d: %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}

// Decode parses metadata JSON, keeping only images with a known category.
func Decode(raw []byte) (models.Metadata, error) {
	var meta models.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return models.Metadata{}, fmt.Errorf("decode metadata: %w", err)
	}
	return Clean(meta.Images), nil
}

// Clean drops images without an ID or with an unknown category, normalizes
// the category spelling and recomputes the stats.
func Clean(in []models.Image) models.Metadata {
	images := make([]models.Image, 0, len(in))
	for _, img := range in {
		cat, err := models.ParseCategory(string(img.Category))
		if err != nil || img.ID == "" {
			continue
		}
		img.Category = cat
		images = append(images, img)
	}
	return models.NewMetadata(images)
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fallback is the small pool used when no metadata can be loaded.
func Fallback() models.Metadata {
	return models.NewMetadata([]models.Image{
		{ID: "IXI002-T1", Filename: "IXI002-Guys-0828-T1.png", Category: models.CategoryT1, Subject: "IXI002"},
		{ID: "IXI012-T1", Filename: "IXI012-HH-1211-T1.png", Category: models.CategoryT1, Subject: "IXI012"},
		{ID: "IXI002-T2", Filename: "IXI002-Guys-0828-T2.png", Category: models.CategoryT2, Subject: "IXI002"},
		{ID: "IXI012-T2", Filename: "IXI012-HH-1211-T2.png", Category: models.CategoryT2, Subject: "IXI012"},
	})
}
