package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vytor/mriflash/internal/logger"
	"github.com/vytor/mriflash/internal/models"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// Scan builds metadata from root/t1 and root/t2. A missing category folder
// counts as empty. Within a category images are ordered by filename.
func Scan(ctx context.Context, root string) (models.Metadata, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog").WithField("root", root)

	found := make([][]models.Image, len(models.Categories))
	g, ctx := errgroup.WithContext(ctx)
	for i, cat := range models.Categories {
		i, cat := i, cat
		g.Go(func() error {
			images, err := scanCategory(ctx, filepath.Join(root, cat.Dir()), cat)
			if err != nil {
				return err
			}
			found[i] = images
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.Metadata{}, err
	}

	var images []models.Image
	for _, imgs := range found {
		images = append(images, imgs...)
	}
	meta := models.NewMetadata(images)
	log.Info("scanned %d images (t1=%d, t2=%d)", meta.Stats.Total, meta.Stats.T1Count, meta.Stats.T2Count)
	return meta, nil
}

func scanCategory(ctx context.Context, dir string, cat models.Category) ([]models.Image, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	images := make([]models.Image, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		images = append(images, ImageFromFilename(e.Name(), cat))
	}
	sort.Slice(images, func(i, j int) bool { return images[i].Filename < images[j].Filename })
	return images, nil
}

// ImageFromFilename derives an image from its file name. The subject is the
// stem up to the first "-", and the ID is "<subject>-<category>".
func ImageFromFilename(filename string, cat models.Category) models.Image {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	subject, _, _ := strings.Cut(stem, "-")
	return models.Image{
		ID:       subject + "-" + string(cat),
		Filename: filename,
		Category: cat,
		Subject:  subject,
	}
}
