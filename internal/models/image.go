package models

import (
	"fmt"
	"strings"
)

// Category is the MRI contrast weighting an image belongs to.
type Category string

const (
	CategoryT1 Category = "T1"
	CategoryT2 Category = "T2"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryT1, CategoryT2}

// ParseCategory accepts "T1"/"T2" in any case, and the shorthand "1"/"2".
func ParseCategory(s string) (Category, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "T1", "1":
		return CategoryT1, nil
	case "T2", "2":
		return CategoryT2, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func (c Category) Valid() bool {
	return c == CategoryT1 || c == CategoryT2
}

// Other returns the opposite category.
func (c Category) Other() Category {
	if c == CategoryT1 {
		return CategoryT2
	}
	return CategoryT1
}

// Dir is the lowercase folder name images of this category live under.
func (c Category) Dir() string {
	return strings.ToLower(string(c))
}

type Image struct {
	ID       string   `json:"id"`
	Filename string   `json:"filename"`
	Category Category `json:"type"`
	Subject  string   `json:"subject"`
}

// URL is the display resource locator for the image.
func (i Image) URL() string {
	return "/images/" + i.Category.Dir() + "/" + i.Filename
}

type MetadataStats struct {
	Total   int `json:"total"`
	T1Count int `json:"t1Count"`
	T2Count int `json:"t2Count"`
}

type Metadata struct {
	Images []Image       `json:"images"`
	Stats  MetadataStats `json:"stats"`
}

// NewMetadata wraps images and computes their stats.
func NewMetadata(images []Image) Metadata {
	m := Metadata{Images: images}
	for _, img := range images {
		switch img.Category {
		case CategoryT1:
			m.Stats.T1Count++
		case CategoryT2:
			m.Stats.T2Count++
		}
	}
	m.Stats.Total = len(images)
	return m
}
