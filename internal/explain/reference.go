package explain

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type Indicator string

const (
	IndicatorDark         Indicator = "dark"
	IndicatorBright       Indicator = "bright"
	IndicatorIntermediate Indicator = "intermediate"
)

type Cell struct {
	Display   string    `json:"display"`
	Indicator Indicator `json:"indicator,omitempty"`
}

type ReferenceRow struct {
	Characteristic string `json:"characteristic"`
	T1             Cell   `json:"t1"`
	T2             Cell   `json:"t2"`
}

// QuickReference is the side-by-side T1/T2 comparison table.
var QuickReference = []ReferenceRow{
	{
		Characteristic: "CSF (Cerebrospinal Fluid)",
		T1:             Cell{Display: "DARK", Indicator: IndicatorDark},
		T2:             Cell{Display: "BRIGHT", Indicator: IndicatorBright},
	},
	{
		Characteristic: "Fat",
		T1:             Cell{Display: "BRIGHT", Indicator: IndicatorBright},
		T2:             Cell{Display: "Less Bright", Indicator: IndicatorIntermediate},
	},
	{
		Characteristic: "Gray vs White Matter",
		T1:             Cell{Display: "White Brighter", Indicator: IndicatorIntermediate},
		T2:             Cell{Display: "Gray Brighter", Indicator: IndicatorIntermediate},
	},
	{
		Characteristic: "Best For",
		T1:             Cell{Display: "Anatomy"},
		T2:             Cell{Display: "Pathology & Edema"},
	},
	{
		Characteristic: "Memory Aid",
		T1:             Cell{Display: "T1 = ONE anatomy scan"},
		T2:             Cell{Display: "T2 = TWO = H₂O (water bright)"},
	},
}

var tableMarkdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// ReferenceMarkdown renders QuickReference as a markdown table.
func ReferenceMarkdown() string {
	var sb strings.Builder
	sb.WriteString("| Characteristic | T1 | T2 |\n")
	sb.WriteString("| --- | --- | --- |\n")
	for _, row := range QuickReference {
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", row.Characteristic, row.T1.Display, row.T2.Display)
	}
	return sb.String()
}

// ReferenceHTML renders the quick reference table to HTML.
func ReferenceHTML() (string, error) {
	var buf bytes.Buffer
	if err := tableMarkdown.Convert([]byte(ReferenceMarkdown()), &buf); err != nil {
		return "", fmt.Errorf("render reference: %w", err)
	}
	return buf.String(), nil
}
