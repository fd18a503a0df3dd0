package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mwhite7112/woodpantry-brewlist/internal/domain"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatText Format = "text"
)

// ParseFormat accepts csv, xlsx, text (or txt). Empty means csv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: export format %q", domain.ErrInvalidInput, s)
	}
}

func (f Format) extension() string {
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

func (f Format) contentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatText:
		return "text/plain; charset=utf-8"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Options control rendering.
type Options struct {
	ColorUnit string
	Now       time.Time
}

// Document is a rendered export.
type Document struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}

var header = []string{"Name", "Amount", "Unit", "Type", "Details", "Recipes"}

const sheetName = "Shopping List"

// Render produces the export document for list.
func Render(list domain.ShoppingList, format Format, opts Options) (Document, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.ColorUnit == "" {
		opts.ColorUnit = domain.DefaultSettings().ColorUnit
	}
	groups := Grouped(list.Clone())

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSV:
		data, err = renderCSV(groups, opts)
	case FormatXLSX:
		data, err = renderXLSX(groups, opts)
	case FormatText:
		data = renderText(groups, opts)
	default:
		return Document{}, fmt.Errorf("%w: export format %q", domain.ErrInvalidInput, format)
	}
	if err != nil {
		return Document{}, fmt.Errorf("render %s: %w", format, err)
	}
	return Document{
		Filename:    fmt.Sprintf("shopping-list-%s.%s", opts.Now.Format("2006-01-02"), format.extension()),
		ContentType: format.contentType(),
		Data:        data,
	}, nil
}

func record(item domain.Ingredient, opts Options) []string {
	return []string{
		item.Name,
		formatNumber(item.Amount),
		item.Unit,
		string(item.Type),
		Details(item, opts.ColorUnit),
		RecipeInfo(item),
	}
}

func renderCSV(groups []Group, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, g := range groups {
		for _, item := range g.Items {
			if err := w.Write(record(item, opts)); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func renderXLSX(groups []Group, opts Options) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return nil, err
	}
	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := sw.SetRow("A1", row); err != nil {
		return nil, err
	}
	n := 2
	for _, g := range groups {
		for _, item := range g.Items {
			rec := record(item, opts)
			cells := []interface{}{rec[0], item.Amount, rec[2], rec[3], rec[4], rec[5]}
			cellAddr, _ := excelize.CoordinatesToCellName(1, n)
			if err := sw.SetRow(cellAddr, cells); err != nil {
				return nil, err
			}
			n++
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderText(groups []Group, opts Options) []byte {
	var b strings.Builder
	b.WriteString("BREWFATHER SHOPPING LIST\n")
	b.WriteString("========================\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", opts.Now.Format("2006-01-02"))

	for _, g := range groups {
		b.WriteString(strings.ToUpper(g.Title) + "\n")
		b.WriteString(strings.Repeat("-", 20) + "\n")
		for _, item := range g.Items {
			fmt.Fprintf(&b, "• %s - %s\n", item.Name, FormatAmount(item.Amount, item.Unit))
			if d := Details(item, opts.ColorUnit); d != "" {
				fmt.Fprintf(&b, "  %s\n", d)
			}
			if r := RecipeInfo(item); r != "" {
				fmt.Fprintf(&b, "  %s\n", r)
			}
			b.WriteString("\n")
		}
	}
	return []byte(b.String())
}
