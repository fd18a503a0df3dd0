// Package maltdb holds the static malt reference table: grain substitution
// categories with their color ranges, color tolerance thresholds,
// manufacturer equivalents and technical brewing data.
//
// Categories are ordered sequences, not maps. Classification walks them in
// declaration order and the first match wins, so order is part of the data.
package maltdb

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ColorRange is an inclusive [Min, Max] color window on the raw stored value.
type ColorRange struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether color falls inside the range, bounds included.
func (r ColorRange) Contains(color float64) bool {
	return color >= r.Min && color <= r.Max
}

// SubTier is a color-delimited slice of a category with brewing advice.
type SubTier struct {
	ColorRange   ColorRange `yaml:"colorRange" json:"colorRange"`
	FlavorImpact string     `yaml:"flavorImpact" json:"flavorImpact,omitempty"`
	Usage        string     `yaml:"usage" json:"usage,omitempty"`
	Notes        string     `yaml:"notes" json:"notes,omitempty"`
	Products     []string   `yaml:"products" json:"products,omitempty"`
}

// Category is one substitution bucket.
type Category struct {
	Name          string     `yaml:"name" json:"name"`
	Description   string     `yaml:"description" json:"description,omitempty"`
	ColorRange    ColorRange `yaml:"colorRange" json:"colorRange"`
	Substitutions []SubTier  `yaml:"substitutions" json:"substitutions,omitempty"`
}

// tierFor returns the first sub-tier whose range holds color.
func (c Category) tierFor(color float64) (SubTier, bool) {
	for _, t := range c.Substitutions {
		if t.ColorRange.Contains(color) {
			return t, true
		}
	}
	return SubTier{}, false
}

// ColorTolerance holds the accepted absolute color difference per tier.
type ColorTolerance struct {
	LightMalts  float64 `yaml:"lightMalts" json:"lightMalts"`
	MediumMalts float64 `yaml:"mediumMalts" json:"mediumMalts"`
	DarkMalts   float64 `yaml:"darkMalts" json:"darkMalts"`
}

// Rules groups matching thresholds and human guidelines.
type Rules struct {
	ColorTolerance         ColorTolerance `yaml:"colorTolerance" json:"colorTolerance"`
	SubstitutionGuidelines []string       `yaml:"substitutionGuidelines" json:"substitutionGuidelines,omitempty"`
}

// Product is a manufacturer product and its equivalents from other maltsters.
type Product struct {
	Name         string   `yaml:"name" json:"name"`
	Alternatives []string `yaml:"alternatives" json:"alternatives"`
}

// Manufacturer lists one maltster's products.
type Manufacturer struct {
	Manufacturer string    `yaml:"manufacturer" json:"manufacturer"`
	Products     []Product `yaml:"products" json:"products"`
}

// TechnicalData carries reference strings for advice.
type TechnicalData struct {
	DiastaticPower struct {
		Ranges map[string]string `yaml:"ranges" json:"ranges"`
	} `yaml:"diastaticPower" json:"diastaticPower"`
}

// Table is the whole reference document. It is read-only once parsed.
type Table struct {
	Version                 string         `yaml:"version" json:"version,omitempty"`
	BaseMalts               []Category     `yaml:"baseMalts" json:"baseMalts"`
	CrystalCaramel          Category       `yaml:"crystalCaramel" json:"crystalCaramel"`
	SpecialtyMalts          []Category     `yaml:"specialtyMalts" json:"specialtyMalts"`
	SmokedMalts             *Category      `yaml:"smokedMalts" json:"smokedMalts,omitempty"`
	SubstitutionRules       Rules          `yaml:"substitutionRules" json:"substitutionRules"`
	ManufacturerEquivalents []Manufacturer `yaml:"manufacturerEquivalents" json:"manufacturerEquivalents,omitempty"`
	TechnicalData           TechnicalData  `yaml:"technicalData" json:"technicalData"`
}

// Parse decodes a YAML (or JSON) table and validates it.
func Parse(data []byte) (*Table, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("malt table is empty")
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode malt table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate rejects inverted color ranges and non-positive tolerances.
func (t *Table) Validate() error {
	var errs []error
	check := func(section string, c Category) {
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("%s: category without name", section))
		}
		if c.ColorRange.Min > c.ColorRange.Max {
			errs = append(errs, fmt.Errorf("%s %q: color range min %.1f > max %.1f", section, c.Name, c.ColorRange.Min, c.ColorRange.Max))
		}
	}
	for _, c := range t.BaseMalts {
		check("baseMalts", c)
	}
	check("crystalCaramel", t.CrystalCaramel)
	for _, c := range t.SpecialtyMalts {
		check("specialtyMalts", c)
	}
	if t.SmokedMalts != nil && t.SmokedMalts.Name == "" {
		errs = append(errs, errors.New("smokedMalts: category without name"))
	}
	tol := t.SubstitutionRules.ColorTolerance
	if tol.LightMalts <= 0 || tol.MediumMalts <= 0 || tol.DarkMalts <= 0 {
		errs = append(errs, fmt.Errorf("colorTolerance: thresholds must be positive (light=%v medium=%v dark=%v)", tol.LightMalts, tol.MediumMalts, tol.DarkMalts))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid malt table: %w", errors.Join(errs...))
	}
	return nil
}

// ColorThreshold returns the allowed absolute color difference for a pair
// whose colors differ by diff.
// Acceptance is not monotone in diff: 6 against 11 fails the light threshold
// while 6 against 18 passes the medium one.
func (t *Table) ColorThreshold(diff float64) float64 {
	tol := t.SubstitutionRules.ColorTolerance
	switch {
	case diff <= 10:
		return tol.LightMalts
	case diff <= 100:
		return tol.MediumMalts
	default:
		return tol.DarkMalts
	}
}
