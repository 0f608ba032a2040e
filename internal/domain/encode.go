package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// EncodeCatalog writes c as two-space indented JSON followed by a newline.
// Non-ASCII text and HTML characters are written literally, except U+2028 and
// U+2029, which encoding/json always escapes as \u2028 and \u2029. The
// decoded text is unchanged.
func EncodeCatalog(w io.Writer, c Catalog) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalize(c)); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return nil
}

// MarshalCatalog returns the encoded document.
func MarshalCatalog(c Catalog) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeCatalog(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// normalize replaces nil slices so they encode as [] instead of null.
func normalize(c Catalog) Catalog {
	if c.Indicators == nil {
		c.Indicators = []Indicator{}
	}
	if c.CICs == nil {
		c.CICs = []CIC{}
	}
	inds := make([]Indicator, len(c.Indicators))
	for i, ind := range c.Indicators {
		if ind.Datasets == nil {
			ind.Datasets = []Dataset{}
		}
		inds[i] = ind
	}
	cics := make([]CIC, len(c.CICs))
	for i, cic := range c.CICs {
		if cic.IndicatorIDs == nil {
			cic.IndicatorIDs = []string{}
		}
		cics[i] = cic
	}
	c.Indicators, c.CICs = inds, cics
	return c
}
