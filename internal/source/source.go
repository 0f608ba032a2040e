// Package source retrieves the raw catalog tables.
package source

import (
	"fmt"
	"mime"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Table identifies one of the five input tables.
type Table struct {
	Name string // stable identifier used in logs and metrics
	Path string // path relative to the source base location
}

var (
	Indicators   = Table{Name: "indicators", Path: "indicators.csv"}
	Datasets     = Table{Name: "datasets", Path: "datasets.csv"}
	DatasetLinks = Table{Name: "links_data", Path: "links_indicator_to_data.csv"}
	CICs         = Table{Name: "cics", Path: "cic.csv"}
	CICLinks     = Table{Name: "links_cic", Path: "links_indicator_to_cic.csv"}
)

// Tables lists every input table in fetch order.
var Tables = []Table{Indicators, Datasets, DatasetLinks, CICs, CICLinks}

// Decode converts raw table bytes to text. The charset comes from contentType
// when it declares one, otherwise from a byte-order mark, otherwise UTF-8.
// Bytes that are invalid in the chosen charset become U+FFFD.
func Decode(raw []byte, contentType string) (string, error) {
	dec := unicode.BOMOverride(declaredEncoding(contentType).NewDecoder())
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	return string(out), nil
}

func declaredEncoding(contentType string) encoding.Encoding {
	if contentType == "" {
		return unicode.UTF8
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return unicode.UTF8
	}
	label := params["charset"]
	if label == "" {
		return unicode.UTF8
	}
	// charset maps utf-8 to encoding.Nop, which would pass invalid bytes through.
	e, name := charset.Lookup(label)
	if e == nil || name == "utf-8" {
		return unicode.UTF8
	}
	return e
}
