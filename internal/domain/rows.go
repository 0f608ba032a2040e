package domain

import "github.com/couchcryptid/climate-catalog-etl/internal/csvtable"

// IndicatorRow is one row of indicators.csv.
type IndicatorRow struct {
	ID          string
	Category    string
	Name        string
	Source      string
	Description string
}

// DatasetRow is one row of datasets.csv.
type DatasetRow struct {
	ID          string
	Name        string
	Description string
	Source      string
	Citation    string
	License     string
}

// CICRow is one row of cic.csv. Name is empty when the table has no name column.
type CICRow struct {
	ID          string
	Name        string
	Area        string
	Impact      string
	Description string
}

// IndicatorDatasetLink is one row of links_indicator_to_data.csv.
type IndicatorDatasetLink struct {
	IndicatorID string
	DatasetID   string
}

// IndicatorCICLink is one row of links_indicator_to_cic.csv.
type IndicatorCICLink struct {
	IndicatorID string
	CICID       string
}

// Tables holds every typed input the join consumes.
type Tables struct {
	Indicators   []IndicatorRow
	Datasets     []DatasetRow
	DatasetLinks []IndicatorDatasetLink
	CICs         []CICRow
	CICLinks     []IndicatorCICLink
}

// IndicatorRows converts parsed records, dropping rows without indicator_id.
// It returns the kept rows and the number dropped.
func IndicatorRows(recs []csvtable.Record) ([]IndicatorRow, int) {
	rows := make([]IndicatorRow, 0, len(recs))
	for _, r := range recs {
		id := r.Get("indicator_id")
		if id == "" {
			continue
		}
		rows = append(rows, IndicatorRow{
			ID:          id,
			Category:    r.Get("category"),
			Name:        r.Get("name"),
			Source:      r.Get("source"),
			Description: r.Get("description"),
		})
	}
	return rows, len(recs) - len(rows)
}

// DatasetRows converts parsed records, dropping rows without dataset_id.
func DatasetRows(recs []csvtable.Record) ([]DatasetRow, int) {
	rows := make([]DatasetRow, 0, len(recs))
	for _, r := range recs {
		id := r.Get("dataset_id")
		if id == "" {
			continue
		}
		rows = append(rows, DatasetRow{
			ID:          id,
			Name:        r.Get("name"),
			Description: r.Get("description"),
			Source:      r.Get("source"),
			Citation:    r.Get("citation"),
			License:     r.Get("license"),
		})
	}
	return rows, len(recs) - len(rows)
}

// CICRows converts parsed records. The id comes from cic_id, or from an id
// column in older exports; rows with neither are dropped.
func CICRows(recs []csvtable.Record) ([]CICRow, int) {
	rows := make([]CICRow, 0, len(recs))
	for _, r := range recs {
		id := r.First("cic_id", "id")
		if id == "" {
			continue
		}
		rows = append(rows, CICRow{
			ID:          id,
			Name:        r.Get("name"),
			Area:        r.Get("area"),
			Impact:      r.Get("impact"),
			Description: r.Get("description"),
		})
	}
	return rows, len(recs) - len(rows)
}

// DatasetLinks converts parsed link records, dropping rows missing either id.
func DatasetLinks(recs []csvtable.Record) ([]IndicatorDatasetLink, int) {
	links := make([]IndicatorDatasetLink, 0, len(recs))
	for _, r := range recs {
		ind, ds := r.Get("indicator_id"), r.Get("dataset_id")
		if ind == "" || ds == "" {
			continue
		}
		links = append(links, IndicatorDatasetLink{IndicatorID: ind, DatasetID: ds})
	}
	return links, len(recs) - len(links)
}

// CICLinks converts parsed link records, dropping rows missing either id.
func CICLinks(recs []csvtable.Record) ([]IndicatorCICLink, int) {
	links := make([]IndicatorCICLink, 0, len(recs))
	for _, r := range recs {
		ind, cic := r.Get("indicator_id"), r.Get("cic_id")
		if ind == "" || cic == "" {
			continue
		}
		links = append(links, IndicatorCICLink{IndicatorID: ind, CICID: cic})
	}
	return links, len(recs) - len(links)
}
