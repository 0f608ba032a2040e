// Package domain models the climate-risk catalog and the join that builds it.
//
// # Data Source
//
// The catalog is assembled from five CSV tables maintained in the
// valorada/catalog repository (https://github.com/valorada/catalog):
//
//	indicators.csv                 indicator_id, category, name, source, description
//	datasets.csv                   dataset_id, name, description, source, citation, license
//	links_indicator_to_data.csv    indicator_id, dataset_id
//	cic.csv                        cic_id, area, impact, description (name optional)
//	links_indicator_to_cic.csv     indicator_id, cic_id
//
// A CIC is a Climate Impact Chain: a hazard-to-impact pathway (for example
// "Heatwave health impacts") that groups the indicators used to assess it.
//
// # Join Rules
//
// Rows without their id column are dropped, as are link rows missing either
// side and links that point at a dataset that does not exist. None of these
// are errors; the catalog simply comes out smaller.
//
// Indicator datasets keep first-seen link order while deduplicating, then are
// stably sorted by dataset name. Indicator CIC ids keep first-seen order and
// are omitted when there are none. CIC indicator ids are deduplicated and
// sorted lexicographically.
//
// CIC display names fall back through name, impact, area, and finally the CIC
// id. See [FirstNonEmpty].
//
// # Ordering
//
// Indicators sort by (category, name) and CICs by display name, both stable,
// so a fixed input snapshot always yields the same document apart from
// generated_at.
//
// # Output Field Names
//
// The indicator display name is emitted as "indicator", not "name". The
// dashboard predates the CSV schema and reads that key.
package domain
