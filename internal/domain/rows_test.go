package domain_test

import (
	"testing"

	"github.com/couchcryptid/climate-catalog-etl/internal/csvtable"
	"github.com/couchcryptid/climate-catalog-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndicatorRows_DropsMissingID(t *testing.T) {
	rows, dropped := domain.IndicatorRows([]csvtable.Record{
		{"indicator_id": "I1", "category": "Exposure", "name": "Drought HH"},
		{"indicator_id": "", "name": "orphan"},
		{"name": "no id column"},
	})

	require.Len(t, rows, 1)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, domain.IndicatorRow{ID: "I1", Category: "Exposure", Name: "Drought HH"}, rows[0])
}

func TestDatasetRows_AllFields(t *testing.T) {
	rows, dropped := domain.DatasetRows([]csvtable.Record{{
		"dataset_id":  "D1",
		"name":        "Drought areas",
		"description": "d-desc",
		"source":      "d-src",
		"citation":    "cite",
		"license":     "CC-BY",
		"extra":       "ignored",
	}})

	require.Len(t, rows, 1)
	assert.Zero(t, dropped)
	assert.Equal(t, domain.DatasetRow{
		ID: "D1", Name: "Drought areas", Description: "d-desc",
		Source: "d-src", Citation: "cite", License: "CC-BY",
	}, rows[0])
}

func TestCICRows_IDFallback(t *testing.T) {
	rows, dropped := domain.CICRows([]csvtable.Record{
		{"cic_id": "CIC01", "area": "Health"},
		{"id": "CIC02", "impact": "Crop losses"},
		{"area": "Nowhere"},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, "CIC01", rows[0].ID)
	assert.Equal(t, "CIC02", rows[1].ID)
	assert.Empty(t, rows[1].Name)
}

func TestDatasetLinks_DropsHalfLinks(t *testing.T) {
	links, dropped := domain.DatasetLinks([]csvtable.Record{
		{"indicator_id": "I1", "dataset_id": "D1"},
		{"indicator_id": "I1"},
		{"dataset_id": "D2"},
		{"indicator_id": "", "dataset_id": "D3"},
	})

	assert.Equal(t, []domain.IndicatorDatasetLink{{IndicatorID: "I1", DatasetID: "D1"}}, links)
	assert.Equal(t, 3, dropped)
}

func TestCICLinks_DropsHalfLinks(t *testing.T) {
	links, dropped := domain.CICLinks([]csvtable.Record{
		{"indicator_id": "I1", "cic_id": "CIC01"},
		{"indicator_id": "I2", "cic_id": ""},
	})

	assert.Equal(t, []domain.IndicatorCICLink{{IndicatorID: "I1", CICID: "CIC01"}}, links)
	assert.Equal(t, 1, dropped)
}

func TestRows_EmptyInput(t *testing.T) {
	rows, dropped := domain.IndicatorRows(nil)
	assert.Empty(t, rows)
	assert.Zero(t, dropped)
}
