package dashboard

import (
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func yearsDataset(n int) *Dataset {
	ds := &Dataset{Name: "serie", LabelColumn: "anio", Columns: []string{"valor"}}
	for i := 0; i < n; i++ {
		ds.Rows = append(ds.Rows, DatasetRow{
			Label:  strconv.Itoa(2000 + i),
			Values: []decimal.NullDecimal{num(int64(i))},
		})
	}
	return ds
}

func TestDatasetRecordsAndSeries(t *testing.T) {
	ds := &Dataset{
		Name:        "pib_real",
		LabelColumn: "anio",
		Columns:     []string{"pib", "crecimiento"},
		Rows: []DatasetRow{
			{Label: "2000", Values: []decimal.NullDecimal{num(10), {}}},
			{Label: "2001", Values: []decimal.NullDecimal{num(12), decimal.NewNullDecimal(decimal.RequireFromString("20.5"))}},
			{Label: "total", Values: []decimal.NullDecimal{num(22), {}}},
		},
	}
	require.NoError(t, ds.Validate())
	assert.Equal(t, []string{"anio", "pib", "crecimiento"}, ds.AllColumns())

	records := ds.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "2000", records[0]["anio"])
	assert.Nil(t, records[0]["crecimiento"])

	years, values := ds.Series("crecimiento")
	assert.Equal(t, []int{2001}, years)
	assert.Equal(t, []float64{20.5}, values)

	years, _ = ds.Series("pib")
	assert.Equal(t, []int{2000, 2001}, years, "non-year labels are skipped")

	years, values = ds.Series("nope")
	assert.Nil(t, years)
	assert.Nil(t, values)
}

func TestDatasetValidate(t *testing.T) {
	var nilDataset *Dataset
	require.Error(t, nilDataset.Validate())

	cases := map[string]*Dataset{
		"no label column": {Columns: []string{"a"}, Rows: []DatasetRow{{Label: "1", Values: []decimal.NullDecimal{num(1)}}}},
		"no columns":      {LabelColumn: "l", Rows: []DatasetRow{{Label: "1"}}},
		"no rows":         {LabelColumn: "l", Columns: []string{"a"}},
		"empty label":     {LabelColumn: "l", Columns: []string{"a"}, Rows: []DatasetRow{{Label: " ", Values: []decimal.NullDecimal{num(1)}}}},
		"short row":       {LabelColumn: "l", Columns: []string{"a", "b"}, Rows: []DatasetRow{{Label: "1", Values: []decimal.NullDecimal{num(1)}}}},
	}
	for name, ds := range cases {
		assert.Error(t, ds.Validate(), name)
	}
}

func TestPaginate(t *testing.T) {
	w := Paginate(25, 1, 10)
	assert.Equal(t, PageWindow{Page: 1, PageSize: 10, PageCount: 3, Start: 0, End: 10, Total: 25}, w)
	assert.False(t, w.HasPrev())
	assert.True(t, w.HasNext())

	last := Paginate(25, 3, 10)
	assert.Equal(t, 20, last.Start)
	assert.Equal(t, 25, last.End)
	assert.False(t, last.HasNext())

	assert.Equal(t, 3, Paginate(25, 99, 10).Page, "past the end clamps to the last page")
	assert.Equal(t, 1, Paginate(25, -1, 10).Page)
	assert.Equal(t, DefaultPageSize, Paginate(5, 1, 0).PageSize)

	empty := Paginate(0, 4, 10)
	assert.Equal(t, 1, empty.Page)
	assert.Equal(t, 0, empty.End)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "–", FormatValue(decimal.NullDecimal{}))
	assert.Equal(t, "1200", FormatValue(num(1200)))
	assert.Equal(t, "3.14", FormatValue(decimal.NewNullDecimal(decimal.RequireFromString("3.14159"))))
}
