package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandanoir/popviz/internal/errors"
)

const validPopulation = `{
	"message": null,
	"result": {
		"boundaryYear": 2020,
		"data": [
			{"label": "総人口", "data": [{"year": 2015, "value": 5381733}, {"year": 2020, "value": 5224614}]},
			{"label": "年少人口", "data": [{"year": 2015, "value": 608296, "rate": 11.3}]},
			{"label": "生産年齢人口", "data": [{"year": 2015, "value": 3190804, "rate": 59.29}]},
			{"label": "老年人口", "data": [{"year": 2015, "value": 1558387, "rate": 28.96}]}
		]
	}
}`

func TestParsePrefectureList(t *testing.T) {
	data := []byte(`{"result": [{"prefCode": 1, "prefName": "北海道"}, {"prefCode": 47, "prefName": "沖縄県"}]}`)

	prefs, err := ParsePrefectureList(data)
	require.NoError(t, err)
	require.Len(t, prefs, 2)
	assert.Equal(t, Prefecture{Code: 1, Name: "北海道"}, prefs[0])
	assert.Equal(t, Prefecture{Code: 47, Name: "沖縄県"}, prefs[1])
}

func TestParsePrefectureList_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed json", `{"result": [`},
		{"missing result", `{}`},
		{"result wrong type", `{"result": "none"}`},
		{"entry missing name", `{"result": [{"prefCode": 1}]}`},
		{"entry missing code", `{"result": [{"prefName": "北海道"}]}`},
		{"code out of range", `{"result": [{"prefCode": 48, "prefName": "???"}]}`},
		{"code zero", `{"result": [{"prefCode": 0, "prefName": "???"}]}`},
		{"duplicate code", `{"result": [{"prefCode": 1, "prefName": "北海道"}, {"prefCode": 1, "prefName": "北海道"}]}`},
		{"non-numeric code", `{"result": [{"prefCode": "1", "prefName": "北海道"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePrefectureList([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrSchema), "want SCHEMA error, got %v", err)
		})
	}
}

func TestParsePopulation(t *testing.T) {
	series, err := ParsePopulation([]byte(validPopulation))
	require.NoError(t, err)

	assert.Equal(t, 2020, series.BoundaryYear)
	require.Len(t, series.Categories, NumCategories)

	total := series.Categories[CategoryTotal]
	assert.Equal(t, "総人口", total.Label)
	require.Len(t, total.Points, 2)
	assert.Equal(t, 2015, total.Points[0].Year)
	assert.Equal(t, float64(5381733), total.Points[0].Value)
	assert.Nil(t, total.Points[0].Rate)

	youth := series.Categories[CategoryYouth]
	require.Len(t, youth.Points, 1)
	require.NotNil(t, youth.Points[0].Rate)
	assert.Equal(t, 11.3, *youth.Points[0].Rate)
}

func TestParsePopulation_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed json", `{"result":`},
		{"missing result", `{"message": null}`},
		{"missing boundaryYear", `{"result": {"data": []}}`},
		{
			"three categories",
			`{"result": {"boundaryYear": 2020, "data": [
				{"label": "総人口", "data": []},
				{"label": "年少人口", "data": []},
				{"label": "生産年齢人口", "data": []}
			]}}`,
		},
		{
			"labels out of order",
			`{"result": {"boundaryYear": 2020, "data": [
				{"label": "年少人口", "data": []},
				{"label": "総人口", "data": []},
				{"label": "生産年齢人口", "data": []},
				{"label": "老年人口", "data": []}
			]}}`,
		},
		{
			"unknown label",
			`{"result": {"boundaryYear": 2020, "data": [
				{"label": "全人口", "data": []},
				{"label": "年少人口", "data": []},
				{"label": "生産年齢人口", "data": []},
				{"label": "老年人口", "data": []}
			]}}`,
		},
		{
			"point missing value",
			`{"result": {"boundaryYear": 2020, "data": [
				{"label": "総人口", "data": [{"year": 2015}]},
				{"label": "年少人口", "data": []},
				{"label": "生産年齢人口", "data": []},
				{"label": "老年人口", "data": []}
			]}}`,
		},
		{
			"non-numeric year",
			`{"result": {"boundaryYear": 2020, "data": [
				{"label": "総人口", "data": [{"year": "2015", "value": 1}]},
				{"label": "年少人口", "data": []},
				{"label": "生産年齢人口", "data": []},
				{"label": "老年人口", "data": []}
			]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePopulation([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrSchema), "want SCHEMA error, got %v", err)
		})
	}
}

func TestCategoryIndex_Clamp(t *testing.T) {
	assert.Equal(t, CategoryTotal, CategoryIndex(-3).Clamp())
	assert.Equal(t, CategoryElderly, CategoryIndex(99).Clamp())
	assert.Equal(t, CategoryWorkingAge, CategoryWorkingAge.Clamp())
}

func TestCategoryIndex_Names(t *testing.T) {
	assert.Equal(t, "total", CategoryTotal.Name())
	assert.Equal(t, "working-age", CategoryWorkingAge.Name())
	assert.Equal(t, "総人口", CategoryTotal.Label())
	assert.Equal(t, "老年人口", CategoryElderly.Label())
}
