package importer

import (
	"strings"
	"testing"

	"github.com/petermazzocco/foodgram/models"
	"github.com/stretchr/testify/require"
)

func TestReadIngredientsCSV(t *testing.T) {
	in := "name,measurement_unit\nflour,g\n\"salt, coarse\",g\nflour,g\n"
	got, err := ReadIngredients(strings.NewReader(in), CSV)
	require.NoError(t, err)
	require.Equal(t, []models.Ingredient{
		{Name: "flour", MeasurementUnit: "g"},
		{Name: "salt, coarse", MeasurementUnit: "g"},
	}, got)
}

func TestReadIngredientsCSVWithoutHeader(t *testing.T) {
	got, err := ReadIngredients(strings.NewReader("milk,ml\n"), CSV)
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = ReadIngredients(strings.NewReader("milk\n"), CSV)
	require.Error(t, err)
}

func TestReadIngredientsJSON(t *testing.T) {
	in := `[{"name":"eggs","measurement_unit":"pcs"},{"name":" ","measurement_unit":"g"}]`
	_, err := ReadIngredients(strings.NewReader(in), JSON)
	require.ErrorContains(t, err, "ingredient 2")

	got, err := ReadIngredients(strings.NewReader(`[{"name":"eggs","measurement_unit":"pcs"}]`), JSON)
	require.NoError(t, err)
	require.Equal(t, "pcs", got[0].MeasurementUnit)
}

func TestReadTags(t *testing.T) {
	got, err := ReadTags(strings.NewReader(`[{"name":"Breakfast","color":"#e26c2d","slug":"breakfast"}]`))
	require.NoError(t, err)
	require.Equal(t, []models.Tag{{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"}}, got)

	_, err = ReadTags(strings.NewReader(`[{"name":"Bad","color":"red","slug":"bad"}]`))
	require.ErrorContains(t, err, "hex color")

	_, err = ReadTags(strings.NewReader(`[{"name":"Bad","color":"#fff","slug":"no spaces"}]`))
	require.ErrorContains(t, err, "slug")
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("data/ingredients.CSV")
	require.NoError(t, err)
	require.Equal(t, CSV, f)

	_, err = FormatOf("data/ingredients.xml")
	require.Error(t, err)
}
