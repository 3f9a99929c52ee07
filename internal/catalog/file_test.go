package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCatalogJSON = `[
  {"id": "f1", "name": "닭가슴살 도시락", "type": "도시락", "calories": 450, "protein": 32, "fat": 9, "carbs": 55,
   "sodium": 780, "price": 5900, "tags": ["고단백", "다이어트"]},
  {"id": "f2", "name": "참치마요 삼각김밥", "type": "삼각김밥", "calories": 230, "protein": 6, "fat": 7, "carbs": 36,
   "price": 1500, "tags": [], "allergies": ["생선", "계란"], "score": 0.4}
]`

func TestFileSource_Parse(t *testing.T) {
	src := NewFileSource("foods.json", testValidator(t), testLogger())

	foods, err := src.Parse(context.Background(), []byte(validCatalogJSON))
	require.NoError(t, err)
	require.Len(t, foods, 2)

	assert.Equal(t, "f1", foods[0].ID)
	assert.Equal(t, 780.0, foods[0].Sodium)
	assert.Equal(t, []string{"고단백", "다이어트"}, foods[0].Tags)
	assert.Zero(t, foods[1].Sodium)
	assert.Equal(t, []string{"생선", "계란"}, foods[1].Allergens)
	require.NotNil(t, foods[1].Score)
	assert.Equal(t, 0.4, *foods[1].Score)
}

func TestFileSource_DropsInvalidEntries(t *testing.T) {
	doc := `{"foods": [
	  {"id": "ok", "name": "김밥", "calories": 400, "protein": 10, "fat": 8, "carbs": 60, "price": 3000, "tags": []},
	  {"id": "no-price", "name": "샐러드", "calories": 150, "protein": 5, "fat": 3, "carbs": 12, "tags": []},
	  {"id": "ok", "name": "김밥 again", "calories": 400, "protein": 10, "fat": 8, "carbs": 60, "price": 3000, "tags": []},
	  "not an object",
	  {"id": "ok-2", "name": "두부 샐러드", "calories": 210, "protein": 14, "fat": 9, "carbs": 15, "price": 4800, "tags": ["채식"]}
	]}`

	src := NewFileSource("foods.json", testValidator(t), testLogger())
	foods, err := src.Parse(context.Background(), []byte(doc))
	require.NoError(t, err)

	require.Len(t, foods, 2)
	assert.Equal(t, "ok", foods[0].ID)
	assert.Equal(t, "김밥", foods[0].Name)
	assert.Equal(t, "ok-2", foods[1].ID)
}

func TestFileSource_MalformedDocument(t *testing.T) {
	src := NewFileSource("foods.json", testValidator(t), testLogger())

	_, err := src.Parse(context.Background(), []byte(`[{"id": "a",`))
	assert.Error(t, err)
}

func TestFileSource_MissingFile(t *testing.T) {
	src := NewFileSource("/nonexistent/foods.json", testValidator(t), testLogger())

	_, err := src.Load(context.Background())
	assert.Error(t, err)
}

func TestFileSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewFileSource("foods.json", testValidator(t), testLogger())
	_, err := src.Parse(ctx, []byte(validCatalogJSON))
	assert.ErrorIs(t, err, context.Canceled)
}
