package match

import (
	"testing"

	"book-assistant/backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalog = []model.Book{
	{ID: "1", Title: "Laskar Pelangi"},
	{ID: "2", Title: "Sang Pemimpi"},
	{ID: "3", Title: "Laskar Pelangi: Edisi Khusus"},
	{ID: "4", Title: "Cantik Itu Luka"},
	{ID: "5", Title: "Dilan"},
	{ID: "6", Title: "Dilan 1991"},
	{ID: "7", Title: ""},
}

func ids(books []model.Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.ID)
	}
	return out
}

func TestNew(t *testing.T) {
	for _, policy := range []string{"", "substring", "EXACT", " fuzzy "} {
		m, err := New(policy)
		require.NoError(t, err, policy)
		assert.NotNil(t, m)
	}

	_, err := New("semantic")
	assert.Error(t, err)
}

func TestSubstring_Match(t *testing.T) {
	m := Substring{}

	t.Run("title mentioned resolves every containing title", func(t *testing.T) {
		got := m.Match("Coba baca LASKAR PELANGI, sangat bagus.", catalog)
		assert.Equal(t, []string{"1", "3"}, ids(got))
	})

	t.Run("multiple titles keep catalog order without duplicates", func(t *testing.T) {
		got := m.Match("Sang Pemimpi adalah sekuel dari Laskar Pelangi: Edisi Khusus", catalog)
		assert.Equal(t, []string{"1", "2", "3"}, ids(got))
	})

	t.Run("short title inside longer title", func(t *testing.T) {
		got := m.Match("Dilan 1991 adalah lanjutan cerita.", catalog)
		assert.Equal(t, []string{"5", "6"}, ids(got))
	})

	t.Run("no title", func(t *testing.T) {
		assert.Empty(t, m.Match("Kami punya kategori Fiksi dan Non-Fiksi.", catalog))
	})

	t.Run("empty catalog", func(t *testing.T) {
		assert.Empty(t, m.Match("Laskar Pelangi", nil))
	})
}

func TestExact_Match(t *testing.T) {
	m := Exact{}

	got := m.Match("Saya suka laskar pelangi.", catalog)
	assert.Equal(t, []string{"1"}, ids(got))

	got = m.Match("Baca Dilan 1991 sekarang", catalog)
	assert.Equal(t, []string{"5", "6"}, ids(got))

	assert.Empty(t, m.Match("Dilanjutkan besok", catalog))
}

func TestFuzzy_Match(t *testing.T) {
	m := Fuzzy{}

	got := m.Match("Rekomendasi: *Cantik-itu  luka*!", catalog)
	assert.Equal(t, []string{"4"}, ids(got))

	got = m.Match("Sang Pémimpi", catalog)
	assert.Equal(t, []string{"2"}, ids(got))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "cantik itu luka", Fold("  Cantik—Itu, LUKA! "))
	assert.Equal(t, "cafe", Fold("Café"))
	assert.Equal(t, "", Fold("***"))
}

func TestContainsPhrase(t *testing.T) {
	assert.True(t, containsPhrase("read dilan today", "dilan"))
	assert.True(t, containsPhrase("dilan", "dilan"))
	assert.False(t, containsPhrase("dilanjutkan", "dilan"))
	assert.True(t, containsPhrase("dilanjutkan dilan", "dilan"))
}
