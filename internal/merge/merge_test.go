package merge

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/kardex-extract/internal/types"
)

func line(grade, date, user string, mt types.MovementType, qty int64) types.AggregatedLine {
	return types.AggregatedLine{
		GradeCode:    grade,
		Date:         date,
		Username:     user,
		MovementType: mt,
		Time:         "10:00:00",
		Quantity:     decimal.NewFromInt(qty),
	}
}

func assertUniqueKeys(t *testing.T, lines []types.AggregatedLine) {
	t.Helper()
	seen := make(map[types.Key]bool, len(lines))
	for _, l := range lines {
		require.False(t, seen[l.Key()], "duplicate key %+v", l.Key())
		seen[l.Key()] = true
	}
}

func existingSet() []types.AggregatedLine {
	return []types.AggregatedLine{
		line("G1", "2024-05-09", "ANA", types.MovementSale, 1),
		line("G1", "2024-05-10", "ANA", types.MovementSale, 2),
		line("G2", "2024-05-10", "BIA", types.MovementReturn, 1),
	}
}

func incomingSet() []types.AggregatedLine {
	return []types.AggregatedLine{
		line("G1", "2024-05-10", "ANA", types.MovementSale, 5),
		line("G1", "2024-05-10", "ANA", types.MovementReturn, 1),
		line("G3", "2024-05-11", "ANA", types.MovementSale, 7),
	}
}

func TestUpsertCountsAndReplacement(t *testing.T) {
	res := Upsert(existingSet(), incomingSet())

	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 2, res.Kept)
	require.Len(t, res.Lines, 5)
	assertUniqueKeys(t, res.Lines)

	for _, l := range res.Lines {
		if l.Key() == (types.Key{GradeCode: "G1", Date: "2024-05-10", Username: "ANA", MovementType: types.MovementSale}) {
			assert.True(t, decimal.NewFromInt(5).Equal(l.Quantity), "new line replaces, never adds")
		}
	}
}

func TestUpsertConservation(t *testing.T) {
	existing, incoming := existingSet(), incomingSet()
	res := Upsert(existing, incoming)

	overlap := 0
	keys := make(map[types.Key]bool)
	for _, l := range existing {
		keys[l.Key()] = true
	}
	for _, l := range incoming {
		if keys[l.Key()] {
			overlap++
		}
	}
	assert.Equal(t, len(existing)-overlap+len(incoming), len(res.Lines))
}

func TestUpsertIsIdempotent(t *testing.T) {
	once := Upsert(existingSet(), incomingSet())
	twice := Upsert(once.Lines, incomingSet())

	assert.Equal(t, once.Lines, twice.Lines)
	assert.Equal(t, 3, twice.Updated)
	assert.Zero(t, twice.Inserted)
	assertUniqueKeys(t, twice.Lines)
}

func TestUpsertEdges(t *testing.T) {
	existing := existingSet()

	res := Upsert(existing, nil)
	assert.ElementsMatch(t, existing, res.Lines)
	assert.Zero(t, res.Updated+res.Inserted)
	assert.Equal(t, 3, res.Kept)

	res = Upsert(nil, incomingSet())
	assert.ElementsMatch(t, incomingSet(), res.Lines)
	assert.Equal(t, 3, res.Inserted)
}

func TestUpsertCollapsesDuplicateExistingKeys(t *testing.T) {
	dup := append(existingSet(), line("G1", "2024-05-09", "ANA", types.MovementSale, 9))
	res := Upsert(dup, nil)
	require.Len(t, res.Lines, 3)
	assertUniqueKeys(t, res.Lines)
}

func TestUpsertSortsOutput(t *testing.T) {
	res := Upsert(existingSet(), incomingSet())
	for i := 1; i < len(res.Lines); i++ {
		assert.LessOrEqual(t, res.Lines[i-1].Date, res.Lines[i].Date)
	}
}

func randomLines(f *gofakeit.Faker, n int) []types.AggregatedLine {
	users := []string{"ANA", "BIA", "CAIO"}
	dates := []string{"2024-05-08", "2024-05-09", "2024-05-10"}
	out := make([]types.AggregatedLine, n)
	for i := range out {
		mt := types.MovementSale
		if f.Bool() {
			mt = types.MovementReturn
		}
		out[i] = line(f.Numerify("G#"), f.RandomString(dates), f.RandomString(users), mt, int64(f.Number(1, 50)))
	}
	return out
}

func TestUpsertRandomized(t *testing.T) {
	f := gofakeit.New(42)

	for round := 0; round < 20; round++ {
		existing := randomLines(f, f.Number(0, 60))
		incoming := randomLines(f, f.Number(0, 40))

		wantIncoming := map[types.Key]types.AggregatedLine{}
		for _, l := range incoming {
			wantIncoming[l.Key()] = l
		}
		wantExisting := map[types.Key]types.AggregatedLine{}
		for _, l := range existing {
			wantExisting[l.Key()] = l
		}

		res := Upsert(existing, incoming)
		assertUniqueKeys(t, res.Lines)
		assert.Equal(t, len(wantIncoming), res.Updated+res.Inserted)

		got := map[types.Key]types.AggregatedLine{}
		for _, l := range res.Lines {
			got[l.Key()] = l
		}
		for k, l := range wantIncoming {
			assert.True(t, l.Quantity.Equal(got[k].Quantity), "incoming key %+v must win", k)
		}
		kept := 0
		for k, l := range wantExisting {
			if _, replaced := wantIncoming[k]; replaced {
				continue
			}
			kept++
			assert.True(t, l.Quantity.Equal(got[k].Quantity), "existing key %+v must be retained", k)
		}
		assert.Equal(t, kept, res.Kept)
		assert.Len(t, res.Lines, kept+len(wantIncoming))
	}
}
