package goshape_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shepherrrd/goshape"
)

type Award struct {
	Name string
	Year int
}

type Review struct {
	Reviewer string
	Stars    int
}

type Book struct {
	ID       uuid.UUID
	Title    string
	Year     int
	AuthorID uuid.UUID
	Reviews  []Review
}

type Author struct {
	ID     uuid.UUID
	Name   string
	Score  int
	Books  []Book
	Awards []Award
}

func sampleAuthors() []Author {
	ada := uuid.New()
	bob := uuid.New()
	return []Author{
		{
			ID:    ada,
			Name:  "ada",
			Score: 10,
			Books: []Book{
				{ID: uuid.New(), Title: "early", Year: 1999, AuthorID: ada, Reviews: []Review{
					{Reviewer: "eve", Stars: 2},
					{Reviewer: "mallory", Stars: 5},
				}},
				{ID: uuid.New(), Title: "late", Year: 2021, AuthorID: ada},
				{ID: uuid.New(), Title: "middle", Year: 2010, AuthorID: ada, Reviews: []Review{
					{Reviewer: "trent", Stars: 4},
				}},
			},
			Awards: []Award{{Name: "gold", Year: 2022}, {Name: "silver", Year: 2011}},
		},
		{
			ID:    bob,
			Name:  "bob",
			Score: 20,
			Books: []Book{
				{ID: uuid.New(), Title: "only", Year: 2005, AuthorID: bob},
			},
		},
	}
}

func TestSelectPartiallyFieldSubset(t *testing.T) {
	authors := sampleAuthors()
	source := goshape.NewMemorySource(authors)

	projected, err := goshape.SelectPartially(source, []string{"ID", "Name"})
	require.NoError(t, err)

	records, err := projected.Materialize(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	for i, record := range records {
		assert.Equal(t, []string{"ID", "Name"}, record.Columns())

		id, err := goshape.FieldValue[uuid.UUID](record, "ID")
		require.NoError(t, err)
		assert.Equal(t, authors[i].ID, id)

		name, err := goshape.FieldValue[string](record, "Name")
		require.NoError(t, err)
		assert.Equal(t, authors[i].Name, name)

		_, err = record.Get("Score")
		assert.ErrorIs(t, err, goshape.ErrFieldNotFound)
	}
}

func TestSelectPartiallyConcreteScenario(t *testing.T) {
	type row struct {
		Id    int
		Name  string
		Score int
	}
	source := goshape.NewMemorySource([]row{
		{Id: 1, Name: "a", Score: 10},
		{Id: 2, Name: "b", Score: 20},
	})

	projected, err := goshape.SelectPartially(source, []string{"Id", "Name"})
	require.NoError(t, err)

	records, err := projected.Materialize(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	for i, want := range []struct {
		id   int
		name string
	}{{1, "a"}, {2, "b"}} {
		id, err := goshape.FieldValue[int](records[i], "Id")
		require.NoError(t, err)
		name, err := goshape.FieldValue[string](records[i], "Name")
		require.NoError(t, err)
		assert.Equal(t, want.id, id)
		assert.Equal(t, want.name, name)

		_, err = records[i].Get("Score")
		assert.ErrorIs(t, err, goshape.ErrFieldNotFound)
	}
}

func TestSelectPartiallyDropsUnknownFieldsSilently(t *testing.T) {
	source := goshape.NewMemorySource(sampleAuthors())

	projected, err := goshape.SelectPartially(source, []string{"Name", "DoesNotExist"})
	require.NoError(t, err)

	records, err := projected.Materialize(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Name"}, records[0].Columns())
}

func TestSelectPartiallyStrictFields(t *testing.T) {
	source := goshape.NewMemorySource(sampleAuthors())

	_, err := goshape.SelectPartially(source, []string{"Name", "DoesNotExist"}, goshape.WithStrictFields())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "DoesNotExist"`)
}

func TestSelectPartiallyDuplicateNameIsCallerError(t *testing.T) {
	source := goshape.NewMemorySource(sampleAuthors())

	_, err := goshape.SelectPartially(source, []string{"Name", "Name"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate field")
}

func TestSelectPartiallyNilSource(t *testing.T) {
	var source goshape.DeferredQuery[Author]

	_, err := goshape.SelectPartially(source, []string{"Name"})
	assert.ErrorIs(t, err, goshape.ErrNilSource)
}

func TestSelectPartiallyKeepsCallerOrder(t *testing.T) {
	source := goshape.NewMemorySource(sampleAuthors())

	projected, err := goshape.SelectPartially(source, []string{"Score", "Name", "ID"})
	require.NoError(t, err)

	records, err := projected.Materialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Score", "Name", "ID"}, records[0].Columns())
}

func TestSelectPartiallyShapeIsStableAcrossCalls(t *testing.T) {
	first, err := goshape.SelectPartially(goshape.NewMemorySource(sampleAuthors()), []string{"ID", "Name"})
	require.NoError(t, err)
	second, err := goshape.SelectPartially(goshape.NewMemorySource(sampleAuthors()), []string{"ID", "Name"})
	require.NoError(t, err)

	firstRecords, err := first.Materialize(context.Background())
	require.NoError(t, err)
	secondRecords, err := second.Materialize(context.Background())
	require.NoError(t, err)

	assert.Same(t, firstRecords[0].Type(), secondRecords[0].Type(),
		"identical catalogs share one synthesized type")
}

func TestSelectIncludingNilSource(t *testing.T) {
	var source goshape.DeferredQuery[Author]

	_, err := goshape.SelectIncluding(context.Background(), source,
		goshape.Include[Author]("Books").Lambda())
	assert.ErrorIs(t, err, goshape.ErrNilSource)
}

func TestSelectIncludingRoundTripIdentity(t *testing.T) {
	authors := sampleAuthors()

	returned, err := goshape.SelectIncluding(context.Background(), goshape.NewMemorySource(authors),
		goshape.Include[Author]("Books").OrderBy("Year").Lambda(),
		goshape.Include[Author]("Awards").Lambda(),
	)
	require.NoError(t, err)

	require.Len(t, returned, len(authors))
	for i := range authors {
		assert.Equal(t, authors[i].ID, returned[i].ID)
		assert.Equal(t, authors[i].Name, returned[i].Name)
	}
}

func TestSelectIncludingPopulatesNavigation(t *testing.T) {
	returned, err := goshape.SelectIncluding(context.Background(), goshape.NewMemorySource(sampleAuthors()),
		goshape.Include[Author]("Books").OrderByDescending("Year").Take(1).Lambda(),
	)
	require.NoError(t, err)
	require.Len(t, returned, 2)

	require.Len(t, returned[0].Books, 1)
	assert.Equal(t, "late", returned[0].Books[0].Title)
	require.Len(t, returned[1].Books, 1)
	assert.Equal(t, "only", returned[1].Books[0].Title)
}

func TestSelectIncludingWhereFilter(t *testing.T) {
	returned, err := goshape.SelectIncluding(context.Background(), goshape.NewMemorySource(sampleAuthors()),
		goshape.Include[Author]("Books").Where("Year", 2010).Lambda(),
	)
	require.NoError(t, err)

	require.Len(t, returned[0].Books, 1)
	assert.Equal(t, "middle", returned[0].Books[0].Title)
	assert.Empty(t, returned[1].Books)
}

func TestSelectIncludingMultipleIncludes(t *testing.T) {
	returned, err := goshape.SelectIncluding(context.Background(), goshape.NewMemorySource(sampleAuthors()),
		goshape.Include[Author]("Books").OrderBy("Year").Take(2).Lambda(),
		goshape.Include[Author]("Awards").OrderBy("Year").Take(1).Lambda(),
	)
	require.NoError(t, err)

	require.Len(t, returned[0].Books, 2)
	assert.Equal(t, "early", returned[0].Books[0].Title)
	assert.Equal(t, "middle", returned[0].Books[1].Title)

	require.Len(t, returned[0].Awards, 1)
	assert.Equal(t, "silver", returned[0].Awards[0].Name)
}

func TestSelectIncludingNestedPath(t *testing.T) {
	authors := sampleAuthors()

	returned, err := goshape.SelectIncluding(context.Background(), goshape.NewMemorySource(authors),
		goshape.Include[Author]("Books.Reviews").OrderByDescending("Stars").Take(1).Lambda(),
	)
	require.NoError(t, err)
	require.Len(t, returned, 2)

	require.Len(t, returned[0].Books[0].Reviews, 1)
	assert.Equal(t, "mallory", returned[0].Books[0].Reviews[0].Reviewer)
	require.Len(t, returned[0].Books[2].Reviews, 1)
	assert.Equal(t, "trent", returned[0].Books[2].Reviews[0].Reviewer)
	assert.Empty(t, returned[0].Books[1].Reviews)
}

func TestSelectIncludingPointerRows(t *testing.T) {
	authors := sampleAuthors()
	rows := []*Author{&authors[0], &authors[1]}

	returned, err := goshape.SelectIncluding(context.Background(), goshape.NewMemorySource(rows),
		goshape.Include[*Author]("Books").OrderBy("Year").Lambda(),
	)
	require.NoError(t, err)
	require.Len(t, returned, 2)

	// Row identity survives the round trip.
	assert.Same(t, &authors[0], returned[0])
	assert.Same(t, &authors[1], returned[1])
	assert.Equal(t, "early", returned[0].Books[0].Title)
}

func TestSelectPartiallyPointerRows(t *testing.T) {
	authors := sampleAuthors()
	rows := []*Author{&authors[0], &authors[1]}

	projected, err := goshape.SelectPartially(goshape.NewMemorySource(rows), []string{"Name"})
	require.NoError(t, err)

	records, err := projected.Materialize(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	name, err := goshape.FieldValue[string](records[0], "Name")
	require.NoError(t, err)
	assert.Equal(t, "ada", name)
}

func TestIncludeNestedPathBuilds(t *testing.T) {
	assert.NotPanics(t, func() {
		goshape.Include[Author]("Books.Reviews")
	})
}

func TestSelectIncludingNoIncludes(t *testing.T) {
	authors := sampleAuthors()
	returned, err := goshape.SelectIncluding(context.Background(), goshape.NewMemorySource(authors))
	require.NoError(t, err)
	assert.Len(t, returned, len(authors))
}

func TestIncludePanicsOnUnknownPath(t *testing.T) {
	assert.Panics(t, func() {
		goshape.Include[Author]("NoSuchRelation")
	})
}
