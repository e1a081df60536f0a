package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"codemarket/internal/catalog"
	"codemarket/internal/domain"
	"codemarket/internal/kvstore"
	"codemarket/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestListingService(seeds ...domain.Listing) (*listingService, repository.ListingRepository) {
	repo := repository.NewListingRepository(kvstore.NewMemoryStore(), zap.NewNop(), seeds...)
	return newListingService(repo, zap.NewNop(), func() time.Time { return fixedNow }), repo
}

func validForm() SubmissionForm {
	return SubmissionForm{
		Title:        "Foo",
		Description:  "Bar",
		Category:     "react",
		Tags:         "a, b",
		CodePreview:  "x",
		PreviewImage: "http://img",
	}
}

func TestSubmit_Scenario(t *testing.T) {
	svc, _ := newTestListingService()

	listing, err := svc.Submit(context.Background(), "0xABC", validForm())
	require.NoError(t, err)

	assert.True(t, listing.Price.Equal(domain.ListingPrice))
	assert.Equal(t, "0.03", listing.Price.String())
	assert.Equal(t, []string{"a", "b"}, listing.Tags)
	assert.Equal(t, "0xABC", listing.Author)
	assert.Zero(t, listing.Rating)
	assert.Zero(t, listing.Sales)
	assert.Equal(t, fixedNow, listing.CreatedAt)

	id, err := uuid.Parse(listing.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestSubmit_RequiresWallet(t *testing.T) {
	svc, repo := newTestListingService()

	_, err := svc.Submit(context.Background(), "", validForm())
	assert.ErrorIs(t, err, domain.ErrWalletDisconnected)
	assert.Empty(t, repo.GetAll(context.Background()))
}

func TestSubmit_MissingFields(t *testing.T) {
	svc, repo := newTestListingService()

	_, err := svc.Submit(context.Background(), "0xABC", SubmissionForm{Title: "Foo", Tags: "a"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	var fields []string
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
		assert.Equal(t, "This field is required", f.Message)
	}
	assert.ElementsMatch(t, []string{"description", "category", "codePreview", "previewImage"}, fields)
	assert.Empty(t, repo.GetAll(context.Background()))
}

func TestSubmit_TagsWithoutContent(t *testing.T) {
	svc, _ := newTestListingService()

	form := validForm()
	form.Tags = " , ,"
	_, err := svc.Submit(context.Background(), "0xABC", form)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "tags", verr.Fields[0].Field)
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitTags("a, b"))
	assert.Equal(t, []string{"a", "b"}, SplitTags(" a ,, b ,"))
	assert.Empty(t, SplitTags(""))
	assert.Empty(t, SplitTags(" , "))
}

type failingListingRepository struct {
	repository.ListingRepository
}

func (failingListingRepository) Append(context.Context, domain.Listing) error {
	return errors.New("store offline")
}

func TestSubmit_StoreFailure(t *testing.T) {
	svc := newListingService(failingListingRepository{}, zap.NewNop(), time.Now)

	_, err := svc.Submit(context.Background(), "0xABC", validForm())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save listing")
}

// Property: a submitted listing reads back from the store unchanged
func TestProperty_SubmissionRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("submitted listing is returned by GetAll", prop.ForAll(
		func(title, description, category, tag1, tag2 string) bool {
			svc, repo := newTestListingService()
			form := SubmissionForm{
				Title:        title,
				Description:  description,
				Category:     category,
				Tags:         tag1 + ", " + tag2,
				CodePreview:  "fmt.Println()",
				PreviewImage: "https://img.example/" + title,
			}

			created, err := svc.Submit(context.Background(), "0xABC", form)
			if err != nil {
				t.Logf("FAIL: submit: %v", err)
				return false
			}

			all := repo.GetAll(context.Background())
			if len(all) != 1 {
				return false
			}
			got := all[0]

			if _, err := uuid.Parse(got.ID); err != nil || got.CreatedAt.IsZero() {
				return false
			}
			return got.ID == created.ID &&
				got.Title == title &&
				got.Description == description &&
				got.Category == category &&
				len(got.Tags) == 2 && got.Tags[0] == tag1 && got.Tags[1] == tag2 &&
				got.Price.Equal(domain.ListingPrice) &&
				got.Author == "0xABC" &&
				got.CreatedAt.Equal(created.CreatedAt)
		},
		gen.RegexMatch(`[A-Za-z][A-Za-z ]{0,20}[a-z]`),
		gen.RegexMatch(`[A-Za-z]{1,40}`),
		gen.OneConstOf("react", "javascript", "go", "python"),
		gen.RegexMatch(`[a-z]{1,10}`),
		gen.RegexMatch(`[a-z]{1,10}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestBrowseAndCategories(t *testing.T) {
	seeds := repository.SeedListings(fixedNow.Add(-time.Hour))
	svc, _ := newTestListingService(seeds...)
	ctx := context.Background()

	form := validForm()
	form.Category = "go"
	submitted, err := svc.Submit(ctx, "0xABC", form)
	require.NoError(t, err)

	all := svc.Browse(ctx, catalog.Filter{Category: catalog.AllCategories, SortBy: catalog.SortNewest})
	require.Len(t, all, 3)
	assert.Equal(t, submitted.ID, all[0].ID)

	tables := svc.Browse(ctx, catalog.Filter{Query: "table", Category: catalog.AllCategories})
	require.Len(t, tables, 1)
	assert.Equal(t, "React Data Table Component", tables[0].Title)

	assert.Empty(t, svc.Browse(ctx, catalog.Filter{Query: "zzz"}))
	assert.Equal(t, []string{"react", "javascript", "go"}, svc.Categories(ctx))

	found, err := svc.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "React Data Table Component", found.Title)

	_, err = svc.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrListingNotFound)
}
