package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"research-assistant-cli/internal/dto"
	"research-assistant-cli/internal/entity"
	"research-assistant-cli/internal/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCollectionAPI struct {
	refSets   []entity.ReferenceSet
	inquiries []entity.Inquiry
	refErr    error
	inqErr    error

	createdRefSets   int
	createdInquiries int
	deletes          int
}

func (f *fakeCollectionAPI) ListReferenceSets(context.Context) ([]entity.ReferenceSet, error) {
	return f.refSets, f.refErr
}

func (f *fakeCollectionAPI) ListInquiries(context.Context) ([]entity.Inquiry, error) {
	return f.inquiries, f.inqErr
}

func (f *fakeCollectionAPI) CreateReferenceSet(_ context.Context, req *dto.CreateReferenceSetRequest) (uuid.UUID, error) {
	f.createdRefSets++
	rs := entity.ReferenceSet{Id: uuid.New(), Domain: req.Domain, Description: req.Description}
	f.refSets = append(f.refSets, rs)
	return rs.Id, nil
}

func (f *fakeCollectionAPI) DeleteReferenceSet(_ context.Context, id uuid.UUID) error {
	f.deletes++
	for i, rs := range f.refSets {
		if rs.Id == id {
			f.refSets = append(f.refSets[:i], f.refSets[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeCollectionAPI) CreateInquiry(_ context.Context, req *dto.CreateInquiryRequest) (uuid.UUID, error) {
	f.createdInquiries++
	inq := entity.Inquiry{Id: uuid.New(), Title: req.Title, Description: req.Description, ReferenceSetIds: req.ReferenceSets}
	f.inquiries = append(f.inquiries, inq)
	return inq.Id, nil
}

func (f *fakeCollectionAPI) DeleteInquiry(_ context.Context, id uuid.UUID) error {
	f.deletes++
	for i, inq := range f.inquiries {
		if inq.Id == id {
			f.inquiries = append(f.inquiries[:i], f.inquiries[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func newRepoForTest(api collectionAPI) ICollectionRepository {
	return NewCollectionRepository(api, time.Hour, validator.New(), logger.NewNoopLogger())
}

func TestReloadAppliesBothCollectionsAtomically(t *testing.T) {
	api := &fakeCollectionAPI{
		refSets:   []entity.ReferenceSet{{Id: uuid.New(), Domain: "Medicine"}},
		inquiries: []entity.Inquiry{{Id: uuid.New(), Title: "Diabetes risk factors"}},
	}
	repo := newRepoForTest(api)

	snap, err := repo.Reload(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.ReferenceSets, 1)
	assert.Len(t, snap.Inquiries, 1)

	cached, loaded := repo.Current()
	require.True(t, loaded)
	assert.Equal(t, snap.ReferenceSets, cached.ReferenceSets)
}

func TestReloadPartialFailureRetainsPriorSnapshot(t *testing.T) {
	api := &fakeCollectionAPI{
		refSets:   []entity.ReferenceSet{{Id: uuid.New(), Domain: "Medicine"}},
		inquiries: []entity.Inquiry{{Id: uuid.New(), Title: "first"}},
	}
	repo := newRepoForTest(api)

	first, err := repo.Reload(context.Background())
	require.NoError(t, err)

	// One half fails: the whole reload is treated as failed.
	api.inquiries = []entity.Inquiry{{Id: uuid.New(), Title: "second"}}
	api.inqErr = errors.New("inquiries endpoint down")

	retained, err := repo.Reload(context.Background())
	require.Error(t, err)
	assert.Equal(t, first.Inquiries, retained.Inquiries, "prior snapshot must be retained")

	cached, loaded := repo.Current()
	require.True(t, loaded)
	assert.Equal(t, first.Inquiries, cached.Inquiries)
	assert.Equal(t, first.ReferenceSets, cached.ReferenceSets)
}

func TestReloadIsIdempotentWithoutMutations(t *testing.T) {
	api := &fakeCollectionAPI{
		refSets:   []entity.ReferenceSet{{Id: uuid.New(), Domain: "Medicine", FileCount: 2}},
		inquiries: []entity.Inquiry{{Id: uuid.New(), Title: "t"}},
	}
	repo := newRepoForTest(api)

	first, err := repo.Reload(context.Background())
	require.NoError(t, err)
	second, err := repo.Reload(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.ReferenceSets, second.ReferenceSets)
	assert.Equal(t, first.Inquiries, second.Inquiries)
}

func TestCreateReferenceSetBecomesVisibleViaReload(t *testing.T) {
	api := &fakeCollectionAPI{}
	repo := newRepoForTest(api)
	_, err := repo.Reload(context.Background())
	require.NoError(t, err)

	id, err := repo.CreateReferenceSet(context.Background(), "Medicine", "clinical papers")
	require.NoError(t, err)

	snap, loaded := repo.Current()
	require.True(t, loaded)
	rs, ok := snap.ReferenceSet(id)
	require.True(t, ok, "created set must appear in the reloaded snapshot")
	assert.Equal(t, "Medicine", rs.Domain)
	assert.Equal(t, 0, rs.FileCount)
}

func TestCreateReferenceSetValidatesDomain(t *testing.T) {
	repo := newRepoForTest(&fakeCollectionAPI{})

	_, err := repo.CreateReferenceSet(context.Background(), "", "desc")
	assert.Error(t, err)
}

func TestCreateInquiryRequiresKnownReferenceSets(t *testing.T) {
	api := &fakeCollectionAPI{
		refSets: []entity.ReferenceSet{{Id: uuid.New(), Domain: "Medicine"}},
	}
	repo := newRepoForTest(api)
	_, err := repo.Reload(context.Background())
	require.NoError(t, err)

	_, err = repo.CreateInquiry(context.Background(), "Diabetes risk factors", "", []uuid.UUID{uuid.New()})
	require.Error(t, err)
	assert.Zero(t, api.createdInquiries, "no request may be issued for an unknown reference set")
}

func TestCreateInquiryRequiresNonEmptySelectionAndTitle(t *testing.T) {
	api := &fakeCollectionAPI{refSets: []entity.ReferenceSet{{Id: uuid.New(), Domain: "Medicine"}}}
	repo := newRepoForTest(api)
	_, err := repo.Reload(context.Background())
	require.NoError(t, err)

	_, err = repo.CreateInquiry(context.Background(), "", "", []uuid.UUID{api.refSets[0].Id})
	assert.Error(t, err, "empty title")

	_, err = repo.CreateInquiry(context.Background(), "t", "", nil)
	assert.Error(t, err, "empty selection")
	assert.Zero(t, api.createdInquiries)
}

func TestCreateInquiryOpensWithSelectedReferenceSets(t *testing.T) {
	refSet := entity.ReferenceSet{Id: uuid.New(), Domain: "Medicine"}
	api := &fakeCollectionAPI{refSets: []entity.ReferenceSet{refSet}}
	repo := newRepoForTest(api)
	_, err := repo.Reload(context.Background())
	require.NoError(t, err)

	id, err := repo.CreateInquiry(context.Background(), "Diabetes risk factors", "", []uuid.UUID{refSet.Id})
	require.NoError(t, err)

	snap, _ := repo.Current()
	inq, ok := snap.Inquiry(id)
	require.True(t, ok)
	assert.Equal(t, "Diabetes risk factors", inq.Title)
	assert.Equal(t, []uuid.UUID{refSet.Id}, inq.ReferenceSetIds)
}

func TestDeleteInquiryBecomesVisibleViaReload(t *testing.T) {
	inq := entity.Inquiry{Id: uuid.New(), Title: "t"}
	api := &fakeCollectionAPI{inquiries: []entity.Inquiry{inq}}
	repo := newRepoForTest(api)
	_, err := repo.Reload(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.DeleteInquiry(context.Background(), inq.Id))

	snap, _ := repo.Current()
	_, ok := snap.Inquiry(inq.Id)
	assert.False(t, ok)
}

func TestResetFlushesCache(t *testing.T) {
	api := &fakeCollectionAPI{refSets: []entity.ReferenceSet{{Id: uuid.New(), Domain: "Medicine"}}}
	repo := newRepoForTest(api)
	_, err := repo.Reload(context.Background())
	require.NoError(t, err)

	repo.Reset()

	_, loaded := repo.Current()
	assert.False(t, loaded, "reset must leave the repository empty, not stale")
}
