package labels

import (
	"context"
	"errors"
	"testing"

	"github.com/sellerdesk/backend/internal/domain/marketplace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeFetcher struct {
	gotCred marketplace.StoreCredential
	gotIDs  []string
	doc     []byte
	err     error
}

func (f *fakeFetcher) FetchLabels(_ context.Context, cred marketplace.StoreCredential, ids []string) ([]byte, error) {
	f.gotCred = cred
	f.gotIDs = ids
	return f.doc, f.err
}

type fakeArchive struct {
	storeID string
	err     error
}

func (a *fakeArchive) Archive(_ context.Context, storeID string, _ []byte) (ArchivedLabel, error) {
	a.storeID = storeID
	if a.err != nil {
		return ArchivedLabel{}, a.err
	}
	return ArchivedLabel{Key: "labels/" + storeID + "/x.pdf", URL: "http://s3/x.pdf"}, nil
}

var creds = []marketplace.StoreCredential{
	{StoreID: "A", Secret: "a"},
	{StoreID: "B", Secret: "b"},
}

func TestService_Fetch_SelectsCredential(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		wantStore string
	}{
		{"matching store", "B", "B"},
		{"unknown store falls back to first", "Z", "A"},
		{"unstamped order falls back to first", "", "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fakeFetcher{doc: []byte("%PDF")}
			svc := NewService(fetcher, nil, nil)

			orders := []marketplace.Order{
				{PostingID: "p1", SourceStoreID: tt.source},
				{PostingID: "p2", SourceStoreID: "A"},
			}
			res, err := svc.Fetch(context.Background(), creds, orders)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStore, fetcher.gotCred.StoreID)
			assert.Equal(t, tt.wantStore, res.StoreID)
			assert.Equal(t, []string{"p1", "p2"}, fetcher.gotIDs)
			assert.Equal(t, []byte("%PDF"), res.Document)
			assert.Nil(t, res.Archived)
		})
	}
}

func TestService_Fetch_Validation(t *testing.T) {
	svc := NewService(&fakeFetcher{}, nil, nil)

	_, err := svc.Fetch(context.Background(), nil, []marketplace.Order{{PostingID: "p"}})
	assert.ErrorIs(t, err, marketplace.ErrNoCredentials)
	assert.True(t, IsUserError(err))

	_, err = svc.Fetch(context.Background(), creds, nil)
	assert.ErrorIs(t, err, marketplace.ErrNoOrders)
	assert.True(t, IsUserError(err))
}

func TestService_Fetch_PropagatesError(t *testing.T) {
	remote := &marketplace.RemoteError{StoreID: "A", StatusCode: 400, Detail: "bad posting"}
	svc := NewService(&fakeFetcher{err: remote}, &fakeArchive{}, nil)

	res, err := svc.Fetch(context.Background(), creds, []marketplace.Order{{PostingID: "p", SourceStoreID: "A"}})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, marketplace.ErrRemote)

	var re *marketplace.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "bad posting", re.Detail)
	assert.False(t, IsUserError(err))
}

func TestService_Fetch_Archive(t *testing.T) {
	orders := []marketplace.Order{{PostingID: "p", SourceStoreID: "B"}}

	t.Run("archived", func(t *testing.T) {
		archive := &fakeArchive{}
		svc := NewService(&fakeFetcher{doc: []byte("%PDF")}, archive, nil)

		res, err := svc.Fetch(context.Background(), creds, orders)
		require.NoError(t, err)
		require.NotNil(t, res.Archived)
		assert.Equal(t, "B", archive.storeID)
		assert.Equal(t, "labels/B/x.pdf", res.Archived.Key)
	})

	t.Run("archive failure keeps document", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		svc := NewService(&fakeFetcher{doc: []byte("%PDF")}, &fakeArchive{err: errors.New("s3 down")}, zap.New(core))

		res, err := svc.Fetch(context.Background(), creds, orders)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF"), res.Document)
		assert.Nil(t, res.Archived)

		entries := logs.FilterMessage("Label archive failed").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "B", entries[0].ContextMap()["store_id"])
	})
}
