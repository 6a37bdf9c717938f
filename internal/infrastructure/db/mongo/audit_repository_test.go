package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/greenlibrary/catalog/internal/core/domain"
)

func TestAuditRepository_InsertAttempt(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("stores attempt", func(mt *mtest.T) {
		repo := &AuditRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.InsertAttempt(context.Background(), domain.AuthAttempt{
			Login:   "alice",
			UserID:  "u-1",
			Outcome: domain.OutcomeSuccess,
			At:      time.Now(),
		})
		require.NoError(mt, err)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "insert", started.CommandName)

		docs, ok := started.Command.Lookup("documents").ArrayOK()
		require.True(mt, ok)
		values, err := docs.Values()
		require.NoError(mt, err)
		require.Len(mt, values, 1)

		var got bson.M
		require.NoError(mt, bson.Unmarshal(values[0].Document(), &got))
		assert.Equal(mt, "alice", got["login"])
		assert.Equal(mt, "success", got["outcome"])
		assert.NotContains(mt, got, "remote_ip")
	})

	mt.Run("write error is a persistence failure", func(mt *mtest.T) {
		repo := &AuditRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 121, Message: "document failed validation",
		}))

		err := repo.InsertAttempt(context.Background(), domain.AuthAttempt{Login: "alice", Outcome: domain.OutcomeBadPassword})
		assert.ErrorIs(mt, err, domain.ErrPersistence)
	})
}

func TestAuditRepository_EnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates indexes", func(mt *mtest.T) {
		repo := &AuditRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, repo.EnsureIndexes(context.Background()))
		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "createIndexes", started.CommandName)
	})
}
