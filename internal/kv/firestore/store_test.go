package firestore_test

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"swimfit/backend/internal/kv"
	fsstore "swimfit/backend/internal/kv/firestore"
	"swimfit/backend/internal/kv/kvtest"
)

func TestFirestoreConformance(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "swimfit-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	kvtest.RunConformance(t, func(t *testing.T) kv.Store {
		return fsstore.New(client, fsstore.WithCollectionPrefix("t_"+uuid.NewString()[:8]+"_"))
	})
}
