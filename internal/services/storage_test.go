package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPhotoStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalPhotoStore(dir, "http://localhost:8080/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Save(ctx, "houses", "photo_3.png", "image/png", pngPixel)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/houses/photo_3.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "houses", "photo_3.png"))
	require.NoError(t, err)
	assert.Equal(t, pngPixel, data)

	entries, err := os.ReadDir(filepath.Join(dir, "houses"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, store.Delete(ctx, url))
	_, err = os.Stat(filepath.Join(dir, "houses", "photo_3.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(ctx, url))
	assert.Error(t, store.Delete(ctx, "http://localhost:8080/uploads/../secrets"))
	assert.Error(t, store.Delete(ctx, "https://elsewhere.example.com/x.png"))
}

func TestEncodeHouseEvent(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	msg, err := encodeHouseEvent(HouseEvent{Action: HouseUpdated, HouseID: 12, ActorID: 1, At: at})
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, "update", body["action"])
	assert.Equal(t, float64(12), body["house_id"])
}
