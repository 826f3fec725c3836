package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chachabrian/staybook-backend/internal/models"
)

func testClient(hub *Hub, id uint, role models.Role) *Client {
	c := &Client{ID: id, Role: role, Send: make(chan []byte, 4), Hub: hub}
	hub.addClient(c)
	return c
}

func TestHubNotifyBookingTargetsOwnerAndAdmins(t *testing.T) {
	hub := NewHub(quietLogger())
	owner := testClient(hub, 100, models.RoleUser)
	stranger := testClient(hub, 200, models.RoleUser)
	adminClient := testClient(hub, 1, models.RoleAdmin)

	err := hub.NotifyBooking(context.Background(), BookingEvent{Type: BookingCreated, BookingID: 7, UserID: 100})
	require.NoError(t, err)

	assert.Len(t, owner.Send, 1)
	assert.Len(t, adminClient.Send, 1)
	assert.Len(t, stranger.Send, 0)

	var msg struct {
		Type string       `json:"type"`
		Data BookingEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(<-owner.Send, &msg))
	assert.Equal(t, "booking_created", msg.Type)
	assert.Equal(t, uint(7), msg.Data.BookingID)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(quietLogger())
	c := testClient(hub, 5, models.RoleUser)

	for i := 0; i < cap(c.Send); i++ {
		assert.Equal(t, 1, hub.SendToUser(5, []byte("x")))
	}
	assert.Equal(t, 0, hub.SendToUser(5, []byte("overflow")))
	assert.Equal(t, 1, hub.ConnectedClients())
}

func TestHubRunRegistersAndShutsDown(t *testing.T) {
	hub := NewHub(quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	c := &Client{ID: 9, Role: models.RoleAdmin, Send: make(chan []byte, 1), Hub: hub}
	hub.register <- c
	hub.unregister <- c
	hub.register <- &Client{ID: 10, Send: make(chan []byte, 1), Hub: hub}

	cancel()
	<-done

	_, open := <-c.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.ConnectedClients())
	assert.Zero(t, hub.SendToRole(models.RoleAdmin, []byte("x")))
}
