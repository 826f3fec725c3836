package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	auditCollection = "audit_log"
	auditTimeout    = 5 * time.Second
)

// AuditEntry is one document of the audit trail.
type AuditEntry struct {
	Resource   string    `bson:"resource" json:"resource"`
	ResourceID uint      `bson:"resource_id" json:"resourceId"`
	Action     string    `bson:"action" json:"action"`
	UserID     uint      `bson:"user_id,omitempty" json:"userId,omitempty"`
	Details    any       `bson:"details,omitempty" json:"details,omitempty"`
	At         time.Time `bson:"at" json:"at"`
}

// ConnectMongo connects and pings within a bounded time.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// AuditTrail records booking and house changes in MongoDB.
type AuditTrail struct {
	coll *mongo.Collection
}

func NewAuditTrail(client *mongo.Client, database string) *AuditTrail {
	return &AuditTrail{coll: client.Database(database).Collection(auditCollection)}
}

func (a *AuditTrail) record(ctx context.Context, entry AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, auditTimeout)
	defer cancel()

	if _, err := a.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("audit %s %d: %w", entry.Resource, entry.ResourceID, err)
	}
	return nil
}

func (a *AuditTrail) NotifyBooking(ctx context.Context, event BookingEvent) error {
	return a.record(ctx, AuditEntry{
		Resource:   "booking",
		ResourceID: event.BookingID,
		Action:     string(event.Type),
		UserID:     event.UserID,
		Details:    event,
		At:         event.At,
	})
}

func (a *AuditTrail) NotifyHouse(ctx context.Context, event HouseEvent) error {
	return a.record(ctx, AuditEntry{
		Resource:   "house",
		ResourceID: event.HouseID,
		Action:     string(event.Action),
		UserID:     event.ActorID,
		At:         event.At,
	})
}

// History returns the latest entries for one resource, newest first.
func (a *AuditTrail) History(ctx context.Context, resource string, id uint, limit int64) ([]AuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, auditTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}}).SetLimit(limit)
	cursor, err := a.coll.Find(ctx, bson.M{"resource": resource, "resource_id": id}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
