// Package auditrepo stores the settlement audit trail in MongoDB.
package auditrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/go-petr/micro-bank/internal/domain"
)

const collectionName = "settlement_audit"

type entry struct {
	TransactionID   string    `bson:"transaction_id"`
	ReferenceNumber string    `bson:"reference_number"`
	Type            string    `bson:"type"`
	Status          string    `bson:"status"`
	FailureReason   string    `bson:"failure_reason,omitempty"`
	Unreconciled    bool      `bson:"unreconciled"`
	SettledAt       time.Time `bson:"settled_at"`
	RecordedAt      time.Time `bson:"recorded_at"`
}

// RepoMongo stores settlement audit entries.
type RepoMongo struct {
	collection *mongo.Collection
}

// NewRepoMongo returns the audit repository over the settlement_audit
// collection of the given database.
func NewRepoMongo(client *mongo.Client, dbName string) *RepoMongo {
	return &RepoMongo{collection: client.Database(dbName).Collection(collectionName)}
}

// Record inserts one audit entry.
func (r *RepoMongo) Record(ctx context.Context, audit domain.SettlementAudit) error {
	doc := entry{
		TransactionID:   audit.TransactionID.String(),
		ReferenceNumber: audit.ReferenceNumber,
		Type:            string(audit.Type),
		Status:          string(audit.Status),
		FailureReason:   audit.FailureReason,
		Unreconciled:    audit.Unreconciled,
		SettledAt:       audit.SettledAt,
		RecordedAt:      time.Now().UTC(),
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	return nil
}

// ListUnreconciled returns the audit entries of transfers that still need
// manual reconciliation, most recent first.
func (r *RepoMongo) ListUnreconciled(ctx context.Context, limit int64) ([]domain.SettlementAudit, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "settled_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.D{{Key: "unreconciled", Value: true}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []entry
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}

	audits := make([]domain.SettlementAudit, 0, len(docs))

	for _, doc := range docs {
		audit := domain.SettlementAudit{
			ReferenceNumber: doc.ReferenceNumber,
			Type:            domain.TransactionType(doc.Type),
			Status:          domain.TransactionStatus(doc.Status),
			FailureReason:   doc.FailureReason,
			Unreconciled:    doc.Unreconciled,
			SettledAt:       doc.SettledAt,
		}
		if id, err := uuid.Parse(doc.TransactionID); err == nil {
			audit.TransactionID = id
		}

		audits = append(audits, audit)
	}

	return audits, nil
}
