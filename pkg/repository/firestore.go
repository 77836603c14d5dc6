package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kujo/pkg/domain/interfaces"
	"github.com/secmon-lab/kujo/pkg/domain/model"
	"github.com/secmon-lab/kujo/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// Collection names
	complaintsCollection = "complaints"

	// Field names
	fieldSeq = "Seq"
)

// complaintDoc is the stored form of a complaint. Seq keeps insertion order across equal timestamps.
type complaintDoc struct {
	ID            string    `firestore:"ID"`
	Seq           int64     `firestore:"Seq"`
	Timestamp     time.Time `firestore:"Timestamp"`
	Name          string    `firestore:"Name"`
	Email         string    `firestore:"Email"`
	Category      string    `firestore:"Category"`
	Municipality  string    `firestore:"Municipality"`
	Severity      string    `firestore:"Severity"`
	SeverityScore *float64  `firestore:"SeverityScore"`
	Description   string    `firestore:"Description"`
	Status        string    `firestore:"Status"`
}

// Firestore implements Repository interface with Firestore
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (interfaces.Repository, error) {
	logger := ctxlog.From(ctx)

	// Create client with database ID
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	// Fail fast on invalid project or missing permission
	_, err = client.Collection(complaintsCollection).Limit(1).Documents(ctx).Next()
	if err != nil && err != iterator.Done {
		if status.Code(err) == codes.PermissionDenied || status.Code(err) == codes.Unauthenticated {
			_ = client.Close()
			return nil, goerr.Wrap(err, "failed to connect to firestore project",
				goerr.V("firestore error code", status.Code(err).String()),
			)
		}
		// For other errors (like NotFound for new projects), log but continue
		logger.Debug("Firestore connection test returned error (may be empty collection)",
			"error", err,
			"errorCode", status.Code(err).String(),
		)
	}

	logger.Info("Firestore repository initialized successfully",
		"projectID", projectID,
		"databaseID", databaseID,
	)

	return &Firestore{
		client: client,
	}, nil
}

// AppendComplaint saves a complaint to Firestore
func (f *Firestore) AppendComplaint(ctx context.Context, complaint *model.Complaint) error {
	if complaint == nil {
		return goerr.New("complaint is nil")
	}
	if complaint.ID == "" {
		return goerr.New("complaint ID is empty")
	}

	doc := complaintDoc{
		ID:           complaint.ID.String(),
		Seq:          time.Now().UnixNano(),
		Timestamp:    complaint.Timestamp,
		Name:         complaint.Name,
		Email:        complaint.Email,
		Category:     complaint.Category,
		Municipality: complaint.Municipality,
		Severity:     complaint.Severity,
		Description:  complaint.Description,
		Status:       complaint.Status.String(),
	}
	if complaint.SeverityScore.IsDefined() {
		v := complaint.SeverityScore.Float64()
		doc.SeverityScore = &v
	}

	// Create fails if the document exists, which keeps the store append only
	if _, err := f.client.Collection(complaintsCollection).Doc(doc.ID).Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(err, "complaint already exists", goerr.V("id", doc.ID))
		}
		return goerr.Wrap(err, "failed to save complaint to firestore", goerr.V("id", doc.ID))
	}

	return nil
}

// ListComplaints lists every complaint in insertion order
func (f *Firestore) ListComplaints(ctx context.Context) ([]*model.Complaint, error) {
	iter := f.client.Collection(complaintsCollection).OrderBy(fieldSeq, firestore.Asc).Documents(ctx)
	defer iter.Stop()

	complaints := []*model.Complaint{}
	for {
		snapshot, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate complaints")
		}

		var doc complaintDoc
		if err := snapshot.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode complaint", goerr.V("docID", snapshot.Ref.ID))
		}

		complaint := &model.Complaint{
			ID:            types.ComplaintID(doc.ID),
			Timestamp:     doc.Timestamp,
			Name:          doc.Name,
			Email:         doc.Email,
			Category:      doc.Category,
			Municipality:  doc.Municipality,
			Severity:      doc.Severity,
			SeverityScore: model.NoScore(),
			Description:   doc.Description,
			Status:        types.ComplaintStatus(doc.Status),
		}
		if doc.SeverityScore != nil {
			complaint.SeverityScore = model.Score(*doc.SeverityScore)
		}
		complaints = append(complaints, complaint)
	}

	return complaints, nil
}

// Close closes the Firestore client
func (f *Firestore) Close() error {
	return f.client.Close()
}
