package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/placementcell/drivetrack/internal/apperror"
	"github.com/placementcell/drivetrack/internal/model"
	"github.com/placementcell/drivetrack/internal/repository"
)

var _ repository.DriveRepository = (*DriveRepo)(nil)

// DriveRepo implements repository.DriveRepository on the `drives` collection.
type DriveRepo struct {
	db *DB
}

// NewDriveRepo creates a DriveRepo over an open handle.
func NewDriveRepo(db *DB) *DriveRepo {
	return &DriveRepo{db: db}
}

// Create inserts a drive and fills in the generated document ID.
func (r *DriveRepo) Create(ctx context.Context, drive *model.Drive) error {
	res, err := r.db.drives.InsertOne(ctx, drive)
	if err != nil {
		return fmt.Errorf("mongodb: creating drive: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		drive.ID = oid
	}

	return nil
}

// GetByID fetches a drive by its hex document ID.
func (r *DriveRepo) GetByID(ctx context.Context, id string) (*model.Drive, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.NotFound("Drive")
	}

	var drive model.Drive
	err = r.db.drives.FindOne(ctx, bson.M{"_id": oid}).Decode(&drive)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("Drive")
		}
		return nil, fmt.Errorf("mongodb: getting drive %s: %w", id, err)
	}

	return &drive, nil
}

// List returns the drives matching the filter. The filter is translated to
// bson here and applied as a read-only query.
func (r *DriveRepo) List(ctx context.Context, filter repository.DriveFilter) ([]model.Drive, error) {
	cursor, err := r.db.drives.Find(ctx, buildDriveFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing drives: %w", err)
	}

	drives := []model.Drive{}
	if err := cursor.All(ctx, &drives); err != nil {
		return nil, fmt.Errorf("mongodb: decoding drives: %w", err)
	}

	return drives, nil
}

// Update replaces the stored document with the merged drive the service
// validated. MatchedCount 0 means the id no longer names a document.
func (r *DriveRepo) Update(ctx context.Context, drive *model.Drive) error {
	res, err := r.db.drives.ReplaceOne(ctx, bson.M{"_id": drive.ID}, drive)
	if err != nil {
		return fmt.Errorf("mongodb: updating drive %s: %w", drive.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound("Drive")
	}

	return nil
}

// Delete removes a drive by its hex document ID.
func (r *DriveRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.NotFound("Drive")
	}

	res, err := r.db.drives.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongodb: deleting drive %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("Drive")
	}

	return nil
}

// buildDriveFilter translates the typed filter into a bson query. Each set
// field contributes exactly one predicate; an empty filter yields an empty
// document, which matches every drive.
func buildDriveFilter(f repository.DriveFilter) bson.M {
	query := bson.M{}

	if f.CompanyName != "" {
		query["companyName"] = substring(f.CompanyName)
	}
	if f.HRDetail != "" {
		query["hrDetails"] = bson.M{"$elemMatch": bson.M{"$regex": substring(f.HRDetail)}}
	}
	if f.CoodName != "" {
		query["coodName"] = substring(f.CoodName)
	}
	if f.PhoneNumber != "" {
		query["phoneNumber"] = substring(f.PhoneNumber)
	}
	if f.Status != nil {
		query["status"] = *f.Status
	}
	if f.DateCreated != "" {
		query["dateCreated"] = f.DateCreated
	}
	if f.DateUpdated != "" {
		query["dateUpdated"] = f.DateUpdated
	}

	// Both totals land in one $elemMatch so a single closing-details element
	// must satisfy every supplied condition.
	elem := bson.M{}
	if f.TotalParticipated != nil {
		elem["totalParticipated"] = *f.TotalParticipated
	}
	if f.TotalPlaced != nil {
		elem["totalPlaced"] = *f.TotalPlaced
	}
	if len(elem) > 0 {
		query["driveClosingDetails.closingDetails"] = bson.M{"$elemMatch": elem}
	}

	return query
}

// substring builds a case-insensitive literal substring predicate. The
// input is regex-quoted so metacharacters in query params match literally.
func substring(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}
