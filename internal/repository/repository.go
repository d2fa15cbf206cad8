// Package repository declares the storage interfaces the service layer
// depends on, plus the typed filter for drive listing. The mongodb
// subpackage provides the production implementation; tests substitute
// in-memory fakes.
package repository

import (
	"context"

	"github.com/placementcell/drivetrack/internal/model"
)

// UserRepository owns identity records.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

// DriveRepository owns drive records.
type DriveRepository interface {
	Create(ctx context.Context, drive *model.Drive) error
	GetByID(ctx context.Context, id string) (*model.Drive, error)
	List(ctx context.Context, filter DriveFilter) ([]model.Drive, error)
	Update(ctx context.Context, drive *model.Drive) error
	Delete(ctx context.Context, id string) error
}

// DriveFilter enumerates the optional list predicates. The zero value
// matches all records; each set field adds exactly one predicate:
//
//   - string fields: case-insensitive literal substring match
//     (HRDetail matches any element of the hrDetails array)
//   - Status, DateCreated, DateUpdated: exact match
//   - TotalParticipated / TotalPlaced: any element of the nested
//     closing-details collection with the given value; when both are set
//     the same element must satisfy both
//
// Pointer fields distinguish "absent" from a zero value — absence means the
// predicate is omitted, never "match zero".
type DriveFilter struct {
	CompanyName string
	HRDetail    string
	CoodName    string
	PhoneNumber string
	Status      *int
	DateCreated string
	DateUpdated string

	TotalParticipated *int
	TotalPlaced       *int
}
