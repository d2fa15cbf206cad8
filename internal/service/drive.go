package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/placementcell/drivetrack/internal/apperror"
	"github.com/placementcell/drivetrack/internal/model"
	"github.com/placementcell/drivetrack/internal/repository"
)

// DriveService owns the drive CRUD rules.
type DriveService struct {
	drives repository.DriveRepository
	logger *slog.Logger
}

// NewDriveService creates a DriveService with an injected repository.
func NewDriveService(drives repository.DriveRepository, logger *slog.Logger) *DriveService {
	return &DriveService{drives: drives, logger: logger}
}

// DriveInput is the creation payload. Status is a pointer so a missing
// status is distinguishable from status 0.
type DriveInput struct {
	CompanyName         string                     `json:"companyName"`
	HRDetails           []string                   `json:"hrDetails"`
	CoodName            string                     `json:"coodName"`
	PhoneNumber         string                     `json:"phoneNumber"`
	Status              *int                       `json:"status"`
	DateCreated         string                     `json:"dateCreated"`
	DateUpdated         string                     `json:"dateUpdated"`
	DriveDetails        []model.DriveDetail        `json:"driveDetails"`
	DriveClosingDetails []model.DriveClosingDetail `json:"driveClosingDetails"`
}

// DrivePatch is the partial-update payload. Nil fields are left untouched
// on the stored document; set fields replace the stored values wholesale.
type DrivePatch struct {
	CompanyName         *string                     `json:"companyName"`
	HRDetails           *[]string                   `json:"hrDetails"`
	CoodName            *string                     `json:"coodName"`
	PhoneNumber         *string                     `json:"phoneNumber"`
	Status              *int                        `json:"status"`
	DateCreated         *string                     `json:"dateCreated"`
	DateUpdated         *string                     `json:"dateUpdated"`
	DriveDetails        *[]model.DriveDetail        `json:"driveDetails"`
	DriveClosingDetails *[]model.DriveClosingDetail `json:"driveClosingDetails"`
}

// Create validates and stores a new drive.
//
// hrDetails intentionally has no minimum size: the legacy schema declared
// one for the array but the engine never enforced it, and enforcing it would
// reject every drive created through this flow.
func (s *DriveService) Create(ctx context.Context, in DriveInput) (*model.Drive, error) {
	drive := &model.Drive{
		CompanyName:         strings.ToLower(strings.TrimSpace(in.CompanyName)),
		HRDetails:           in.HRDetails,
		CoodName:            strings.TrimSpace(in.CoodName),
		PhoneNumber:         strings.TrimSpace(in.PhoneNumber),
		DateCreated:         in.DateCreated,
		DateUpdated:         in.DateUpdated,
		DriveDetails:        in.DriveDetails,
		DriveClosingDetails: in.DriveClosingDetails,
	}

	if in.Status == nil {
		return nil, apperror.ValidationFailed("status", "status is required")
	}
	drive.Status = *in.Status

	if err := validateDrive(drive); err != nil {
		return nil, err
	}

	if err := s.drives.Create(ctx, drive); err != nil {
		s.logger.Error("failed to create drive",
			slog.String("companyName", drive.CompanyName),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating drive: %w", err)
	}

	s.logger.Info("drive created",
		slog.String("id", drive.ID.Hex()),
		slog.String("companyName", drive.CompanyName),
	)

	return drive, nil
}

// GetByID retrieves a drive. Unknown ids surface as not-found.
func (s *DriveService) GetByID(ctx context.Context, id string) (*model.Drive, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "drive ID is required")
	}

	return s.drives.GetByID(ctx, id)
}

// List returns the drives matching the typed filter. Read-only.
func (s *DriveService) List(ctx context.Context, filter repository.DriveFilter) ([]model.Drive, error) {
	drives, err := s.drives.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list drives", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing drives: %w", err)
	}

	return drives, nil
}

// Update applies a partial merge: fetch the stored drive, overlay the set
// patch fields, re-validate the merged document, then persist it. A merge
// that fails validation leaves the stored document unchanged.
func (s *DriveService) Update(ctx context.Context, id string, patch DrivePatch) (*model.Drive, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "drive ID is required")
	}

	drive, err := s.drives.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.CompanyName != nil {
		drive.CompanyName = strings.ToLower(strings.TrimSpace(*patch.CompanyName))
	}
	if patch.HRDetails != nil {
		drive.HRDetails = *patch.HRDetails
	}
	if patch.CoodName != nil {
		drive.CoodName = strings.TrimSpace(*patch.CoodName)
	}
	if patch.PhoneNumber != nil {
		drive.PhoneNumber = strings.TrimSpace(*patch.PhoneNumber)
	}
	if patch.Status != nil {
		drive.Status = *patch.Status
	}
	if patch.DateCreated != nil {
		drive.DateCreated = *patch.DateCreated
	}
	if patch.DateUpdated != nil {
		drive.DateUpdated = *patch.DateUpdated
	}
	if patch.DriveDetails != nil {
		drive.DriveDetails = *patch.DriveDetails
	}
	if patch.DriveClosingDetails != nil {
		drive.DriveClosingDetails = *patch.DriveClosingDetails
	}

	if err := validateDrive(drive); err != nil {
		return nil, err
	}

	if err := s.drives.Update(ctx, drive); err != nil {
		return nil, err
	}

	s.logger.Info("drive updated", slog.String("id", drive.ID.Hex()))

	return drive, nil
}

// Delete removes a drive by id.
func (s *DriveService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "drive ID is required")
	}

	if err := s.drives.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("drive deleted", slog.String("id", id))
	return nil
}

// validateDrive checks the document-level constraints. It runs on freshly
// built drives and on merged documents during update, so both paths enforce
// the same rules.
func validateDrive(d *model.Drive) error {
	err := validation.ValidateStruct(d,
		validation.Field(&d.CompanyName, validation.Required, validation.Length(3, 50)),
		validation.Field(&d.CoodName, validation.Required, validation.Length(1, 50)),
		validation.Field(&d.PhoneNumber, validation.Required, validation.Length(1, 50)),
	)
	if err != nil {
		return invalidInput(err)
	}
	return nil
}
