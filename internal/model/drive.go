package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Drive is a recruitment-drive record in the `drives` collection.
//
// CompanyName is normalized (trimmed, lowercased) before it is written.
// DateCreated and DateUpdated are plain date stamps supplied by clients; they
// carry no calendar semantics and are matched exactly when filtering.
type Drive struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	CompanyName         string               `bson:"companyName" json:"companyName"`
	HRDetails           []string             `bson:"hrDetails,omitempty" json:"hrDetails,omitempty"`
	CoodName            string               `bson:"coodName" json:"coodName"`
	PhoneNumber         string               `bson:"phoneNumber" json:"phoneNumber"`
	Status              int                  `bson:"status" json:"status"`
	DateCreated         string               `bson:"dateCreated,omitempty" json:"dateCreated,omitempty"`
	DateUpdated         string               `bson:"dateUpdated,omitempty" json:"dateUpdated,omitempty"`
	DriveDetails        []DriveDetail        `bson:"driveDetails,omitempty" json:"driveDetails,omitempty"`
	DriveClosingDetails []DriveClosingDetail `bson:"driveClosingDetails,omitempty" json:"driveClosingDetails,omitempty"`
}

// DriveDetail is a scheduling entry: a message plus an optional reminder.
type DriveDetail struct {
	Message  string    `bson:"message,omitempty" json:"message,omitempty"`
	Reminder *Reminder `bson:"reminder,omitempty" json:"reminder,omitempty"`
}

// Reminder pairs a due date with the message to send.
type Reminder struct {
	Date            time.Time `bson:"date,omitempty" json:"date,omitempty"`
	ReminderMessage string    `bson:"reminderMessage,omitempty" json:"reminderMessage,omitempty"`
}

// DriveClosingDetail records the outcome of a drive.
type DriveClosingDetail struct {
	ClosingMessage string          `bson:"closingMessage,omitempty" json:"closingMessage,omitempty"`
	ClosingStatus  int             `bson:"closingStatus,omitempty" json:"closingStatus,omitempty"`
	ClosingDetails []ClosingDetail `bson:"closingDetails,omitempty" json:"closingDetails,omitempty"`
}

// ClosingDetail holds placement totals and supporting document links.
type ClosingDetail struct {
	TotalParticipated int      `bson:"totalParticipated,omitempty" json:"totalParticipated,omitempty"`
	TotalPlaced       int      `bson:"totalPlaced,omitempty" json:"totalPlaced,omitempty"`
	LinksToDocs       []string `bson:"linksToDocs,omitempty" json:"linksToDocs,omitempty"`
}
