package model

import "time"

type FileStatus string

const (
	FileStatusUploaded   FileStatus = "UPLOADED"
	FileStatusParsedOK   FileStatus = "PARSED_OK"
	FileStatusParsedFail FileStatus = "PARSED_FAIL"
)

// UploadFile tracks one bulk roster spreadsheet through the ingestion
// pipeline.
type UploadFile struct {
	ID           int64      `json:"id" db:"id"`
	S3Path       string     `json:"s3_path" db:"s3_path"`
	UploadedBy   string     `json:"uploaded_by" db:"uploaded_by"`
	Status       FileStatus `json:"status" db:"status"`
	ErrorMessage *string    `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// AccountRow is one parsed spreadsheet row from a bulk upload.
type AccountRow struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Role       string `json:"role"`
	District   string `json:"district"`
	Grade      string `json:"grade"`
	SchoolName string `json:"school_name"`
}
