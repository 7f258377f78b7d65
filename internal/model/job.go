package model

type CredentialKind string

const (
	CredentialServiceAccount CredentialKind = "service_account"
	CredentialAdminOAuth     CredentialKind = "admin_oauth"
)

// SyncJob is the queued request for one orchestration run. The SyncID is
// allocated by the enqueuer so the caller can poll before the worker picks
// the job up.
type SyncJob struct {
	SyncID         string         `json:"sync_id"`
	Scope          SyncScope      `json:"scope"`
	InitiatorEmail string         `json:"initiator_email"`
	InitiatorRole  string         `json:"initiator_role"`
	Credential     CredentialKind `json:"credential"`
	AccessToken    string         `json:"access_token,omitempty"`
	RefreshToken   string         `json:"refresh_token,omitempty"`
}

type SyncRequest struct {
	Scope        string `json:"scope" binding:"required"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type IngestionJob struct {
	FileID int64  `json:"file_id"`
	S3Path string `json:"s3_path"`
}
