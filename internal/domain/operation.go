package domain

import "time"

// OperationKind classifies a recorded public operation.
type OperationKind string

const (
	OpDownload           OperationKind = "download"
	OpExtract            OperationKind = "extract"
	OpDownloadAndExtract OperationKind = "download_and_extract"
	OpCleanup            OperationKind = "cleanup"
)

// Operation is one row of the operation history: the structured result of a
// public call, kept for inspection and pruned by the janitor.
type Operation struct {
	ID          int64
	Kind        OperationKind
	Source      string
	Destination string
	MIMEType    string
	Succeeded   bool
	Message     string
	CreatedAt   time.Time
}
