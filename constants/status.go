package constants

// DocumentStatus is the canonical status stored on a document row.
type DocumentStatus string

// Stable values (store these exact strings in DB).
const (
	DocumentPending    DocumentStatus = "pending"
	DocumentExtracting DocumentStatus = "extracting"
	DocumentExtracted  DocumentStatus = "extracted"
	DocumentFailed     DocumentStatus = "failed"

	// aggregate over the item backlog
	DocumentProcessing DocumentStatus = "processing"
	DocumentProcessed  DocumentStatus = "processed"
	DocumentError      DocumentStatus = "error"
)

var DocumentStatuses = []string{
	string(DocumentPending), string(DocumentExtracting), string(DocumentExtracted), string(DocumentFailed),
	string(DocumentProcessing), string(DocumentProcessed), string(DocumentError),
}

// ItemStatus tracks one line item through normalization and matching.
type ItemStatus string

const (
	ItemPending     ItemStatus = "pending"
	ItemNormalizing ItemStatus = "normalizing"
	ItemNormalized  ItemStatus = "normalized"
	ItemMatching    ItemStatus = "matching"
	ItemSuggested   ItemStatus = "suggested"
	ItemError       ItemStatus = "error"
)

var ItemStatuses = []string{
	string(ItemPending), string(ItemNormalizing), string(ItemNormalized),
	string(ItemMatching), string(ItemSuggested), string(ItemError),
}

// Stage names a pipeline step recorded in the process log.
type Stage string

const (
	StageUpload           Stage = "upload"
	StageTextExtraction   Stage = "textExtraction"
	StageHeaderExtraction Stage = "headerExtraction"
	StageModelExtraction  Stage = "modelExtraction"
	StageNormalization    Stage = "normalization"
	StageMatching         Stage = "matching"
)

var Stages = []string{
	string(StageUpload),
	string(StageTextExtraction),
	string(StageHeaderExtraction),
	string(StageModelExtraction),
	string(StageNormalization),
	string(StageMatching),
}

// LogStatus is the outcome of one stage execution.
type LogStatus string

const (
	LogSuccess LogStatus = "success"
	LogError   LogStatus = "error"
)

var LogStatuses = []string{string(LogSuccess), string(LogError)}

// ProgressStage names a step of a streamed run. It is coarser than Stage for the
// document flow and adds the steps that never produce a process log entry.
type ProgressStage string

const (
	ProgressReceived         ProgressStage = "received"
	ProgressTextExtraction   ProgressStage = "textExtraction"
	ProgressHeaderExtraction ProgressStage = "headerExtraction"
	ProgressModelExtraction  ProgressStage = "modelExtraction"
	ProgressValidation       ProgressStage = "validation"
	ProgressSlug             ProgressStage = "slug"
	ProgressPersistence      ProgressStage = "persistence"
	ProgressItems            ProgressStage = "items"
	ProgressNormalization    ProgressStage = "normalization"
	ProgressMatching         ProgressStage = "matching"
	ProgressComplete         ProgressStage = "complete"
)

// EventStatus is the status carried by a progress event. Only a terminal failure uses
// EventError; recoverable problems are reported as EventWarning.
type EventStatus string

const (
	EventRunning EventStatus = "running"
	EventSuccess EventStatus = "success"
	EventWarning EventStatus = "warning"
	EventError   EventStatus = "error"
)
