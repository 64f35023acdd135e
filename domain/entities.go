// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package domain

import "time"

// Classification is a data sensitivity ceiling, lowest (I) to highest (IV).
type Classification int

const (
	ClassificationI Classification = iota + 1
	ClassificationII
	ClassificationIII
	ClassificationIV
)

// Role is a Principal's authorization role.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// Tenant is the isolation root. The core never deletes a Tenant; it can
// only be soft-disabled.
type Tenant struct {
	ID        string
	Name      string
	Disabled  bool
	CreatedAt time.Time
}

// Principal is an authenticated caller bound to exactly one tenant.
// Immutable within a single request.
type Principal struct {
	ID            string
	TenantID      string
	Role          Role
	Domains       []string // finance, operations, safety, ...
	MFAVerified   bool
	DisplayName   string
}

// HasDomain reports whether the principal belongs to the given domain
// membership.
func (p Principal) HasDomain(domain string) bool {
	for _, d := range p.Domains {
		if d == domain {
			return true
		}
	}
	return false
}

// MessageRole identifies the speaker of a Message.
type MessageRole string

const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleTool      MessageRole = "tool"
)

// Conversation is an append-only log of turns between a principal and
// the agent system.
type Conversation struct {
	ID               string
	TenantID         string
	OwnerPrincipalID string
	Title            string
	Ceiling          Classification
	ParentGoalID     string // optional
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int // optimistic concurrency token
}

// ReasoningPhaseRecord captures one phase of the reasoning pipeline
// (§4.6) as it executed for a single Message.
type ReasoningPhaseRecord struct {
	Phase     string // observe | think | verify | learn
	StartedAt time.Time
	EndedAt   time.Time
	Summary   string
	Err       string // non-empty if the phase failed
}

// ChunkReference is a citation pointing at a retrieved DocumentChunk.
type ChunkReference struct {
	ChunkID    string
	DocumentID string
	Score      float64
}

// Message is one turn within a Conversation. Messages within a
// conversation are totally ordered by CreatedAt, tie-broken by ID.
type Message struct {
	ID             string
	ConversationID string
	Role           MessageRole
	Content        string
	TokenCount     int
	Citations      []ChunkReference
	Reasoning      []ReasoningPhaseRecord
	ModelUsed      string
	FinishReason   string
	CreatedAt      time.Time
}

// DocumentStatus is the ingestion lifecycle state of a Document.
type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusIndexed    DocumentStatus = "indexed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// DocumentVersion is a major.minor version pair. Every ninth minor
// increment rolls to the next major (§3).
type DocumentVersion struct {
	Major int
	Minor int
}

// Next returns the version following this one under the roll-up rule:
// every ninth minor increment advances the major and resets minor to 0.
func (v DocumentVersion) Next() DocumentVersion {
	if v.Minor+1 >= 9 {
		return DocumentVersion{Major: v.Major + 1, Minor: 0}
	}
	return DocumentVersion{Major: v.Major, Minor: v.Minor + 1}
}

// Document is a tenant-owned ingested artifact.
type Document struct {
	ID             string
	TenantID       string
	Filename       string
	MimeType       string
	Classification Classification
	SourceMetadata map[string]string
	Version        DocumentVersion
	Status         DocumentStatus
	FeedbackScore  int64 // running signed counter
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DocumentChunk is an indexed fragment of a Document. Its TenantID must
// equal its document's TenantID; deleting a Document cascades to its
// chunks.
type DocumentChunk struct {
	ID         string
	DocumentID string
	TenantID   string
	Ordinal    int
	Text       string
	TokenCount int
	Embedding  []float32
	Metadata   map[string]string
	CreatedAt  time.Time
}

// MemoryScope is the level at which a Memory applies.
type MemoryScope string

const (
	MemoryScopeUser       MemoryScope = "user"
	MemoryScopeAgent      MemoryScope = "agent"
	MemoryScopeDepartment MemoryScope = "department"
	MemoryScopePlant      MemoryScope = "plant"
)

// MemoryKind classifies the nature of a learned fact.
type MemoryKind string

const (
	MemoryKindFact       MemoryKind = "FACT"
	MemoryKindPreference MemoryKind = "PREFERENCE"
	MemoryKindSkill      MemoryKind = "SKILL"
	MemoryKindContext    MemoryKind = "CONTEXT"
	MemoryKindEpisodic   MemoryKind = "EPISODIC"
)

// Memory is a learned fact about a principal, agent, department, or
// plant. Importance decays over time when unaccessed and is bumped on
// each retrieval hit.
type Memory struct {
	ID            string
	Scope         MemoryScope
	ScopeID       string
	TenantID      string
	Kind          MemoryKind
	Content       string
	Provenance    string // how this memory was derived, e.g. "extract:conversation:<id>"
	Importance    float64
	Embedding     []float32
	AccessCount   int64
	ExpiresAt     *time.Time
	CreatedAt     time.Time
	LastAccessed  time.Time
}

// GoalStatus is the lifecycle state of a Goal.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusAbandoned GoalStatus = "abandoned"
)

// ProgressNote is one timestamped update against a Goal.
type ProgressNote struct {
	At   time.Time
	Note string
}

// Goal is a persistent objective, optionally nested under a parent
// goal. Progress roll-up from child to parent is computed on read, not
// stored.
type Goal struct {
	ID           string
	Scope        MemoryScope
	ScopeID      string
	TenantID     string
	Category     string
	Priority     int
	Description  string
	Status       GoalStatus
	Progress     []ProgressNote
	Deadline     *time.Time
	ParentGoalID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BudgetPeriod is the reset cadence of a Budget.
type BudgetPeriod string

const (
	BudgetPeriodDaily   BudgetPeriod = "daily"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
)

// Budget is a per-tenant token ledger for one model tier and period.
// Consumed <= Limit is enforced by the model router except within a
// bounded atomicity window (§5).
type Budget struct {
	TenantID  string
	Period    BudgetPeriod
	ModelTier string
	Limit     int64
	Consumed  int64
	ResetsAt  time.Time
}

// Remaining returns the unconsumed portion of the budget, floored at 0.
func (b Budget) Remaining() int64 {
	if b.Consumed >= b.Limit {
		return 0
	}
	return b.Limit - b.Consumed
}

// RiskLevel is the blast-radius classification of a WriteOperation.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// WriteOperationState is a state in the approval state machine (§4.7).
type WriteOperationState string

const (
	WriteStateProposed   WriteOperationState = "PROPOSED"
	WriteStateApproved   WriteOperationState = "APPROVED"
	WriteStateRejected   WriteOperationState = "REJECTED"
	WriteStateTimedOut   WriteOperationState = "TIMED_OUT"
	WriteStateExecuted   WriteOperationState = "EXECUTED"
	WriteStateFailed     WriteOperationState = "FAILED"
	WriteStateRolledBack WriteOperationState = "ROLLED_BACK"
)

// WriteOperation is a pending or past write against an external system,
// gated by the write gateway's approval state machine.
type WriteOperation struct {
	ID                   string
	TenantID             string
	RequestingPrincipal  string
	Connector            string
	Operation            string
	Parameters           map[string]interface{}
	Risk                 RiskLevel
	Rationale            string
	State                WriteOperationState
	ApproverPrincipal    string
	ApprovalReason       string
	RequestedAt          time.Time
	DeadlineAt           time.Time
	ResultPayload        map[string]interface{}
	RollbackHandle       string
}

// ApprovalRequest is the observable front of a WriteOperation exposed
// to the approval transport. It shares the WriteOperation's identifier
// and surfaces only the fields an approver needs to decide.
type ApprovalRequest struct {
	ID          string
	TenantID    string
	Connector   string
	Operation   string
	Parameters  map[string]interface{}
	Risk        RiskLevel
	Rationale   string
	RequestedAt time.Time
	DeadlineAt  time.Time
}

// FromWriteOperation projects a WriteOperation onto its ApprovalRequest
// view.
func FromWriteOperation(op WriteOperation) ApprovalRequest {
	return ApprovalRequest{
		ID:          op.ID,
		TenantID:    op.TenantID,
		Connector:   op.Connector,
		Operation:   op.Operation,
		Parameters:  op.Parameters,
		Risk:        op.Risk,
		Rationale:   op.Rationale,
		RequestedAt: op.RequestedAt,
		DeadlineAt:  op.DeadlineAt,
	}
}

// AuditEntry is an append-only, insert-only record of one event. The
// core's repository contract exposes insert capability only.
type AuditEntry struct {
	ID               string
	TenantID         string
	PrincipalID      string
	EventKind        string
	ResourceKind     string
	ResourceID       string
	ModelUsed        string
	ToolInvocations  []string
	RequestFingerprint string
	ResultStatus     string
	LatencyMS        float64
	Metadata         map[string]interface{}
	CreatedAt        time.Time
}
