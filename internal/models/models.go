// Package models defines the core domain types for sailboard.
//
// The task and tenant types mirror the identity-governance API payloads.
// Every field the API may omit is a pointer or a nil-able collection;
// callers must never assume presence.
package models

import "time"

// Task is a task-status record as returned by the task-status API.
type Task struct {
	ID                    string                 `json:"id"`
	Type                  *string                `json:"type,omitempty"`
	UniqueName            *string                `json:"uniqueName,omitempty"`
	Description           *string                `json:"description,omitempty"`
	ParentName            *string                `json:"parentName,omitempty"`
	Launcher              *string                `json:"launcher,omitempty"`
	Target                *Target                `json:"target,omitempty"`
	Created               *string                `json:"created,omitempty"`
	Modified              *string                `json:"modified,omitempty"`
	Launched              *string                `json:"launched,omitempty"`
	Completed             *string                `json:"completed,omitempty"`
	CompletionStatus      *string                `json:"completionStatus,omitempty"`
	PercentComplete       *int                   `json:"percentComplete,omitempty"`
	Messages              []TaskMessage          `json:"messages,omitempty"`
	Returns               []TaskReturn           `json:"returns,omitempty"`
	Attributes            map[string]any         `json:"attributes,omitempty"`
	TaskDefinitionSummary *TaskDefinitionSummary `json:"taskDefinitionSummary,omitempty"`
}

// Target is the object a task operated on (a source, an identity profile...).
type Target struct {
	ID   *string `json:"id,omitempty"`
	Type *string `json:"type,omitempty"`
	Name *string `json:"name,omitempty"`
}

// TaskReturn names an attribute that carries one of the task's results.
type TaskReturn struct {
	DisplayLabel  string `json:"displayLabel,omitempty"`
	AttributeName string `json:"attributeName"`
}

// TaskMessage is an informational, warning or error message attached to a task.
type TaskMessage struct {
	Type          string         `json:"type,omitempty"`
	Key           string         `json:"key,omitempty"`
	LocalizedText *LocalizedText `json:"localizedText,omitempty"`
}

// LocalizedText is a message rendered for one locale.
type LocalizedText struct {
	Locale  string `json:"locale,omitempty"`
	Message string `json:"message"`
}

// TaskDefinitionSummary describes the definition a task was launched from.
type TaskDefinitionSummary struct {
	ID          string  `json:"id,omitempty"`
	UniqueName  string  `json:"uniqueName"`
	Description *string `json:"description,omitempty"`
	ParentName  *string `json:"parentName,omitempty"`
	Executor    *string `json:"executor,omitempty"`
}

// Tenant is the tenant descriptor returned by the tenant API.
type Tenant struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	FullName    string    `json:"fullName"`
	Pod         string    `json:"pod"`
	Region      string    `json:"region"`
	Description string    `json:"description,omitempty"`
	Products    []Product `json:"products,omitempty"`
}

// Product is one licensed product on a tenant.
type Product struct {
	ProductName    string         `json:"productName"`
	URL            string         `json:"url,omitempty"`
	ExtendedRegion string         `json:"extendedRegion,omitempty"`
	APIURL         string         `json:"apiUrl,omitempty"`
	OrgType        string         `json:"orgType,omitempty"`
	ProductRight   string         `json:"productRight,omitempty"`
	Zone           string         `json:"zone,omitempty"`
	Status         string         `json:"status,omitempty"`
	DateCreated    string         `json:"dateCreated,omitempty"`
	LastUpdated    string         `json:"lastUpdated,omitempty"`
	Attributes     map[string]any `json:"attributes,omitempty"`
}

// TaskSnapshot is one fetched page of task-status records.
type TaskSnapshot struct {
	ID        string    `json:"id"`
	Connector string    `json:"connector"`
	FetchedAt time.Time `json:"fetched_at"`
	Tasks     []Task    `json:"tasks"`
}

// TenantSnapshot is one fetched tenant descriptor.
type TenantSnapshot struct {
	ID        string    `json:"id"`
	Connector string    `json:"connector"`
	FetchedAt time.Time `json:"fetched_at"`
	Tenant    Tenant    `json:"tenant"`
}

// FetchRecord is an audit entry for one call to the upstream API.
type FetchRecord struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	InputsHash string    `json:"inputs_hash"`
	Outcome    string    `json:"outcome"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Fetch outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)
