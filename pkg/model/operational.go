package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

type Environment string

const (
	EnvDev     Environment = "dev"
	EnvTest    Environment = "test"
	EnvStaging Environment = "staging"
	EnvProd    Environment = "prod"
)

// Validate checks if the environment is one of the known tiers
func (e Environment) Validate() error {
	switch e {
	case EnvDev, EnvTest, EnvStaging, EnvProd:
		return nil
	default:
		return goerr.Wrap(ErrInvalidEnvironment, "unknown environment", goerr.V("environment", e))
	}
}

// OperationalRecord is a structured incident report.
type OperationalRecord struct {
	IncidentID        string      `json:"incidentId"`
	Timestamp         int64       `json:"timestamp"`
	Symptoms          []string    `json:"symptoms"`
	RootCause         string      `json:"rootCause,omitempty"`
	Resolution        string      `json:"resolution,omitempty"`
	Environment       Environment `json:"environment"`
	AffectedResources []string    `json:"affectedResources,omitempty"`
	DiagnosticSteps   []string    `json:"diagnosticSteps,omitempty"`
	Tags              []string    `json:"tags,omitempty"`
	Domain            string      `json:"domain"`
}

// Validate checks required fields before any write happens
func (r *OperationalRecord) Validate() error {
	if r.IncidentID == "" {
		return goerr.Wrap(ErrInvalidRecord, "incidentId is required")
	}
	if len(r.Symptoms) == 0 {
		return goerr.Wrap(ErrInvalidRecord, "at least one symptom is required",
			goerr.V("incident_id", r.IncidentID))
	}
	if err := r.Environment.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidRecord, "environment validation failed",
			goerr.V("incident_id", r.IncidentID), goerr.V("environment", r.Environment))
	}
	return nil
}

// MemoryID returns the derived identifier of the record. Valid only after
// the timestamp has been stamped.
func (r *OperationalRecord) MemoryID() MemoryID {
	return NewMemoryID(r.IncidentID, r.Timestamp)
}

// Document renders the record as the text that gets embedded and indexed.
func (r *OperationalRecord) Document() string {
	var b strings.Builder
	b.WriteString("Symptoms: ")
	b.WriteString(strings.Join(r.Symptoms, "; "))
	if r.RootCause != "" {
		b.WriteString("\nRoot cause: ")
		b.WriteString(r.RootCause)
	}
	if r.Resolution != "" {
		b.WriteString("\nResolution: ")
		b.WriteString(r.Resolution)
	}
	return b.String()
}
