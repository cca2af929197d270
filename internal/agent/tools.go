package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"medicai/internal/llm"
	"medicai/pkg"
)

// Tool names as exposed to the model.
const (
	toolGetPatientBrief      = "get_patient_brief"
	toolAddConsultationNotes = "add_consultation_notes"
	toolListRecentPatients   = "list_recent_patients"
	toolUpdatePatientMemory  = "update_patient_memory"
)

// toolDefinitions describes the four tool operations to the model.  The
// schemas mirror the operations' Go signatures; the identifier parameter is
// always the caller's literal reference, numeric ID or name fragment.
func toolDefinitions() []llm.Tool {
	identifier := map[string]any{
		"type":        "string",
		"description": "Patient ID (number) or patient name fragment",
	}
	return []llm.Tool{
		{
			Name:        toolGetPatientBrief,
			Description: "Get a comprehensive patient brief for consultation preparation.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"patient_identifier": identifier,
				},
				"required": []string{"patient_identifier"},
			},
		},
		{
			Name:        toolAddConsultationNotes,
			Description: "Add consultation notes for a patient.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"patient_identifier": identifier,
					"doctor_name": map[string]any{
						"type":        "string",
						"description": "Name of the consulting doctor",
					},
					"notes": map[string]any{
						"type":        "string",
						"description": "Consultation notes and observations",
					},
				},
				"required": []string{"patient_identifier", "doctor_name", "notes"},
			},
		},
		{
			Name:        toolListRecentPatients,
			Description: "List recent patients ordered by last consultation date.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        toolUpdatePatientMemory,
			Description: "Record a medication, allergy, preference or consultation for a patient from natural phrasing.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"patient_identifier": identifier,
					"memory_type": map[string]any{
						"type":        "string",
						"description": "Category of the update: medication, allergy, preference or consultation",
					},
					"content": map[string]any{
						"type":        "string",
						"description": "The medication name, allergen, preference text or note content",
					},
					"additional_details": map[string]any{
						"type":        "string",
						"description": "Severity, doctor name or other context",
					},
				},
				"required": []string{"patient_identifier", "memory_type", "content"},
			},
		},
	}
}

// dispatch executes one model-requested tool call and returns the Result to
// feed back as the tool message.  Malformed arguments become error Results
// rather than failing the conversation.
func (a *Agent) dispatch(ctx context.Context, call llm.ToolCall) pkg.Result {
	switch call.Name {
	case toolGetPatientBrief:
		var args struct {
			PatientIdentifier string `json:"patient_identifier"`
		}
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return badArguments(call.Name)
		}
		return a.tools.GetPatientBrief(ctx, args.PatientIdentifier)

	case toolAddConsultationNotes:
		var args struct {
			PatientIdentifier string `json:"patient_identifier"`
			DoctorName        string `json:"doctor_name"`
			Notes             string `json:"notes"`
		}
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return badArguments(call.Name)
		}
		return a.tools.AddConsultationNotes(ctx, args.PatientIdentifier, args.DoctorName, args.Notes)

	case toolListRecentPatients:
		return a.tools.ListRecentPatients(ctx)

	case toolUpdatePatientMemory:
		var args struct {
			PatientIdentifier string `json:"patient_identifier"`
			MemoryType        string `json:"memory_type"`
			Content           string `json:"content"`
			AdditionalDetails string `json:"additional_details"`
		}
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return badArguments(call.Name)
		}
		return a.tools.UpdatePatientMemory(ctx, args.PatientIdentifier, args.MemoryType, args.Content, args.AdditionalDetails)

	default:
		return pkg.Error(fmt.Sprintf("Unknown tool: %s", call.Name))
	}
}

func badArguments(tool string) pkg.Result {
	return pkg.Error(fmt.Sprintf("Invalid arguments for %s", tool))
}
