package internal

import (
	"testing"
)

func TestDetectEscalation(t *testing.T) {
	tests := []struct {
		name          string
		resp          *ChatResponse
		wantEscalated bool
		wantCaseID    string
	}{
		{
			name:          "escalated with case id",
			resp:          &ChatResponse{CaseStatus: "escalated", CaseID: "X"},
			wantEscalated: true,
			wantCaseID:    "X",
		},
		{
			name:          "empty response",
			resp:          &ChatResponse{},
			wantEscalated: false,
			wantCaseID:    "",
		},
		{
			name:          "open status",
			resp:          &ChatResponse{CaseStatus: "open"},
			wantEscalated: false,
			wantCaseID:    "",
		},
		{
			name:          "unrecognized status with case id",
			resp:          &ChatResponse{CaseStatus: "resolved", CaseID: "Y"},
			wantEscalated: false,
			wantCaseID:    "",
		},
		{
			name:          "case-sensitive exact match only",
			resp:          &ChatResponse{CaseStatus: "Escalated", CaseID: "Z"},
			wantEscalated: false,
			wantCaseID:    "",
		},
		{
			name:          "nil response",
			resp:          nil,
			wantEscalated: false,
			wantCaseID:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			escalated, caseID := DetectEscalation(tt.resp)
			if escalated != tt.wantEscalated {
				t.Errorf("DetectEscalation() escalated = %v, want %v", escalated, tt.wantEscalated)
			}
			if caseID != tt.wantCaseID {
				t.Errorf("DetectEscalation() caseID = %q, want %q", caseID, tt.wantCaseID)
			}
		})
	}
}
