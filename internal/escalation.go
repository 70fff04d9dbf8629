package internal

// CaseStatusEscalated is the one status token that signals escalation.
const CaseStatusEscalated = "escalated"

// EscalationRequestMessage is the canonical text sent when the user asks
// for a human agent.
const EscalationRequestMessage = "I need immediate human agent support. Please escalate this case now."

// DetectEscalation inspects a chat response for an escalation signal.
// Only the exact recognized status token counts; any other value, or an
// absent field, means no escalation. The returned case id accompanies an
// escalation only. Escalation is orthogonal to read-only state: an
// escalated conversation still accepts input.
func DetectEscalation(resp *ChatResponse) (escalated bool, caseID string) {
	if resp == nil {
		return false, ""
	}
	if resp.CaseStatus == CaseStatusEscalated {
		return true, resp.CaseID
	}
	return false, ""
}
