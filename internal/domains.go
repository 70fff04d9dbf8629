package internal

// Support domains routed to the backend with every chat request.
const (
	DomainGeneral   = "general"
	DomainTechnical = "technical"
	DomainFinance   = "finance"
	DomainTravel    = "travel"
	DomainAdmin     = "admin"
)

var domainLabels = map[string]string{
	DomainGeneral:   "General Customer Support",
	DomainTechnical: "Technical Support",
	DomainFinance:   "Finance",
	DomainTravel:    "Travel Support",
	DomainAdmin:     "Admin Dashboard",
}

// DomainLabel returns the display label for a support domain.
func DomainLabel(domain string) string {
	if label, ok := domainLabels[domain]; ok {
		return label
	}
	return "Support Chat"
}

// ValidDomain reports whether the given domain is one the backend knows.
func ValidDomain(domain string) bool {
	_, ok := domainLabels[domain]
	return ok
}
