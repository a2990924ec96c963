package quote

import "github.com/anthonyhasrouny/portfolio/pkg/models"

func validRequest() models.QuoteRequest {
	return models.QuoteRequest{
		Name:             "Jane Doe",
		Email:            "jane@acme.io",
		ProjectType:      "Landing Page",
		Timeline:         "2 Weeks",
		BudgetRange:      "$300 - $400",
		TargetAudience:   "Small business owners in Beirut",
		MainGoals:        []string{"Generate leads"},
		RequiredFeatures: []string{"Contact form"},
		ContentStatus:    "I need help creating content",
	}
}
