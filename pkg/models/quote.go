package models

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// OtherOption is the sentinel label that unlocks a free-text elaboration.
const OtherOption = "Other"

// Closed label sets accepted by the quote form.
var (
	ProjectTypes = []string{
		"New Website",
		"Website Redesign",
		"Web Application",
		"E-commerce Store",
		"Landing Page",
		OtherOption,
	}

	Timelines = []string{"ASAP", "1 Week", "2 Weeks", "3 Weeks", "Flexible"}

	BudgetRanges = []string{
		"$100 - $200",
		"$300 - $400",
		"$400 - $600",
		"Not Sure Yet",
	}

	MainGoals = []string{
		"Generate leads",
		"Sell products/services",
		"Build brand awareness",
		"Provide information",
		"User engagement/community",
		OtherOption,
	}

	RequiredFeatures = []string{
		"Contact form",
		"Blog/News section",
		"E-commerce/Shopping cart",
		"User login/accounts",
		"Payment processing",
		"Search functionality",
		"Multi-language support",
		"Content Management System (CMS)",
		"Email newsletter integration",
		"Social media integration",
		"Analytics/Reporting",
		"Mobile app integration",
		OtherOption,
	}

	ContentStatuses = []string{
		"I will provide all content (text, images)",
		"I need help creating content",
		"Partially - I'll provide some content",
	}
)

// QuoteRequest represents a project inquiry submitted from the quote form.
// It is built once per submission, validated, handed to the mailer and discarded.
type QuoteRequest struct {
	// Basic information
	Name           string `json:"name" validate:"required,min=2,max=100"`
	Email          string `json:"email" validate:"required,max=255,basic_email"`
	Phone          string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Company        string `json:"company,omitempty" validate:"omitempty,max=100"`
	CompanyWebsite string `json:"companyWebsite,omitempty" validate:"omitempty,max=255,url"`

	// Project
	ProjectType      string `json:"projectType" validate:"required,project_type"`
	ProjectTypeOther string `json:"projectTypeOther,omitempty" validate:"omitempty,max=200"`
	Timeline         string `json:"timeline" validate:"required,timeline"`
	BudgetRange      string `json:"budgetRange" validate:"required,budget_range"`

	// Audience, goals and features
	TargetAudience        string   `json:"targetAudience" validate:"required,min=10,max=500"`
	MainGoals             []string `json:"mainGoals" validate:"required,min=1,unique,dive,main_goal"`
	MainGoalsOther        string   `json:"mainGoalsOther,omitempty" validate:"omitempty,max=200"`
	RequiredFeatures      []string `json:"requiredFeatures" validate:"required,min=1,unique,dive,required_feature"`
	RequiredFeaturesOther string   `json:"requiredFeaturesOther,omitempty" validate:"omitempty,max=200"`

	// Content and extras
	DesignPreferences string `json:"designPreferences,omitempty" validate:"omitempty,max=500"`
	ContentStatus     string `json:"contentStatus" validate:"required,content_status"`
	AdditionalInfo    string `json:"additionalInfo,omitempty" validate:"omitempty,max=500"`
}

// Normalized returns a copy with surrounding whitespace removed from every
// text field and text in Unicode NFC form. The receiver is left untouched.
func (q QuoteRequest) Normalized() QuoteRequest {
	out := q
	out.Name = clean(q.Name)
	out.Email = clean(q.Email)
	out.Phone = clean(q.Phone)
	out.Company = clean(q.Company)
	out.CompanyWebsite = clean(q.CompanyWebsite)
	out.ProjectType = clean(q.ProjectType)
	out.ProjectTypeOther = clean(q.ProjectTypeOther)
	out.Timeline = clean(q.Timeline)
	out.BudgetRange = clean(q.BudgetRange)
	out.TargetAudience = clean(q.TargetAudience)
	out.MainGoals = cleanAll(q.MainGoals)
	out.MainGoalsOther = clean(q.MainGoalsOther)
	out.RequiredFeatures = cleanAll(q.RequiredFeatures)
	out.RequiredFeaturesOther = clean(q.RequiredFeaturesOther)
	out.DesignPreferences = clean(q.DesignPreferences)
	out.ContentStatus = clean(q.ContentStatus)
	out.AdditionalInfo = clean(q.AdditionalInfo)
	return out
}

// OtherProjectType returns the elaboration for an "Other" project type.
func (q QuoteRequest) OtherProjectType() string {
	if q.ProjectType != OtherOption {
		return ""
	}
	return q.ProjectTypeOther
}

// OtherGoals returns the elaboration when "Other" is among the selected goals.
func (q QuoteRequest) OtherGoals() string {
	if !contains(q.MainGoals, OtherOption) {
		return ""
	}
	return q.MainGoalsOther
}

// OtherFeatures returns the elaboration when "Other" is among the selected features.
func (q QuoteRequest) OtherFeatures() string {
	if !contains(q.RequiredFeatures, OtherOption) {
		return ""
	}
	return q.RequiredFeaturesOther
}

// QuoteOptions lists the label sets so a form can render the same choices the API accepts.
type QuoteOptions struct {
	ProjectTypes     []string `json:"projectTypes"`
	Timelines        []string `json:"timelines"`
	BudgetRanges     []string `json:"budgetRanges"`
	MainGoals        []string `json:"mainGoals"`
	RequiredFeatures []string `json:"requiredFeatures"`
	ContentStatuses  []string `json:"contentStatuses"`
}

// DefaultQuoteOptions returns the label sets currently accepted.
func DefaultQuoteOptions() QuoteOptions {
	return QuoteOptions{
		ProjectTypes:     ProjectTypes,
		Timelines:        Timelines,
		BudgetRanges:     BudgetRanges,
		MainGoals:        MainGoals,
		RequiredFeatures: RequiredFeatures,
		ContentStatuses:  ContentStatuses,
	}
}

// clean trims s and composes it to NFC so "é" typed as e + U+0301 counts
// as one character.
func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func cleanAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = clean(s)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
