package quote

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/anthonyhasrouny/portfolio/pkg/models"
	"github.com/anthonyhasrouny/portfolio/pkg/phone"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Rendered is a notification ready to hand to a mailer.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// view is the model both templates render from.
type view struct {
	Name              string
	Email             string
	Phone             string
	Company           string
	CompanyWebsite    string
	ProjectType       string
	ProjectTypeOther  string
	Timeline          string
	BudgetRange       string
	TargetAudience    string
	MainGoals         []string
	MainGoalsOther    string
	Features          []string
	FeaturesOther     string
	DesignPreferences string
	ContentStatus     string
	AdditionalInfo    string
	SiteURL           string
}

// Renderer produces the owner notification for an accepted quote request.
// User text reaches the HTML body only through html/template, so markup in
// any field is escaped, never interpreted.
type Renderer struct {
	html        *htmltemplate.Template
	text        *texttemplate.Template
	phoneRegion string
	siteURL     string
}

// NewRenderer parses the embedded templates.
func NewRenderer(siteURL, phoneRegion string) (*Renderer, error) {
	html, err := htmltemplate.ParseFS(templateFS, "templates/quote.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse html template: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/quote.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse text template: %w", err)
	}
	return &Renderer{
		html:        html,
		text:        text,
		phoneRegion: phoneRegion,
		siteURL:     siteURL,
	}, nil
}

// Render builds the subject and both bodies for req.
func (r *Renderer) Render(req models.QuoteRequest) (Rendered, error) {
	v := r.viewOf(req)

	var html bytes.Buffer
	if err := r.html.Execute(&html, v); err != nil {
		return Rendered{}, fmt.Errorf("render html body: %w", err)
	}
	var text bytes.Buffer
	if err := r.text.Execute(&text, v); err != nil {
		return Rendered{}, fmt.Errorf("render text body: %w", err)
	}

	return Rendered{
		Subject: Subject(req),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

// Subject returns "New Quote Request: <project type> - <name>". An "Other"
// project type with details reads "Other (<details>)". Line breaks are
// removed so user text cannot add mail headers.
func Subject(req models.QuoteRequest) string {
	projectType := req.ProjectType
	if other := req.OtherProjectType(); other != "" {
		projectType = fmt.Sprintf("%s (%s)", models.OtherOption, other)
	}
	return singleLine(fmt.Sprintf("New Quote Request: %s - %s", projectType, req.Name))
}

func (r *Renderer) viewOf(req models.QuoteRequest) view {
	return view{
		Name:              req.Name,
		Email:             req.Email,
		Phone:             phone.Normalize(req.Phone, r.phoneRegion),
		Company:           req.Company,
		CompanyWebsite:    req.CompanyWebsite,
		ProjectType:       req.ProjectType,
		ProjectTypeOther:  req.OtherProjectType(),
		Timeline:          req.Timeline,
		BudgetRange:       req.BudgetRange,
		TargetAudience:    req.TargetAudience,
		MainGoals:         req.MainGoals,
		MainGoalsOther:    req.OtherGoals(),
		Features:          req.RequiredFeatures,
		FeaturesOther:     req.OtherFeatures(),
		DesignPreferences: req.DesignPreferences,
		ContentStatus:     req.ContentStatus,
		AdditionalInfo:    req.AdditionalInfo,
		SiteURL:           r.siteURL,
	}
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func singleLine(s string) string {
	return strings.Join(strings.Fields(lineBreaks.Replace(s)), " ")
}
