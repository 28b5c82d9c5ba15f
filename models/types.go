// ABOUTME: Data models for outreach entities
// ABOUTME: Defines Company, Contact, Template, Draft, Email and portfolio structs
package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Company struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Country       string     `db:"country" json:"country"`
	Website       string     `db:"website" json:"website,omitempty"`
	CareerPageURL string     `db:"career_page_url" json:"career_page_url,omitempty"`
	Tags          StringList `db:"tags" json:"tags"`
	Notes         string     `db:"notes" json:"notes,omitempty"`
	Starred       bool       `db:"starred" json:"starred"`
	Archived      bool       `db:"archived" json:"archived"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// IdentityKey is the case-insensitive name+country pair used for dedup.
func (c *Company) IdentityKey() (string, string) {
	return NormalizeKey(c.Name), NormalizeKey(c.Country)
}

type Contact struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	CompanyID       uuid.UUID  `db:"company_id" json:"company_id"`
	Name            string     `db:"name" json:"name"`
	Email           string     `db:"email" json:"email"`
	RoleTitle       string     `db:"role_title" json:"role_title,omitempty"`
	LinkedInURL     string     `db:"linkedin_url" json:"linkedin_url,omitempty"`
	Notes           string     `db:"notes" json:"notes,omitempty"`
	Status          string     `db:"status" json:"status"`
	LastContactedAt *time.Time `db:"last_contacted_at" json:"last_contacted_at,omitempty"`
	Starred         bool       `db:"starred" json:"starred"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// IdentityKey is the lower-cased email, unique across all contacts.
func (c *Contact) IdentityKey() string {
	return NormalizeKey(c.Email)
}

type Template struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Type            string     `db:"type" json:"type"`
	Tone            string     `db:"tone" json:"tone"`
	SubjectTemplate string     `db:"subject_template" json:"subject_template,omitempty"`
	BodyTemplate    string     `db:"body_template" json:"body_template"`
	Variables       StringList `db:"variables" json:"variables"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

type Draft struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	ContactID          uuid.UUID  `db:"contact_id" json:"contact_id"`
	CompanyID          uuid.UUID  `db:"company_id" json:"company_id"`
	Intent             string     `db:"intent" json:"intent"`
	Tone               string     `db:"tone" json:"tone"`
	JobTitle           string     `db:"job_title" json:"job_title,omitempty"`
	JobDescription     string     `db:"job_description" json:"job_description,omitempty"`
	SelectedProjectIDs StringList `db:"selected_project_ids" json:"selected_project_ids"`
	SelectedSkillIDs   StringList `db:"selected_skill_ids" json:"selected_skill_ids"`
	Subject            string     `db:"subject" json:"subject"`
	Body               string     `db:"body" json:"body"`
	ModelUsed          string     `db:"model_used" json:"model_used"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}

type Email struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	ContactID       uuid.UUID     `db:"contact_id" json:"contact_id"`
	CompanyID       uuid.UUID     `db:"company_id" json:"company_id"`
	TemplateID      uuid.NullUUID `db:"template_id" json:"template_id"`
	Subject         string        `db:"subject" json:"subject"`
	Body            string        `db:"body" json:"body"`
	Status          string        `db:"status" json:"status"`
	SentAt          time.Time     `db:"sent_at" json:"sent_at"`
	FollowUpDate    *time.Time    `db:"follow_up_date" json:"follow_up_date,omitempty"`
	FollowUpCount   int           `db:"follow_up_count" json:"follow_up_count"`
	ReplyReceivedAt *time.Time    `db:"reply_received_at" json:"reply_received_at,omitempty"`
	Outcome         string        `db:"outcome" json:"outcome,omitempty"`
	ReplyNote       string        `db:"reply_note" json:"reply_note,omitempty"`
	ClosedAt        *time.Time    `db:"closed_at" json:"closed_at,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// EmailWithRefs is an Email joined with summaries of the records it points at.
type EmailWithRefs struct {
	Email
	ContactName  sql.NullString `db:"contact_name"`
	ContactEmail sql.NullString `db:"contact_email"`
	CompanyName  sql.NullString `db:"company_name"`
	TemplateName sql.NullString `db:"template_name"`
}

// Profile holds the operator's identity and outreach defaults.
type Profile struct {
	FullName               string    `db:"full_name" json:"full_name" yaml:"full_name"`
	Bio                    string    `db:"bio" json:"bio" yaml:"bio"`
	DefaultTone            string    `db:"default_tone" json:"default_tone" yaml:"default_tone"`
	DefaultFollowUpGapDays int       `db:"default_follow_up_gap_days" json:"default_follow_up_gap_days" yaml:"default_follow_up_gap_days"`
	MaxFollowUps           int       `db:"max_follow_ups" json:"max_follow_ups" yaml:"max_follow_ups"`
	SignatureSnippet       string    `db:"signature_snippet" json:"signature_snippet,omitempty" yaml:"signature_snippet"`
	UpdatedAt              time.Time `db:"updated_at" json:"updated_at" yaml:"-"`
}

type Project struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Title            string     `db:"title" json:"title"`
	ShortDescription string     `db:"short_description" json:"short_description"`
	Technologies     StringList `db:"technologies" json:"technologies"`
	Status           string     `db:"status" json:"status"`
	Featured         bool       `db:"featured" json:"featured"`
	SortOrder        int        `db:"sort_order" json:"order"`
}

type Skill struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Featured  bool      `db:"featured" json:"featured"`
	SortOrder int       `db:"sort_order" json:"order"`
}

type Notification struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Kind      string    `db:"kind" json:"kind"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	EmailID   uuid.UUID `db:"email_id" json:"email_id"`
	ActionURL string    `db:"action_url" json:"action_url,omitempty"`
	Read      bool      `db:"is_read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Contact status constants.
const (
	ContactStatusNew       = "new"
	ContactStatusContacted = "contacted"
	ContactStatusReplied   = "replied"
	ContactStatusClosed    = "closed"
)

// Email status constants.
const (
	EmailStatusSent       = "sent"
	EmailStatusReplied    = "replied"
	EmailStatusNoResponse = "no_response"
	EmailStatusClosed     = "closed"
)

// Outcome constants, set only after a reply.
const (
	OutcomePositive  = "positive"
	OutcomeNeutral   = "neutral"
	OutcomeRejection = "rejection"
)

// Intent / template type constants.
const (
	IntentCold            = "cold"
	IntentFollowUp        = "follow_up"
	IntentReferral        = "referral"
	IntentPostApplication = "post_application"
)

const (
	ToneProfessional = "professional"
	ToneFriendly     = "friendly"
)

const (
	ProjectStatusDraft     = "draft"
	ProjectStatusPublished = "published"
)

const (
	NotificationKindFollowUpDue = "outreach_follow_up_due"
)

// Follow-up defaults applied when the profile leaves them unset.
const (
	DefaultMaxFollowUps    = 2
	DefaultFollowUpGapDays = 7
	FollowUpCountCeiling   = 2
)

// ModelUsedTemplate marks drafts rendered from a Template without generation.
const ModelUsedTemplate = "template"

var (
	ContactStatuses = []string{ContactStatusNew, ContactStatusContacted, ContactStatusReplied, ContactStatusClosed}
	EmailStatuses   = []string{EmailStatusSent, EmailStatusReplied, EmailStatusNoResponse, EmailStatusClosed}
	Outcomes        = []string{OutcomePositive, OutcomeNeutral, OutcomeRejection}
	Intents         = []string{IntentCold, IntentFollowUp, IntentReferral, IntentPostApplication}
	Tones           = []string{ToneProfessional, ToneFriendly}
)

// IsValidEmailStatus reports whether s is one of the Email lifecycle states.
func IsValidEmailStatus(s string) bool { return contains(EmailStatuses, s) }

func IsValidContactStatus(s string) bool { return contains(ContactStatuses, s) }

func IsValidOutcome(s string) bool { return contains(Outcomes, s) }

func IsValidIntent(s string) bool { return contains(Intents, s) }

func IsValidTone(s string) bool { return contains(Tones, s) }

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// NormalizeKey lower-cases and trims a value for identity comparison.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// StringList is an ordered list persisted as a JSON array.
type StringList []string

// NewTagList trims entries and drops empties and duplicates, keeping order.
func NewTagList(values []string) StringList {
	seen := make(map[string]bool, len(values))
	out := StringList{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// SplitTags parses a comma separated cell into a tag list.
func SplitTags(s string) StringList {
	if strings.TrimSpace(s) == "" {
		return StringList{}
	}
	return NewTagList(strings.Split(s, ","))
}

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported type for StringList: %T", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode string list: %w", err)
	}
	*l = out
	return nil
}
