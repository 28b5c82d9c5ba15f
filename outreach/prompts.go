// ABOUTME: Prompt builders for draft, follow-up and improvement generation
// ABOUTME: Every prompt asks for a SUBJECT:/BODY: reply that parseGenerated understands
package outreach

import (
	"fmt"
	"strings"

	"github.com/harperreed/outreach/models"
)

// Improvement types accepted by Improve.
const (
	ImproveShorten   = "shorten"
	ImproveClarify   = "clarify"
	ImproveConfident = "confident"
)

var improvementInstructions = map[string]string{
	ImproveShorten:   "Make the email more concise while keeping the key message. Remove filler words.",
	ImproveClarify:   "Improve clarity and flow. Make the message easier to understand.",
	ImproveConfident: "Make the tone more confident and assertive while remaining professional.",
}

// portfolioContext is the sender information folded into a draft prompt.
type portfolioContext struct {
	Name     string
	Bio      string
	Projects []models.Project
	Skills   []string
}

type draftPrompt struct {
	ContactName    string
	CompanyName    string
	JobTitle       string
	JobDescription string
	Tone           string
	Portfolio      portfolioContext
}

func buildDraftPrompt(p draftPrompt) string {
	toneInstructions := "Use a friendly, conversational tone while remaining respectful."
	if p.Tone == models.ToneProfessional {
		toneInstructions = "Use a professional, concise tone. Avoid overly casual language."
	}
	audience := "to"
	if p.JobDescription != "" {
		audience = "for a candidate interested in"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a cold outreach email %s the %s position at %s.\n\n", audience, p.JobTitle, p.CompanyName)
	fmt.Fprintf(&b, "**Recipient:** %s\n", p.ContactName)
	fmt.Fprintf(&b, "**Company:** %s\n", p.CompanyName)
	fmt.Fprintf(&b, "**Position:** %s\n", p.JobTitle)
	if p.JobDescription != "" {
		fmt.Fprintf(&b, "**Job Description:** %s\n", p.JobDescription)
	}
	fmt.Fprintf(&b, "**Tone:** %s\n\n", toneInstructions)

	b.WriteString("**About the sender:**\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.Portfolio.Name)
	fmt.Fprintf(&b, "- Bio: %s\n\n", p.Portfolio.Bio)

	b.WriteString("**Relevant portfolio projects:**\n")
	for i, project := range p.Portfolio.Projects {
		fmt.Fprintf(&b, "%d. **%s**: %s (%s)\n", i+1, project.Title, project.ShortDescription, strings.Join(project.Technologies, ", "))
	}
	fmt.Fprintf(&b, "\n**Key skills:** %s\n\n", strings.Join(p.Portfolio.Skills, ", "))

	b.WriteString(`Requirements:
1. Subject line should be compelling and specific
2. Email body should be 150-250 words
3. Include 1-2 relevant portfolio projects as evidence
4. Reference specific skills that match the job
5. End with a clear call to action
6. Do NOT include placeholders like [Company Name] - use the actual values
7. Do NOT add any signature or contact info (these will be added separately)

Output format:
SUBJECT: <subject line>
BODY: <email body>`)
	return b.String()
}

type followUpPrompt struct {
	ContactName     string
	CompanyName     string
	OriginalSubject string
	OriginalBody    string
	FollowUpNumber  int
	Tone            string
	SenderName      string
	SenderBio       string
}

func buildFollowUpPrompt(p followUpPrompt) string {
	toneInstructions := "Use a friendly, conversational tone."
	if p.Tone == models.ToneProfessional {
		toneInstructions = "Use a professional, concise tone."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a follow-up email (%s) for a cold outreach.\n\n", ordinal(p.FollowUpNumber))
	b.WriteString("**Original outreach:**\n")
	fmt.Fprintf(&b, "SUBJECT: %s\n", p.OriginalSubject)
	fmt.Fprintf(&b, "BODY: %s\n\n", p.OriginalBody)
	fmt.Fprintf(&b, "**Recipient:** %s\n", p.ContactName)
	fmt.Fprintf(&b, "**Company:** %s\n", p.CompanyName)
	fmt.Fprintf(&b, "**Follow-up number:** %d\n", p.FollowUpNumber)
	fmt.Fprintf(&b, "**Tone:** %s\n\n", toneInstructions)
	if p.SenderName != "" {
		fmt.Fprintf(&b, "**Sender:** %s\n", p.SenderName)
	}
	if p.SenderBio != "" {
		fmt.Fprintf(&b, "**Sender background:** %s\n", p.SenderBio)
	}
	if p.SenderName != "" || p.SenderBio != "" {
		b.WriteString("\n")
	}
	b.WriteString(`Requirements:
1. Be brief - follow-up should be 100-150 words
2. Remind them of the original email without repeating everything
3. Show continued interest in the opportunity
4. Keep it non-pushy but proactive
5. Do NOT include signature or contact info
6. Do NOT use placeholders

Output format:
SUBJECT: <follow-up subject>
BODY: <follow-up body>`)
	return b.String()
}

func buildImprovePrompt(subject, body, improvementType string) string {
	var b strings.Builder
	b.WriteString("Improve this outreach email:\n\n")
	fmt.Fprintf(&b, "SUBJECT: %s\n", subject)
	fmt.Fprintf(&b, "BODY: %s\n\n", body)
	fmt.Fprintf(&b, "Improvement: %s\n\n", improvementInstructions[improvementType])
	b.WriteString("Output format:\nSUBJECT: <improved subject>\nBODY: <improved body>")
	return b.String()
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
