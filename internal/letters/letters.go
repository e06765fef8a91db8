// Package letters renders application texts for a job from a candidate profile.
package letters

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/job-agent/internal/jobs"
	"github.com/spigell/job-agent/internal/profile"
)

// Kind names one of the supported letter templates.
type Kind string

const (
	KindCoverLetter      Kind = "cover-letter"
	KindEmailDraft       Kind = "email"
	KindRecruiterMessage Kind = "recruiter"
)

// Kinds lists the supported templates.
var Kinds = []Kind{KindCoverLetter, KindEmailDraft, KindRecruiterMessage}

var ErrUnknownKind = errors.New("unknown letter kind")

// Render produces the text of the given kind.
func Render(kind Kind, job *jobs.Job, p *profile.Profile) (string, error) {
	if job == nil {
		return "", fmt.Errorf("job is required")
	}
	if p == nil {
		p = &profile.Profile{}
	}

	switch Kind(strings.ToLower(string(kind))) {
	case KindCoverLetter:
		return CoverLetter(job, p), nil
	case KindEmailDraft:
		return EmailDraft(job, p), nil
	case KindRecruiterMessage:
		return RecruiterMessage(job, p), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// CoverLetter writes a full cover letter for the job.
func CoverLetter(job *jobs.Job, p *profile.Profile) string {
	var b strings.Builder

	b.WriteString("Dear Hiring Manager,\n\n")
	fmt.Fprintf(&b, "I am writing to express my strong interest in the %s position at %s. ", job.Title, job.Company)
	fmt.Fprintf(&b, "With %s years of experience and expertise in %s, ", years(p), joinFirst(p.Skills, 6))
	b.WriteString("I am confident in my ability to make a meaningful contribution to your team.\n\n")

	if jobSkills := joinFirst(job.Skills, 4); jobSkills != "" {
		fmt.Fprintf(&b, "Your requirement for proficiency in %s aligns directly with my professional background. ", jobSkills)
	}

	if achievements := first(p.Achievements, 2); len(achievements) > 0 {
		b.WriteString("In my career, I have:\n")
		for _, a := range achievements {
			fmt.Fprintf(&b, "• %s\n", a)
		}
		b.WriteString("\n")
	}

	if len(p.Domains) > 0 {
		fmt.Fprintf(&b, "My experience in the %s domain has given me deep understanding of the unique challenges and opportunities in this space. ", p.Domains[0])
	}

	fmt.Fprintf(&b, "\nI am particularly drawn to %s because of the opportunity to work on impactful challenges. ", job.Company)
	b.WriteString("I would welcome the chance to discuss how my skills and experience can contribute to your team's success.\n\n")
	b.WriteString("Thank you for considering my application. I look forward to hearing from you.\n\n")
	fmt.Fprintf(&b, "Best regards,\n%s", p.DisplayName("Applicant"))

	return b.String()
}

// EmailDraft writes a short application email including a subject line.
func EmailDraft(job *jobs.Job, p *profile.Profile) string {
	name := p.DisplayName("Applicant")

	var b strings.Builder
	fmt.Fprintf(&b, "Subject: Application for %s Position - %s\n\n", job.Title, name)
	b.WriteString("Dear Hiring Team,\n\n")
	fmt.Fprintf(&b, "I am reaching out regarding the %s position at %s. ", job.Title, job.Company)
	fmt.Fprintf(&b, "With %s years of professional experience and strong skills in %s, ", years(p), joinFirst(p.Skills, 4))
	b.WriteString("I believe I would be a great fit for this role.\n\n")
	b.WriteString("I have attached my resume for your review. I would be happy to discuss my qualifications in more detail at your convenience.\n\n")
	b.WriteString("Thank you for your time and consideration.\n\n")
	fmt.Fprintf(&b, "Best regards,\n%s", name)

	if p.Email != "" {
		b.WriteString("\n" + p.Email)
	}
	if p.Phone != "" {
		b.WriteString("\n" + p.Phone)
	}

	return b.String()
}

// RecruiterMessage writes a brief outreach note.
func RecruiterMessage(job *jobs.Job, p *profile.Profile) string {
	var b strings.Builder
	b.WriteString("Hi,\n\n")
	fmt.Fprintf(&b, "I came across the %s role at %s and I'm very interested. ", job.Title, job.Company)
	fmt.Fprintf(&b, "I have experience with %s and I believe my background aligns well with what you're looking for.\n\n", joinFirst(p.Skills, 3))
	b.WriteString("Would you be open to a brief conversation to discuss this opportunity?\n\n")
	fmt.Fprintf(&b, "Thanks,\n%s", p.DisplayName("there"))
	return b.String()
}

func years(p *profile.Profile) string {
	if p.YearsOfExperience == 0 {
		return "several"
	}
	return strconv.Itoa(p.YearsOfExperience)
}

func first(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}

func joinFirst(values []string, n int) string {
	return strings.Join(first(values, n), ", ")
}
