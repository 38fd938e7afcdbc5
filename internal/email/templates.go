package email

import (
	"fmt"
	"html"
)

// Template builders return the subject and HTML body for each
// transactional email. Plain string building keeps them testable
// without a template file tree.

func NewLeadEmail(practitionerName, leadName, leadEmail, interest string) (string, string) {
	subject := fmt.Sprintf("New inquiry from %s", leadName)
	body := fmt.Sprintf(`<h2>You have a new inquiry</h2>
<p>Hi %s,</p>
<p><strong>%s</strong> (%s) reached out through your profile.</p>
<p>Interest: %s</p>
<p>Reply promptly; inquiries convert best within a day.</p>`,
		html.EscapeString(practitionerName),
		html.EscapeString(leadName),
		html.EscapeString(leadEmail),
		html.EscapeString(interest))
	return subject, body
}

func LeadConfirmationEmail(leadName, practitionerName string) (string, string) {
	subject := "We received your inquiry"
	body := fmt.Sprintf(`<h2>Thanks for reaching out</h2>
<p>Hi %s,</p>
<p>Your message has been sent to %s. They typically respond within one business day.</p>`,
		html.EscapeString(leadName),
		html.EscapeString(practitionerName))
	return subject, body
}

func WelcomeEmail(firstName string) (string, string) {
	subject := "Welcome to VeraCare"
	body := fmt.Sprintf(`<h2>Welcome aboard</h2>
<p>Hi %s,</p>
<p>Your practitioner profile is live. Complete your bio and tags so patients can find you in the directory.</p>`,
		html.EscapeString(firstName))
	return subject, body
}

func ConsultationRequestEmail(practitionerName, leadName, leadEmail string) (string, string) {
	subject := fmt.Sprintf("Consultation request from %s", leadName)
	body := fmt.Sprintf(`<h2>Consultation requested</h2>
<p>Hi %s,</p>
<p><strong>%s</strong> (%s) requested a consultation. Propose a time from your dashboard.</p>`,
		html.EscapeString(practitionerName),
		html.EscapeString(leadName),
		html.EscapeString(leadEmail))
	return subject, body
}

func EnrollmentEmail(courseTitle string) (string, string) {
	subject := fmt.Sprintf("You're enrolled in %s", courseTitle)
	body := fmt.Sprintf(`<h2>Enrollment confirmed</h2>
<p>You now have access to <strong>%s</strong>. Pick up where you left off any time; your progress is saved automatically.</p>`,
		html.EscapeString(courseTitle))
	return subject, body
}

func NewsletterWelcomeEmail() (string, string) {
	subject := "Welcome to the VeraCare newsletter"
	body := `<h2>You're subscribed</h2>
<p>Expect one email a month with practitioner spotlights and new courses. Unsubscribe any time from the footer link.</p>`
	return subject, body
}

func OrderConfirmationEmail(orderID string, totalCents int) (string, string) {
	subject := "Order received"
	body := fmt.Sprintf(`<h2>Thanks for your order</h2>
<p>Order <strong>%s</strong> was received. Total: $%d.%02d.</p>
<p>You'll get a shipping notice once it's on the way.</p>`,
		html.EscapeString(orderID), totalCents/100, totalCents%100)
	return subject, body
}
