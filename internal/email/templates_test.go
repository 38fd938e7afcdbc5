package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLeadEmailEscapesInput(t *testing.T) {
	subject, body := NewLeadEmail("Dana Rivers", "<script>alert(1)</script>", "evil@example.com", "Reiki & Cupping")

	assert.Equal(t, "New inquiry from <script>alert(1)</script>", subject)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.Contains(t, body, "Reiki &amp; Cupping")
	assert.Contains(t, body, "Dana Rivers")
}

func TestLeadConfirmationEmail(t *testing.T) {
	subject, body := LeadConfirmationEmail("Jordan", "Dana Rivers")

	assert.Equal(t, "We received your inquiry", subject)
	assert.Contains(t, body, "Jordan")
	assert.Contains(t, body, "Dana Rivers")
}

func TestWelcomeEmail(t *testing.T) {
	subject, body := WelcomeEmail("Dana")

	assert.Equal(t, "Welcome to VeraCare", subject)
	assert.Contains(t, body, "Hi Dana,")
}

func TestConsultationRequestEmail(t *testing.T) {
	subject, body := ConsultationRequestEmail("Dana Rivers", "Jordan", "jordan@example.com")

	assert.Equal(t, "Consultation request from Jordan", subject)
	assert.Contains(t, body, "jordan@example.com")
}

func TestEnrollmentEmail(t *testing.T) {
	subject, body := EnrollmentEmail("Foundations of Herbalism")

	assert.Equal(t, "You're enrolled in Foundations of Herbalism", subject)
	assert.Contains(t, body, "Foundations of Herbalism")
}

func TestOrderConfirmationEmailFormatsCents(t *testing.T) {
	_, body := OrderConfirmationEmail("ord-123", 5880)
	assert.Contains(t, body, "$58.80")

	_, body = OrderConfirmationEmail("ord-124", 5)
	assert.Contains(t, body, "$0.05")
}
