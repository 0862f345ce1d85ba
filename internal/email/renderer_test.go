package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/property-notifier/internal/domain"
)

func TestNewRendererParsesAllTemplates(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	for _, key := range AllTemplates {
		assert.Contains(t, r.html, key)
		assert.Contains(t, r.subjects, key)
	}
}

func TestRenderInspectionOverdue(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(TemplateInspectionOverdue, Data{
		"RecipientName":   "Tess",
		"InspectionTitle": "Annual smoke detector check",
		"PropertyName":    "Maple Court",
		"UnitNumber":      "4B",
		"ScheduledDate":   "Mar 2, 2026",
		"DaysOverdue":     3,
		"Link":            "http://localhost:5173/inspections/abc",
	})
	require.NoError(t, err)

	assert.Equal(t, "Inspection overdue: Annual smoke detector check", out.Subject)
	assert.Contains(t, out.HTML, "Hi Tess,")
	assert.Contains(t, out.HTML, "(unit 4B)")
	assert.Contains(t, out.HTML, "3 day(s) overdue")
	assert.Contains(t, out.HTML, `href="http://localhost:5173/inspections/abc"`)
}

func TestRenderEscapesHTML(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(TemplateJobAssigned, Data{
		"JobTitle": "<script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.NotContains(t, out.HTML, "<script>")
	assert.Contains(t, out.HTML, "&lt;script&gt;")
}

func TestRenderDigestSubjectPluralisation(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	one, err := r.Render(TemplateOverdueInspectionDigest, Data{
		"Inspections": []DigestItem{{Title: "A", TechnicianName: "Unassigned"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "1 overdue inspection to review", one.Subject)

	three, err := r.Render(TemplateOverdueInspectionDigest, Data{
		"Inspections": []DigestItem{
			{Title: "A", PropertyName: "Elm", DaysOverdue: 1, TechnicianName: "Sam"},
			{Title: "B", PropertyName: "Elm", DaysOverdue: 2, TechnicianName: "Unassigned"},
			{Title: "C", PropertyName: "Elm", UnitNumber: "2", DaysOverdue: 5, TechnicianName: "Kai"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "3 overdue inspections to review", three.Subject)
	assert.Contains(t, three.HTML, "Unassigned")
	assert.Contains(t, three.HTML, "<td>5</td>")
}

func TestRenderTrialExpiring(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(TemplateTrialExpiring, Data{"DaysRemaining": 1})
	require.NoError(t, err)
	assert.Equal(t, "Your trial ends in 1 day", out.Subject)

	out, err = r.Render(TemplateTrialExpiring, Data{"DaysRemaining": 7})
	require.NoError(t, err)
	assert.Equal(t, "Your trial ends in 7 days", out.Subject)
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	_, err = r.Render(TemplateKey("nope"), nil)
	assert.Error(t, err)
}

func TestTemplateFor(t *testing.T) {
	tests := []struct {
		typ  domain.NotificationType
		key  TemplateKey
		want bool
	}{
		{domain.NotificationJobAssigned, TemplateJobAssigned, true},
		{domain.NotificationJobReassigned, TemplateJobReassigned, true},
		{domain.NotificationInspectionOverdue, TemplateInspectionOverdue, true},
		{domain.NotificationServiceRequestApproved, TemplateManagerOwnerApproved, true},
		{domain.NotificationServiceRequestRejected, TemplateManagerOwnerRejected, true},
		{domain.NotificationOwnerJobCreated, TemplateOwnerJobCreated, true},
		{domain.NotificationSystem, "", false},
		{domain.NotificationType("SOMETHING_NEW"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			key, ok := TemplateFor(tt.typ)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.key, key)
		})
	}
}
