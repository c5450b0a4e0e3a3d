package emailsvc

import (
	"net/mail"
	"testing"

	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core"
	testutil "github.com/trezcool/darasa/tests"
)

func newReceipt() *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: "Hero", Address: "hero@test.cd"}},
		Subject:      "Your payment receipt",
		TemplateName: "purchase-receipt",
		TemplateData: struct {
			CourseTitle string
			Amount      float64
			Currency    string
			PaymentID   string
		}{"Go from scratch", 49.99, "USD", "p1"},
	}
}

func Test_sendgridService_prepare(t *testing.T) {
	conf := testutil.NewConfig()
	conf.WorkDir = core.Getwd()
	core.ParseEmailTemplates(conf, testutil.NopLogger{})

	svc := &sendgridService{
		conf:       conf,
		from:       sgmail.NewEmail(conf.DefaultFromEmail.Name, conf.DefaultFromEmail.Address),
		subjPrefix: "[" + conf.AppName + "] ",
		logger:     testutil.NopLogger{},
	}

	msg := newReceipt()
	assert.NoError(t, msg.Render(conf))
	assert.True(t, msg.HasRecipients())
	assert.True(t, msg.HasContent())
	assert.Contains(t, msg.TextContent, "Go from scratch")
	assert.Contains(t, msg.TextContent, "49.99 USD")
	assert.Contains(t, msg.TextContent, "p1")
	assert.Contains(t, msg.HTMLContent, "<li>Course: Go from scratch</li>")
	assert.Contains(t, msg.TextContent, conf.FrontendBaseURL+"/dashboard")

	m := svc.prepare(*msg)
	assert.Equal(t, conf.DefaultFromEmail.Address, m.From.Address)
	if assert.Len(t, m.Personalizations, 1) {
		p := m.Personalizations[0]
		assert.Equal(t, "[Darasa] Your payment receipt", p.Subject)
		if assert.Len(t, p.To, 1) {
			assert.Equal(t, "hero@test.cd", p.To[0].Address)
		}
	}
	if assert.Len(t, m.Content, 2) {
		assert.Equal(t, "text/plain", m.Content[0].Type)
		assert.Equal(t, "text/html", m.Content[1].Type)
	}
}

func Test_mockService_SendMessages(t *testing.T) {
	conf := testutil.NewConfig()
	svc := NewMockService(conf)

	svc.SendMessages(newReceipt())
	if assert.Len(t, svc.Sent(), 1) {
		assert.Equal(t, "purchase-receipt", svc.Sent()[0].TemplateName)
	}

	svc.Reset()
	assert.Empty(t, svc.Sent())
}
