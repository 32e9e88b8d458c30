package web

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boddenberg/revomotors-web/internal/domain"
	"github.com/boddenberg/revomotors-web/internal/session"
)

func TestNewRenderer_ParsesEveryPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	for _, name := range pageNames {
		assert.Contains(t, r.pages, name)
	}
}

func TestRender_Layout(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Render(&buf, PageLanding, &View{
		Title:   "Welcome",
		User:    &domain.User{FirstName: "Ana", LastName: "Lee", Role: domain.RoleDealer},
		Flashes: []session.Flash{{Kind: session.FlashSuccess, Message: "Saved <now>"}},
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "<title>Welcome | RevoMotors</title>")
	assert.Contains(t, html, "Ana Lee")
	assert.Contains(t, html, `action="/logout"`)
	assert.Contains(t, html, "Saved &lt;now&gt;")
	assert.Contains(t, html, "I'm a Seller")
}

func TestRender_ErrorBanner(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, PageError, &View{Title: "Not found", Error: "Not found", Status: 404}))
	assert.Contains(t, buf.String(), `data-status="404"`)
	assert.Contains(t, buf.String(), "Dealer login")
}

func TestRender_UnknownPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	assert.Error(t, r.Render(&bytes.Buffer{}, "nope", &View{}))
}

func TestMoney(t *testing.T) {
	fair := 12500.4
	tests := []struct {
		in   any
		want string
	}{
		{0.0, "$0"},
		{999.0, "$999"},
		{1000.0, "$1,000"},
		{1234567.0, "$1,234,567"},
		{&fair, "$12,500"},
		{(*float64)(nil), "-"},
		{42, "$42"},
		{-1500.0, "-$1,500"},
		{"x", "-"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Money(tt.in), "%v", tt.in)
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Follow Up 1", Label("follow_up_1"))
	assert.Equal(t, "Hot Lead", Label("hot_lead"))
	assert.Equal(t, "Negotiating", Label(domain.LeadStatusNegotiating))
	assert.Equal(t, "", Label(""))
}

func TestImageSrc(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/a.jpg", string(ImageSrc("https://cdn.example.com/a.jpg")))
	assert.Equal(t, "data:image/png;base64,AAAA", string(ImageSrc("data:image/png;base64,AAAA")))
	assert.Empty(t, ImageSrc("javascript:alert(1)"))
	assert.Empty(t, ImageSrc("data:text/html;base64,AAAA"))
}
