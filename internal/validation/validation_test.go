package validation

import (
	"errors"
	"strings"
	"testing"

	"wikiadmin/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "secret1", false},
		{"Exactly Min Length", "abcdef", false},
		{"Exactly Max Length", strings.Repeat("b", 128), false},
		{"Too Short", "abc12", true},
		{"Too Long", strings.Repeat("b", 129), true},
		{"Unicode Counts Runes", "ÅÅÅÅÅÅ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "test_user123", false},
		{"Too Short", "tu", true},
		{"Too Long", strings.Repeat("a", 51), true},
		{"Illegal Chars", "user@123", true},
		{"Starts Dash", "-user", true},
		{"Ends Underscore", "user_", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "test@example.com", false},
		{"Empty", "", true},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "user@", true},
		{"Too Long", strings.Repeat("a", 250) + "@b.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSubdomain(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		subdomain string
		ok        bool
	}{
		{name: "valid", subdomain: "genshin", ok: true},
		{name: "with digits and hyphen", subdomain: "game-2", ok: true},
		{name: "single char", subdomain: "a", ok: true},
		{name: "uppercase", subdomain: "Movies", ok: false},
		{name: "underscore", subdomain: "pc_gaming", ok: false},
		{name: "leading hyphen", subdomain: "-linux", ok: false},
		{name: "trailing hyphen", subdomain: "linux-", ok: false},
		{name: "reserved admin", subdomain: "admin", ok: false},
		{name: "reserved www", subdomain: "www", ok: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSubdomain(tc.subdomain)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

type sampleRequest struct {
	Username string `json:"username"`
	Color    string `json:"color"`
}

func TestAsAppError_FieldErrors(t *testing.T) {
	req := sampleRequest{Username: "", Color: "red"}
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Username, validation.Required),
		validation.Field(&req.Color, HexColorRule),
	)
	require.Error(t, err)

	appErr := AsAppError(err)
	var ae *models.AppError
	require.True(t, errors.As(appErr, &ae))
	assert.Equal(t, models.CodeValidation, ae.Code)
	assert.Equal(t, "color", ae.Field)
	assert.Contains(t, ae.Message, "color")
}

func TestAsAppError_PassThrough(t *testing.T) {
	assert.NoError(t, AsAppError(nil))
	plain := errors.New("boom")
	assert.Equal(t, plain, AsAppError(plain))
}

func TestSanitizeRichText(t *testing.T) {
	out := SanitizeRichText(`<p onclick="x()">Hi <script>alert(1)</script><a href="javascript:alert(1)">x</a></p>`)
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "<p>")
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "Hello world & friends", PlainText("<h1>Hello</h1>\n<p>world &amp; friends</p>"))
	assert.Equal(t, "abc", Excerpt("<b>abcdef</b>", 3))
	assert.Equal(t, "短文本", Excerpt("<p>短文本</p>", 200))
}
