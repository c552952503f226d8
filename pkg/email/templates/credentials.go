package templates

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultCustomerName greets customers whose order carried no name.
	DefaultCustomerName = "Cliente"
	// DefaultSupportEmail is shown when no support address is configured.
	DefaultSupportEmail = "support@gemsimce.cl"
)

// CredentialsData fills the welcome email sent after a purchase. The body
// itself lives in credentials.templ; run `templ generate` after editing it.
type CredentialsData struct {
	Name         string
	APIKey       string
	LoginURL     string
	SupportEmail string
}

// GreetingName title-cases a customer name ("maría josé" becomes
// "María José") and falls back to DefaultCustomerName.
func GreetingName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return DefaultCustomerName
	}
	// A Caser keeps state, so each call gets its own.
	return cases.Title(language.LatinAmericanSpanish).String(name)
}

// Support returns the address customers should write to.
func (d CredentialsData) Support() string {
	if d.SupportEmail == "" {
		return DefaultSupportEmail
	}
	return d.SupportEmail
}
