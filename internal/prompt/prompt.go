// Package prompt renders the prompts sent to providers for site generation,
// site edits and connection probes.
package prompt

import (
	"fmt"
	"strings"
)

// ConnectionTest is the fixed prompt used to probe provider connectivity.
const ConnectionTest = "Hello! Please respond with 'AI connection successful!'"

const notProvided = "Not provided"

// BusinessData is the business profile collected by the form.
type BusinessData struct {
	BusinessName string `json:"businessName"`
	Services     string `json:"services"`
	ServiceArea  string `json:"serviceArea"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
	Hours        string `json:"hours,omitempty"`
	Location     string `json:"location,omitempty"`
}

// Branding is the builder credit embedded in generated pages.
type Branding struct {
	Name string
	URL  string
}

// DefaultBranding is used when a zero Branding is passed.
var DefaultBranding = Branding{Name: "Connectedism", URL: "https://connectedism.com"}

func (b Branding) orDefault() Branding {
	if b.Name == "" || b.URL == "" {
		return DefaultBranding
	}
	return b
}

func (b Branding) comment() string {
	return fmt.Sprintf("<!-- Generated by %s - AI-powered website builder - %s -->", b.Name, b.URL)
}

func (b Branding) metaTag() string {
	return fmt.Sprintf(`<meta name="generator" content="%s AI Website Builder">`, b.Name)
}

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return notProvided
	}
	return s
}

// Website builds the generation prompt for a new single-page site.
func Website(d BusinessData, brand Branding) string {
	brand = brand.orDefault()

	var b strings.Builder
	b.WriteString("Create a complete, professional HTML website for this local service business:\n\n")
	fmt.Fprintf(&b, "Business Name: %s\n", d.BusinessName)
	fmt.Fprintf(&b, "Services: %s\n", d.Services)
	fmt.Fprintf(&b, "Service Area: %s\n", d.ServiceArea)
	fmt.Fprintf(&b, "Phone: %s\n", d.Phone)
	fmt.Fprintf(&b, "Email: %s\n", orNotProvided(d.Email))
	fmt.Fprintf(&b, "Hours: %s\n", orNotProvided(d.Hours))
	if d.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", d.Location)
	}

	b.WriteString(`
Requirements:
- Complete HTML document with inline CSS and any needed JavaScript
- Mobile responsive design with modern, clean aesthetics
- Professional appearance suitable for a local service business
- Include contact information prominently displayed
- Add schema.org structured data for local business SEO
- Use modern design principles with good typography
- Include clear call-to-action buttons
- Make it conversion-optimized for local customers
- Use appropriate colors and layout for the service type
- Include sections for: header, services, about, contact, footer
- IMPORTANT: Use anchor navigation (href="#services", "#about", "#contact") for single-page navigation
- IMPORTANT: Add smooth scrolling CSS: html { scroll-behavior: smooth; }
`)
	fmt.Fprintf(&b, "- IMPORTANT: Include a subtle footer credit \"Powered by %s\" with link to %s - style it discretely but visibly\n", brand.Name, brand.URL)
	fmt.Fprintf(&b, "- IMPORTANT: Include HTML comment in head: %s\n", brand.comment())
	fmt.Fprintf(&b, "- IMPORTANT: Include meta tag: %s\n", brand.metaTag())
	b.WriteString("\nGenerate ONLY the complete HTML code with no additional text or explanations:")
	return b.String()
}

// Edit builds the chat prompt that asks for an explanation followed by the
// full updated document between HTML_START: and HTML_END: markers.
func Edit(d BusinessData, currentHTML string, request string, brand Branding) string {
	brand = brand.orDefault()
	name := d.BusinessName
	if strings.TrimSpace(name) == "" {
		name = "this business"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are helping edit a website for %s.\n\n", name)
	fmt.Fprintf(&b, "Current website HTML:\n%s\n\n", currentHTML)
	fmt.Fprintf(&b, "User request: %s\n\n", request)
	b.WriteString(`Please provide your response in this exact format:

EXPLANATION:
[Provide a clear explanation of what changes you're making and why]

HTML_START:
[Complete updated HTML code here]
HTML_END:

`)
	b.WriteString("Make sure the HTML is complete, functional, and incorporates the requested changes while maintaining the professional design and SEO elements. ")
	fmt.Fprintf(&b, "IMPORTANT: Always preserve the \"Powered by %s\" footer credit link unless specifically asked to remove it. ", brand.Name)
	fmt.Fprintf(&b, "If asked to remove the visible branding, you should remove the footer link but ALWAYS maintain these hidden elements: the HTML comment \"%s\" in the head and the meta tag \"%s\" for licensing purposes.", brand.comment(), brand.metaTag())
	return b.String()
}
