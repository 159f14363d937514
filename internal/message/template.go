package message

import (
	"regexp"
	"strings"
)

// UtilityBucket is the icon/sub-label family a utility template falls into
type UtilityBucket string

const (
	BucketOrder       UtilityBucket = "order"
	BucketAccount     UtilityBucket = "account"
	BucketFeedback    UtilityBucket = "feedback"
	BucketPreference  UtilityBucket = "preference"
	BucketAppointment UtilityBucket = "appointment"
)

type utilityFamily struct {
	bucket UtilityBucket
	label  string
	re     *regexp.Regexp
}

var utilityFamilies = []utilityFamily{
	{BucketOrder, "Order Update", regexp.MustCompile(`(?i)\b(order|package|shipped|tracking|delivery|refund|cancel)`)},
	{BucketAccount, "Account Update", regexp.MustCompile(`(?i)\b(account|balance|payment|reminder|subscription|profile|alert|security)`)},
	{BucketFeedback, "Feedback Request", regexp.MustCompile(`(?i)\b(feedback|survey|review|rating)`)},
	{BucketPreference, "Subscription Preference", regexp.MustCompile(`(?i)\b(opt-in|opt-out|subscribe|unsubscribe|confirm)`)},
	{BucketAppointment, "Appointment Reminder", regexp.MustCompile(`(?i)\b(appointment|booking|reservation|schedule|visit)`)},
}

var (
	otpDigits   = regexp.MustCompile(`\b\d{4,8}\b`)
	otpKeywords = regexp.MustCompile(`(?i)(code|otp|verification|password)`)

	orderRef    = regexp.MustCompile(`(?i:order)[:#\s]*([A-Z0-9-]{4,20})`)
	trackingRef = regexp.MustCompile(`(?i:tracking)[:#\s]*([A-Z0-9]{8,20})`)

	marketingKeywords = regexp.MustCompile(`(?i)\b(offers?|discounts?|sales?|promo\w*|deals?|limited|exclusive|special|free|win|congratulations|welcome)\b`)
	couponKeywords    = regexp.MustCompile(`(?i)\b(code|coupon|use)\b`)
	couponAfterKey    = regexp.MustCompile(`(?i:\b(?:code|coupon|use))[:\s]+([A-Z0-9]{4,15})\b`)
	upperToken        = regexp.MustCompile(`\b[A-Z0-9]{4,15}\b`)
	limitedTime       = regexp.MustCompile(`(?i)\b(limited|expires?|valid until|ends|hurry|last chance|today only)\b`)
	ctaURL            = regexp.MustCompile(`https?://[^\s<>"]+`)

	whitespace = regexp.MustCompile(`\s+`)
)

// TemplateRule is one step of the template sub-classification
type TemplateRule struct {
	Name    string
	Match   func(content string) bool
	Extract func(content string) Payload
}

// TemplateRules returns the sub-classification table in precedence order
func TemplateRules() []TemplateRule {
	return []TemplateRule{
		{Name: "authentication", Match: isAuthentication, Extract: extractAuthentication},
		{Name: "utility", Match: isUtility, Extract: extractUtility},
		{Name: "marketing", Match: marketingKeywords.MatchString, Extract: extractMarketing},
	}
}

var templateRules = TemplateRules()

// ClassifyTemplate picks authentication, utility, marketing or a bare template
// for the body of a template message.
func ClassifyTemplate(content string) Payload {
	for _, rule := range templateRules {
		if rule.Match(content) {
			return rule.Extract(content)
		}
	}
	return Template{Body: content}
}

func isAuthentication(content string) bool {
	return otpDigits.MatchString(content) && otpKeywords.MatchString(content)
}

func extractAuthentication(content string) Payload {
	loc := otpDigits.FindStringIndex(content)
	code := content[loc[0]:loc[1]]
	rest := content[:loc[0]] + content[loc[1]:]
	return AuthenticationTemplate{
		Code:            code,
		InstructionText: strings.TrimSpace(whitespace.ReplaceAllString(rest, " ")),
	}
}

func isUtility(content string) bool {
	for _, f := range utilityFamilies {
		if f.re.MatchString(content) {
			return true
		}
	}
	return false
}

func extractUtility(content string) Payload {
	out := UtilityTemplate{Body: content}
	for _, f := range utilityFamilies {
		if f.re.MatchString(content) {
			out.Bucket = f.bucket
			out.Label = f.label
			break
		}
	}
	if m := orderRef.FindStringSubmatch(content); m != nil {
		out.OrderRef = m[1]
	}
	if m := trackingRef.FindStringSubmatch(content); m != nil {
		out.TrackingRef = m[1]
	}
	return out
}

func extractMarketing(content string) Payload {
	out := MarketingTemplate{
		Body:          content,
		CouponCode:    couponCode(content),
		IsLimitedTime: limitedTime.MatchString(content),
	}
	if u := ctaURL.FindString(content); u != "" {
		out.CTAURL = strings.TrimRight(u, ".,;:!?)")
	}
	return out
}

// couponCode prefers the token right after code/coupon/use, then the first
// uppercase token that mixes letters and digits, then any uppercase token.
func couponCode(content string) string {
	if !couponKeywords.MatchString(content) {
		return ""
	}
	if m := couponAfterKey.FindStringSubmatch(content); m != nil && hasLetter(m[1]) {
		return m[1]
	}
	tokens := upperToken.FindAllString(content, -1)
	for _, t := range tokens {
		if hasLetter(t) && strings.ContainsAny(t, "0123456789") {
			return t
		}
	}
	for _, t := range tokens {
		if hasLetter(t) {
			return t
		}
	}
	return ""
}

func hasLetter(s string) bool {
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}
