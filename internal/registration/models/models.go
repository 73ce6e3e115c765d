package models

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"

	dErrors "intake/pkg/domain-errors"
)

// OtherOption is the selection value that makes its companion free-text
// field required.
const OtherOption = "Other"

// mobilePattern accepts an optional leading + followed by 7-15 digits with
// optional separators.
var mobilePattern = regexp.MustCompile(`^\+?[0-9][0-9\s\-()]{5,18}[0-9]$`)

// Submission is the inbound registration form.
//
// Invariants:
//   - firstName, lastName, age, mobileNumber, emailAddress, profession,
//     investmentBackground, mostInterestedIn are non-blank
//   - age parses to an integer in [1, 150]
//   - currentInvestments has at least one entry
//   - professionOther is non-blank iff profession is "Other"
//   - currentInvestmentsOther is non-blank iff "Other" is selected
type Submission struct {
	FirstName               string   `json:"firstName"`
	MiddleName              string   `json:"middleName,omitempty"`
	LastName                string   `json:"lastName"`
	Age                     string   `json:"age"`
	MobileNumber            string   `json:"mobileNumber"`
	EmailAddress            string   `json:"emailAddress"`
	Profession              string   `json:"profession"`
	ProfessionOther         string   `json:"professionOther,omitempty"`
	InvestmentBackground    string   `json:"investmentBackground"`
	CurrentInvestments      []string `json:"currentInvestments"`
	CurrentInvestmentsOther string   `json:"currentInvestmentsOther,omitempty"`
	MostInterestedIn        string   `json:"mostInterestedIn"`
}

// Validate checks required and bounded fields. Conditional "Other" fields are
// checked separately by ValidateConditionals so the write path can enforce
// them as an invariant even when a caller skipped this method.
func (s *Submission) Validate() error {
	required := []struct {
		value string
		msg   string
	}{
		{s.FirstName, "First name is required"},
		{s.LastName, "Last name is required"},
		{s.Age, "Age is required"},
		{s.MobileNumber, "Mobile number is required"},
		{s.EmailAddress, "Email address is required"},
		{s.Profession, "Profession is required"},
		{s.InvestmentBackground, "Investment background is required"},
		{s.MostInterestedIn, "Interest area is required"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return dErrors.New(dErrors.CodeValidation, f.msg)
		}
	}

	age, err := strconv.Atoi(strings.TrimSpace(s.Age))
	if err != nil || age < 1 || age > 150 {
		return dErrors.New(dErrors.CodeValidation, "Age must be a number between 1 and 150")
	}

	if !mobilePattern.MatchString(strings.TrimSpace(s.MobileNumber)) {
		return dErrors.New(dErrors.CodeValidation, "Mobile number must be a valid phone number")
	}

	if _, err := mail.ParseAddress(strings.TrimSpace(s.EmailAddress)); err != nil {
		return dErrors.New(dErrors.CodeValidation, "Email must be valid")
	}

	if len(s.CurrentInvestments) == 0 {
		return dErrors.New(dErrors.CodeValidation, "At least one current investment must be selected")
	}

	return s.ValidateConditionals()
}

// ValidateConditionals enforces the conditional-required fields: selecting
// "Other" makes the companion free-text field mandatory.
func (s *Submission) ValidateConditionals() error {
	if strings.EqualFold(s.Profession, OtherOption) && strings.TrimSpace(s.ProfessionOther) == "" {
		return dErrors.New(dErrors.CodeValidation,
			"professionOther is required when profession is 'Other'")
	}
	if s.hasOtherInvestment() && strings.TrimSpace(s.CurrentInvestmentsOther) == "" {
		return dErrors.New(dErrors.CodeValidation,
			"currentInvestmentsOther is required when currentInvestments contains 'Other'")
	}
	return nil
}

func (s *Submission) hasOtherInvestment() bool {
	for _, inv := range s.CurrentInvestments {
		if strings.EqualFold(inv, OtherOption) {
			return true
		}
	}
	return false
}

// Record is the response shape of a persisted registration. InfluencerID is
// carried internally for filtering but never serialized; referredBy is the
// caller-facing attribution.
type Record struct {
	ID                      string   `json:"id"`
	FirstName               string   `json:"firstName"`
	MiddleName              string   `json:"middleName,omitempty"`
	LastName                string   `json:"lastName"`
	Age                     string   `json:"age"`
	MobileNumber            string   `json:"mobileNumber"`
	EmailAddress            string   `json:"emailAddress"`
	Profession              string   `json:"profession"`
	ProfessionOther         string   `json:"professionOther,omitempty"`
	InvestmentBackground    string   `json:"investmentBackground,omitempty"`
	CurrentInvestments      []string `json:"currentInvestments"`
	CurrentInvestmentsOther string   `json:"currentInvestmentsOther,omitempty"`
	MostInterestedIn        string   `json:"mostInterestedIn"`
	CreatedAt               int64    `json:"createdAt"`
	UpdatedAt               int64    `json:"updatedAt"`
	ReferredBy              string   `json:"referredBy"`
	InfluencerID            string   `json:"-"`
}

// Page is one page of a filtered listing with derived pagination metadata.
//
// Invariants:
//   - HasNext ⇔ Page < TotalPages-1
//   - HasPrevious ⇔ Page > 0
//   - TotalPages = 0 when TotalElements = 0
type Page struct {
	Data          []*Record `json:"data"`
	Page          int       `json:"page"`
	Size          int       `json:"size"`
	TotalElements int64     `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
	HasNext       bool      `json:"hasNext"`
	HasPrevious   bool      `json:"hasPrevious"`
}
