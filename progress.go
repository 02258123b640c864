package devtrack

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Progress is the development progress of a project. Its concrete type
// depends on the project's status, so that only the fields meaningful for
// that status can be recorded.
type Progress interface {
	// Status returns the project status this progress belongs to.
	Status() Status
	// Validate returns an error for out of range figures.
	Validate() error
}

// SubmissionStatus is the state of the authority submission of a project in
// Pre-Development.
type SubmissionStatus string

const (
	NotSubmitted SubmissionStatus = "Not Submitted"
	Submitted    SubmissionStatus = "Submitted"
	Approved     SubmissionStatus = "Approved"
	Rejected     SubmissionStatus = "Rejected"
)

// ParseSubmissionStatus parses a submission status, case-insensitive.
func ParseSubmissionStatus(s string) (SubmissionStatus, error) {
	for _, st := range []SubmissionStatus{NotSubmitted, Submitted, Approved, Rejected} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return "", fmt.Errorf("invalid submission status %q", s)
}

// DesignProgress is the progress of a project in Pre-Development.
type DesignProgress struct {
	Design     Percent // design completion, in [0, 100].
	Submission SubmissionStatus
}

func (p *DesignProgress) Status() Status { return PreDevelopment }

func (p *DesignProgress) Validate() error {
	if p.Design < 0 || p.Design > 100 {
		return fmt.Errorf("design_progress must be between 0 and 100, got %v", float64(p.Design))
	}
	if _, err := ParseSubmissionStatus(string(p.Submission)); err != nil {
		return err
	}
	return nil
}

func (p *DesignProgress) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("status", p.Status())
	w.Append("design_progress", float64(p.Design))
	w.Optional("submission_status", string(p.Submission))
	return w.MarshalJSON()
}

// ContractProgress is the progress of a project under Construction.
type ContractProgress struct {
	Contractor     string
	PeriodMonths   int // contract period.
	SitePossession Date
	Completion     Date
	ContractAmount Money
	PaidAmount     Money
}

func (p *ContractProgress) Status() Status { return Construction }

func (p *ContractProgress) Validate() error {
	var errs error
	if p.PeriodMonths < 0 {
		errs = errors.Join(errs, fmt.Errorf("contract_period must not be negative, got %d", p.PeriodMonths))
	}
	if p.ContractAmount.IsNegative() {
		errs = errors.Join(errs, fmt.Errorf("contract_amount must not be negative, got %s", p.ContractAmount.Amount()))
	}
	if p.PaidAmount.IsNegative() {
		errs = errors.Join(errs, fmt.Errorf("paid_amount must not be negative, got %s", p.PaidAmount.Amount()))
	}
	if !p.SitePossession.IsZero() && !p.Completion.IsZero() && p.Completion.Before(p.SitePossession) {
		errs = errors.Join(errs, fmt.Errorf("completion_date %s is before site_possession %s", p.Completion, p.SitePossession))
	}
	return errs
}

// PaidPercentage returns the paid amount in percent of the contract amount.
func (p *ContractProgress) PaidPercentage() Percent { return p.PaidAmount.Ratio(p.ContractAmount) }

// ExpectedCompletion returns the completion date, or when it is not set, the
// site possession date plus the contract period.
func (p *ContractProgress) ExpectedCompletion() Date {
	if !p.Completion.IsZero() || p.SitePossession.IsZero() {
		return p.Completion
	}
	return p.SitePossession.AddMonth(p.PeriodMonths)
}

func (p *ContractProgress) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("status", p.Status())
	w.Optional("contractor_name", p.Contractor)
	w.Append("contract_period", p.PeriodMonths)
	w.Optional("site_possession", p.SitePossession)
	w.Optional("completion_date", p.Completion)
	w.Append("contract_amount", p.ContractAmount)
	w.Append("paid_amount", p.PaidAmount)
	return w.MarshalJSON()
}

// decodeProgress reads the progress group of a record. The record's status
// selects which fields are read, fields of other statuses are ignored.
func decodeProgress(raw json.RawMessage, status Status, currency string) (Progress, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch status {
	case PreDevelopment:
		var j struct {
			Design     *float64 `json:"design_progress"`
			Submission *string  `json:"submission_status"`
		}
		if err := json.Unmarshal(raw, &j); err != nil {
			return nil, err
		}
		p := &DesignProgress{}
		if j.Design != nil {
			p.Design = Percent(*j.Design)
		}
		if j.Submission != nil {
			p.Submission = SubmissionStatus(*j.Submission)
		}
		return p, nil
	case Construction:
		var j struct {
			Contractor     *string         `json:"contractor_name"`
			PeriodMonths   decimal.Decimal `json:"contract_period"`
			SitePossession Date            `json:"site_possession"`
			Completion     Date            `json:"completion_date"`
			ContractAmount decimal.Decimal `json:"contract_amount"`
			PaidAmount     decimal.Decimal `json:"paid_amount"`
		}
		if err := json.Unmarshal(raw, &j); err != nil {
			return nil, err
		}
		p := &ContractProgress{
			PeriodMonths:   int(j.PeriodMonths.IntPart()),
			SitePossession: j.SitePossession,
			Completion:     j.Completion,
			ContractAmount: M(j.ContractAmount, currency),
			PaidAmount:     M(j.PaidAmount, currency),
		}
		if j.Contractor != nil {
			p.Contractor = *j.Contractor
		}
		return p, nil
	default:
		return nil, nil
	}
}
