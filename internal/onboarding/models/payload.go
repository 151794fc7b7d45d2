package models

import (
	"encoding/json"
	"strconv"
	"strings"

	dErrors "veriledger/pkg/domain-errors"
)

// Field names written to the KYC data store.
const (
	FieldEmail          = "email"
	FieldPasswordHash   = "password_hash"
	FieldFirstName      = "first_name"
	FieldLastName       = "last_name"
	FieldInvestorType   = "investor_type"
	FieldCountry        = "country"
	FieldAge            = "age"
	FieldIncome         = "income"
	FieldDocumentHashes = "document_hashes"
	FieldDocumentTypes  = "document_types"
	FieldNotes          = "notes"
)

// InvestorType is the investor classification chosen during onboarding.
type InvestorType string

const (
	InvestorIndividual    InvestorType = "individual"
	InvestorAccredited    InvestorType = "accredited"
	InvestorInstitutional InvestorType = "institutional"
)

// Payload is the input of one step. Document lists are only read by the
// document upload step.
type Payload struct {
	Fields         map[string]string
	DocumentHashes []string
	DocumentTypes  []string
}

// JurisdictionCheck reports whether a country code is allowed.
type JurisdictionCheck func(country string) bool

// Validate checks p against step and returns the fields to store. allowed
// is nil when the session has no tenant.
func Validate(step Step, p Payload, allowed JurisdictionCheck) (map[string]string, error) {
	switch step {
	case StepRegistration:
		out, err := required(p, FieldEmail, FieldPasswordHash, FieldFirstName, FieldLastName)
		if err != nil {
			return nil, err
		}
		if !strings.Contains(out[FieldEmail], "@") {
			return nil, dErrors.New(dErrors.CodeValidation, "email is invalid")
		}
		return out, nil

	case StepInvestorTypeSelection:
		out, err := required(p, FieldInvestorType)
		if err != nil {
			return nil, err
		}
		kind := InvestorType(strings.ToLower(out[FieldInvestorType]))
		switch kind {
		case InvestorIndividual, InvestorAccredited, InvestorInstitutional:
		default:
			return nil, dErrors.New(dErrors.CodeValidation, "investor_type must be individual, accredited or institutional")
		}
		out[FieldInvestorType] = string(kind)
		return out, nil

	case StepEligibilityCheck:
		out, err := required(p, FieldCountry, FieldAge, FieldIncome)
		if err != nil {
			return nil, err
		}
		age, err := strconv.Atoi(out[FieldAge])
		if err != nil || age <= 0 {
			return nil, dErrors.New(dErrors.CodeValidation, "age must be a positive integer")
		}
		out[FieldCountry] = strings.ToUpper(out[FieldCountry])
		if allowed != nil && !allowed(out[FieldCountry]) {
			return nil, dErrors.New(dErrors.CodeValidation, "country is not an allowed jurisdiction")
		}
		return out, nil

	case StepDocumentUpload:
		if len(p.DocumentHashes) == 0 || len(p.DocumentTypes) == 0 {
			return nil, dErrors.New(dErrors.CodeValidation, "document hashes and types are required")
		}
		if len(p.DocumentHashes) != len(p.DocumentTypes) {
			return nil, dErrors.New(dErrors.CodeValidation, "document hashes and types must have the same length")
		}
		for i := range p.DocumentHashes {
			if strings.TrimSpace(p.DocumentHashes[i]) == "" || strings.TrimSpace(p.DocumentTypes[i]) == "" {
				return nil, dErrors.New(dErrors.CodeValidation, "document entries cannot be empty")
			}
		}
		hashes, err := json.Marshal(p.DocumentHashes)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode document hashes")
		}
		types, err := json.Marshal(p.DocumentTypes)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode document types")
		}
		return map[string]string{
			FieldDocumentHashes: string(hashes),
			FieldDocumentTypes:  string(types),
		}, nil

	case StepFinalVerification:
		out := map[string]string{}
		if notes := strings.TrimSpace(p.Fields[FieldNotes]); notes != "" {
			out[FieldNotes] = notes
		}
		return out, nil
	}
	return nil, dErrors.New(dErrors.CodeInvalidStateTransition, "step "+string(step)+" cannot be executed")
}

func required(p Payload, names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	for _, name := range names {
		v := strings.TrimSpace(p.Fields[name])
		if v == "" {
			return nil, dErrors.New(dErrors.CodeValidation, name+" is required")
		}
		out[name] = v
	}
	return out, nil
}
