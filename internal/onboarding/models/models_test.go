package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "veriledger/pkg/domain-errors"
)

var now = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

func TestSequenceIsLinear(t *testing.T) {
	assert.Equal(t, []Step{
		StepRegistration,
		StepInvestorTypeSelection,
		StepEligibilityCheck,
		StepDocumentUpload,
		StepFinalVerification,
	}, Sequence)
}

func TestCheckTransitionsRejectsBrokenTables(t *testing.T) {
	tables := map[string]map[Step]edge{
		"missing failure edge": {
			StepNotStarted:   {next: StepRegistration},
			StepRegistration: {next: StepCompleted},
		},
		"dead end": {
			StepNotStarted:   {next: StepRegistration},
			StepRegistration: {next: StepDocumentUpload, fail: StepFailed},
		},
		"cycle": {
			StepNotStarted:   {next: StepRegistration},
			StepRegistration: {next: StepNotStarted, fail: StepFailed},
		},
		"orphan state": {
			StepNotStarted:     {next: StepRegistration},
			StepRegistration:   {next: StepCompleted, fail: StepFailed},
			StepDocumentUpload: {next: StepCompleted, fail: StepFailed},
		},
	}
	for name, table := range tables {
		assert.Error(t, checkTransitions(table), name)
	}
	assert.NoError(t, checkTransitions(transitions))
}

func TestSessionAdvancesInOrder(t *testing.T) {
	s, err := NewSession("0xinvestor", "", now)
	require.NoError(t, err)
	assert.Equal(t, StepRegistration, s.CurrentStep)

	err = s.CanExecute(StepDocumentUpload)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))

	for i, step := range Sequence {
		next, err := s.Complete(step, now)
		require.NoError(t, err)
		if i < len(Sequence)-1 {
			assert.Equal(t, Sequence[i+1], next)
		} else {
			assert.Equal(t, StepCompleted, next)
		}
	}
	assert.Equal(t, Sequence, s.CompletedSteps)

	s.Finish("did:veri:abc", "0xcred", now)
	assert.False(t, s.Active)
	assert.True(t, dErrors.HasCode(s.Fail("late", now), dErrors.CodeInvalidStateTransition))
}

func TestParseStep(t *testing.T) {
	s, err := ParseStep(" document_upload ")
	require.NoError(t, err)
	assert.Equal(t, StepDocumentUpload, s)

	_, err = ParseStep("SKIP_AHEAD")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	fields := func(kv ...string) Payload {
		m := map[string]string{}
		for i := 0; i < len(kv); i += 2 {
			m[kv[i]] = kv[i+1]
		}
		return Payload{Fields: m}
	}
	onlyUS := func(c string) bool { return c == "US" }

	valid := []struct {
		step    Step
		payload Payload
	}{
		{StepRegistration, fields(FieldEmail, "a@b.io", FieldPasswordHash, "h", FieldFirstName, "Ada", FieldLastName, "L")},
		{StepInvestorTypeSelection, fields(FieldInvestorType, "Accredited")},
		{StepEligibilityCheck, fields(FieldCountry, "us", FieldAge, "40", FieldIncome, "100000")},
		{StepDocumentUpload, Payload{DocumentHashes: []string{"0xabc"}, DocumentTypes: []string{"passport"}}},
		{StepFinalVerification, Payload{}},
	}
	for _, tc := range valid {
		_, err := Validate(tc.step, tc.payload, onlyUS)
		assert.NoError(t, err, string(tc.step))
	}

	invalid := map[string]struct {
		step    Step
		payload Payload
	}{
		"email without at":      {StepRegistration, fields(FieldEmail, "ab.io", FieldPasswordHash, "h", FieldFirstName, "A", FieldLastName, "L")},
		"missing last name":     {StepRegistration, fields(FieldEmail, "a@b.io", FieldPasswordHash, "h", FieldFirstName, "A")},
		"unknown investor type": {StepInvestorTypeSelection, fields(FieldInvestorType, "whale")},
		"zero age":              {StepEligibilityCheck, fields(FieldCountry, "US", FieldAge, "0", FieldIncome, "1")},
		"non-numeric age":       {StepEligibilityCheck, fields(FieldCountry, "US", FieldAge, "forty", FieldIncome, "1")},
		"disallowed country":    {StepEligibilityCheck, fields(FieldCountry, "FR", FieldAge, "30", FieldIncome, "1")},
		"mismatched documents":  {StepDocumentUpload, Payload{DocumentHashes: []string{"0xa", "0xb"}, DocumentTypes: []string{"passport"}}},
		"empty document entry":  {StepDocumentUpload, Payload{DocumentHashes: []string{" "}, DocumentTypes: []string{"passport"}}},
		"no documents":          {StepDocumentUpload, Payload{}},
	}
	for name, tc := range invalid {
		_, err := Validate(tc.step, tc.payload, onlyUS)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), name)
	}

	out, err := Validate(StepEligibilityCheck, fields(FieldCountry, "fr", FieldAge, "30", FieldIncome, "1"), nil)
	require.NoError(t, err)
	assert.Equal(t, "FR", out[FieldCountry], "no tenant allows any country")

	out, err = Validate(StepDocumentUpload, Payload{DocumentHashes: []string{"0xa"}, DocumentTypes: []string{"passport"}}, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `["0xa"]`, out[FieldDocumentHashes])
}
