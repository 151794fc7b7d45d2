package service

import (
	"context"
	"encoding/json"

	credservice "veriledger/internal/credential/service"
	"veriledger/internal/onboarding/models"
	"veriledger/internal/platform/tracer"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/requestcontext"
)

// credentialFields are the KYC fields copied into the issued credential.
// Registration details and document hashes stay in the KYC data store.
var credentialFields = []string{models.FieldInvestorType, models.FieldCountry}

// finalize registers a DID and issues a credential for the session subject,
// then marks the session completed. The caller persists the session; it
// must run inside the caller's transaction so a failed issuance rolls the
// whole step back.
func (o *Orchestrator) finalize(ctx context.Context, session *models.Session) (err error) {
	ctx, span := o.tracer.Start(ctx, tracer.SpanOnboardingFinalize,
		tracer.String(tracer.AttrSubject, tracer.HashIdentity(session.Subject.String())),
	)
	defer func() { span.End(err) }()

	if !session.Active {
		return dErrors.New(dErrors.CodeInvalidStateTransition, "session is not active")
	}
	kyc, err := o.data.Get(ctx, session.ID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session data")
	}

	document, err := json.Marshal(map[string]string{
		"subject":    session.Subject.String(),
		"session_id": session.ID.String(),
		"tenant_id":  session.TenantID.String(),
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode DID document")
	}
	did, err := o.credentials.RegisterDID(ctx, o.issuance.Issuer, session.Subject, document)
	if err != nil {
		return err
	}

	claims := map[string]string{
		"did":        did.ID.String(),
		"session_id": session.ID.String(),
	}
	if !session.TenantID.IsZero() {
		claims["tenant_id"] = session.TenantID.String()
	}
	for _, name := range credentialFields {
		if v, ok := kyc[name]; ok {
			claims[name] = v
		}
	}
	data, err := json.Marshal(claims)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode credential data")
	}

	now := requestcontext.Now(ctx)
	cmd := credservice.IssueCommand{
		Issuer:   o.issuance.Issuer,
		Subject:  session.Subject,
		Type:     o.issuance.CredentialType,
		Data:     data,
		IssuedAt: now,
	}
	if o.issuance.Validity > 0 {
		cmd.ExpiresAt = now.Add(o.issuance.Validity)
	}
	cred, err := o.credentials.Issue(ctx, o.issuance.Issuer, cmd)
	if err != nil {
		return err
	}
	span.SetAttributes(tracer.String(tracer.AttrCredential, cred.ID.String()))

	session.Finish(did.ID, cred.ID, now)
	return nil
}
