package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
)

type signerSet map[id.Identity]bool

func (s signerSet) IsAuthorizedSigner(identity id.Identity) bool { return s[identity] }

// GateSuite covers both gating variants and the in-place upgrade.
//
// Justification: every privileged operation in the ledger is decided here.
type GateSuite struct {
	suite.Suite
	ctx     context.Context
	signers signerSet
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.ctx = context.Background()
	s.signers = signerSet{"0xs1": true, "0xs2": true}
}

func (s *GateSuite) TestOwner() {
	g, err := Owner("0xowner")
	s.Require().NoError(err)
	s.Equal(ModeOwner, g.Mode())

	s.NoError(g.Authorize(s.ctx, "0xowner"))
	s.True(dErrors.HasCode(g.Authorize(s.ctx, "0xother"), dErrors.CodeUnauthorized))
	s.True(dErrors.HasCode(g.Authorize(s.ctx, ""), dErrors.CodeUnauthorized))

	_, err = Owner("")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *GateSuite) TestSigners() {
	g, err := Signers(s.signers)
	s.Require().NoError(err)
	s.Equal(ModeMultisig, g.Mode())

	s.NoError(g.Authorize(s.ctx, "0xs1"))
	s.True(dErrors.HasCode(g.Authorize(s.ctx, "0xowner"), dErrors.CodeUnauthorized))

	_, err = Signers(nil)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *GateSuite) TestDual() {
	s.Run("falls back to owner without authority", func() {
		d, err := NewDual("0xowner", nil)
		s.Require().NoError(err)
		s.Equal(ModeOwner, d.Mode())
		s.NoError(d.Authorize(s.ctx, "0xowner"))
		s.Error(d.Authorize(s.ctx, "0xs1"))
	})

	s.Run("routes through signers when configured", func() {
		d, err := NewDual("0xowner", s.signers)
		s.Require().NoError(err)
		s.NoError(d.Authorize(s.ctx, "0xs2"))
		s.True(dErrors.HasCode(d.Authorize(s.ctx, "0xowner"), dErrors.CodeUnauthorized))
	})

	s.Run("owner upgrades in place once", func() {
		d, err := NewDual("0xowner", nil)
		s.Require().NoError(err)

		err = d.Upgrade(s.ctx, "0xs1", s.signers)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		s.Require().NoError(d.Upgrade(s.ctx, "0xowner", s.signers))
		s.Equal(ModeMultisig, d.Mode())
		s.NoError(d.Authorize(s.ctx, "0xs1"))
		s.Error(d.Authorize(s.ctx, "0xowner"))

		err = d.Upgrade(s.ctx, "0xowner", s.signers)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
	})
}
