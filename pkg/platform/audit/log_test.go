package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/audit"
	outboxmemory "veriledger/pkg/platform/audit/outbox/store/memory"
	auditmemory "veriledger/pkg/platform/audit/store/memory"
	"veriledger/pkg/platform/tx"
	"veriledger/pkg/requestcontext"
)

// LogSuite covers append semantics of the audit log.
//
// Justification: audit entries are the externally observable record of every
// state change; an entry that survives a rolled-back call would report a
// change that never happened.
type LogSuite struct {
	suite.Suite
	store  *auditmemory.Store
	outbox *outboxmemory.Store
	log    *audit.Log
	ledger *tx.Ledger
}

func TestLogSuite(t *testing.T) {
	suite.Run(t, new(LogSuite))
}

func (s *LogSuite) SetupTest() {
	s.store = auditmemory.New()
	s.outbox = outboxmemory.New()
	l, err := audit.NewLog(s.store, audit.WithOutbox(s.outbox))
	s.Require().NoError(err)
	s.log = l
	s.ledger = tx.NewLedger()
}

func (s *LogSuite) TestNewLog() {
	_, err := audit.NewLog(nil)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *LogSuite) TestAppend() {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	ctx = requestcontext.WithClient(ctx, requestcontext.Client{IP: "10.0.0.1", Browser: "Firefox"})

	s.Run("stamps entry and stages it for the stream", func() {
		err := s.log.Append(ctx, audit.Entry{
			Actor:        "0xowner",
			Action:       audit.ActionTenantCreated,
			TenantID:     "acme",
			Jurisdiction: "US",
			Detail:       map[string]string{"name": "Acme"},
		})
		s.Require().NoError(err)

		entries, err := s.log.ListByActor(ctx, "0xowner")
		s.Require().NoError(err)
		s.Require().Len(entries, 1)
		e := entries[0]
		s.Equal(now, e.Timestamp)
		s.Equal("req-1", e.RequestID)
		s.Equal(int64(1), e.Sequence)
		s.Equal("Acme", e.Detail["name"])
		s.Equal("10.0.0.1", e.Detail["client_ip"])
		s.Equal("Firefox", e.Detail["client_browser"])

		staged, err := s.outbox.FetchUnprocessed(ctx, 10)
		s.Require().NoError(err)
		s.Require().Len(staged, 1)
		s.Equal(string(audit.ActionTenantCreated), staged[0].EventType)
		s.Equal("acme", staged[0].AggregateID)

		var msg audit.Message
		s.Require().NoError(json.Unmarshal(staged[0].Payload, &msg))
		s.Equal("0xowner", msg.Actor)
		s.Equal("US", msg.Jurisdiction)
	})

	s.Run("rejects zero actor and empty action", func() {
		err := s.log.Append(ctx, audit.Entry{Action: audit.ActionGrantCreated})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

		err = s.log.Append(ctx, audit.Entry{Actor: "0xowner"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("does not alias the caller's detail map", func() {
		detail := map[string]string{"k": "v"}
		s.Require().NoError(s.log.Append(ctx, audit.Entry{Actor: "0xa", Action: audit.ActionGrantCreated, Detail: detail}))
		detail["k"] = "changed"

		entries, err := s.log.ListByAction(ctx, audit.ActionGrantCreated)
		s.Require().NoError(err)
		s.Equal("v", entries[0].Detail["k"])
	})
}

func (s *LogSuite) TestRollback() {
	ctx := context.Background()
	s.Require().NoError(s.log.Append(ctx, audit.Entry{Actor: "0xa", Action: audit.ActionGrantCreated}))

	failure := errors.New("later step failed")
	err := s.ledger.RunInTx(ctx, func(ctx context.Context) error {
		s.Require().NoError(s.log.Append(ctx, audit.Entry{Actor: "0xa", Action: audit.ActionGrantRevoked}))
		return failure
	})
	s.ErrorIs(err, failure)

	n, err := s.log.Count(ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	pending, err := s.outbox.CountPending(ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), pending)
}

func (s *LogSuite) TestReportsOnlyCommittedEntries() {
	var buf bytes.Buffer
	l, err := audit.NewLog(s.store, audit.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	s.Require().NoError(err)
	ctx := context.Background()

	err = s.ledger.RunInTx(ctx, func(ctx context.Context) error {
		s.Require().NoError(l.Append(ctx, audit.Entry{Actor: "0xa", Action: audit.ActionGrantRevoked}))
		s.Empty(buf.String(), "nothing is reported before commit")
		return errors.New("later step failed")
	})
	s.Require().Error(err)
	s.Empty(buf.String())

	err = s.ledger.RunInTx(ctx, func(ctx context.Context) error {
		return l.Append(ctx, audit.Entry{Actor: "0xa", Action: audit.ActionGrantCreated})
	})
	s.Require().NoError(err)
	s.Equal(1, strings.Count(buf.String(), "log_type=audit"))
	s.Contains(buf.String(), string(audit.ActionGrantCreated))
	s.NotContains(buf.String(), string(audit.ActionGrantRevoked))
}

func (s *LogSuite) TestList() {
	ctx := context.Background()
	for _, e := range []audit.Entry{
		{Actor: "0xa", Action: audit.ActionCredentialIssued, TenantID: "t1"},
		{Actor: "0xb", Action: audit.ActionCredentialIssued, TenantID: "t2"},
		{Actor: "0xa", Action: audit.ActionCredentialRevoked, TenantID: "t1"},
	} {
		s.Require().NoError(s.log.Append(ctx, e))
	}

	s.Run("newest first", func() {
		entries, err := s.log.ListByActor(ctx, id.Identity("0xa"))
		s.Require().NoError(err)
		s.Require().Len(entries, 2)
		s.Equal(audit.ActionCredentialRevoked, entries[0].Action)
	})

	s.Run("combined filter and limit", func() {
		entries, err := s.log.List(ctx, audit.Filter{Action: audit.ActionCredentialIssued, Limit: 1})
		s.Require().NoError(err)
		s.Require().Len(entries, 1)
		s.Equal(id.Identity("0xb"), entries[0].Actor)

		entries, err = s.log.List(ctx, audit.Filter{TenantID: "t1", Action: audit.ActionCredentialIssued})
		s.Require().NoError(err)
		s.Len(entries, 1)
	})
}
