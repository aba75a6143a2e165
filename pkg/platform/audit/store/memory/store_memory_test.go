package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "ishemalink/pkg/domain"
	audit "ishemalink/pkg/platform/audit"
)

type AuditStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *AuditStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func TestAuditStoreSuite(t *testing.T) {
	suite.Run(t, new(AuditStoreSuite))
}

func (s *AuditStoreSuite) TestListRecentOrdersNewestFirst() {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, action := range []audit.Action{audit.ActionUserRegistered, audit.ActionKYCVerified, audit.ActionDataExport} {
		s.Require().NoError(s.store.Append(s.ctx, audit.Event{
			Action:    action,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	events, err := s.store.ListRecent(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(audit.ActionDataExport, events[0].Action)
	s.Equal(audit.ActionKYCVerified, events[1].Action)
}

func (s *AuditStoreSuite) TestListByActor() {
	actor := id.UserID(uuid.New())
	other := id.UserID(uuid.New())

	s.Require().NoError(s.store.Append(s.ctx, audit.Event{ActorID: &actor, Action: audit.ActionKYCVerified}))
	s.Require().NoError(s.store.Append(s.ctx, audit.Event{ActorID: &other, Action: audit.ActionDataExport}))
	s.Require().NoError(s.store.Append(s.ctx, audit.Event{Action: audit.ActionLoginFailed}))

	events, err := s.store.ListByActor(s.ctx, actor)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionKYCVerified, events[0].Action)
}

func (s *AuditStoreSuite) TestStoredHistoryIsDetachedFromCaller() {
	actor := id.UserID(uuid.New())
	submitted := actor
	event := audit.Event{ActorID: &submitted, Action: audit.ActionRightToBeForgotten}
	s.Require().NoError(s.store.Append(s.ctx, event))

	*event.ActorID = id.UserID(uuid.New())

	events, err := s.store.ListByActor(s.ctx, actor)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *AuditStoreSuite) TestListedEventsAreDetachedFromHistory() {
	actor := id.UserID(uuid.New())
	s.Require().NoError(s.store.Append(s.ctx, audit.Event{ActorID: &actor, Action: audit.ActionKYCVerified}))

	recent, err := s.store.ListRecent(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(recent, 1)
	*recent[0].ActorID = id.UserID(uuid.New())

	byActor, err := s.store.ListByActor(s.ctx, actor)
	s.Require().NoError(err)
	s.Require().Len(byActor, 1)
	*byActor[0].ActorID = id.UserID(uuid.New())

	events, err := s.store.ListByActor(s.ctx, actor)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(actor, *events[0].ActorID)
}

func (s *AuditStoreSuite) TestCategories() {
	s.Equal(audit.CategoryCompliance, audit.ActionKYCVerified.Category())
	s.Equal(audit.CategorySecurity, audit.ActionRoleAssigned.Category())
	s.Equal(audit.CategoryOperations, audit.ActionShipmentStatusChanged.Category())
}
