package store

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"ishemalink/internal/shipment/models"
	id "ishemalink/pkg/domain"
	"ishemalink/pkg/platform/sentinel"
)

type ShipmentStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	owner id.UserID
	base  time.Time
}

func TestShipmentStoreSuite(t *testing.T) {
	suite.Run(t, new(ShipmentStoreSuite))
}

func (s *ShipmentStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.owner = id.UserID(uuid.New())
	s.base = time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
}

func (s *ShipmentStoreSuite) seed(tracking, origin, destination string, status models.Status, age time.Duration) *models.Shipment {
	sh := &models.Shipment{
		ID:             id.ShipmentID(uuid.New()),
		TrackingNumber: tracking,
		OwnerID:        s.owner,
		Origin:         origin,
		Destination:    destination,
		Sector:         "Gasabo",
		Status:         status,
		CreatedAt:      s.base.Add(-age),
		UpdatedAt:      s.base.Add(-age),
	}
	s.Require().NoError(s.store.Create(s.ctx, sh))
	return sh
}

func (s *ShipmentStoreSuite) ownerScope() models.Scope {
	return models.Scope{Kind: models.ScopeOwner, UserID: s.owner}
}

func (s *ShipmentStoreSuite) TestListFiltersAndOrdering() {
	oldest := s.seed("RW-AAAA0001", "Kigali", "Musanze", models.StatusPending, 3*time.Hour)
	middle := s.seed("RW-BBBB0002", "Huye", "Kigali", models.StatusInTransit, 2*time.Hour)
	newest := s.seed("RW-CCCC0003", "Kigali", "Rubavu", models.StatusInTransit, time.Hour)
	all := models.Filter{Page: 1, PageSize: 20}

	s.Run("newest first", func() {
		page, err := s.store.List(s.ctx, s.ownerScope(), all)
		s.Require().NoError(err)
		s.Equal(3, page.Total)
		s.Equal([]id.ShipmentID{newest.ID, middle.ID, oldest.ID}, ids(page))
	})

	s.Run("status is exact", func() {
		f := all
		f.Status = models.StatusInTransit
		page, err := s.store.List(s.ctx, s.ownerScope(), f)
		s.Require().NoError(err)
		s.Equal([]id.ShipmentID{newest.ID, middle.ID}, ids(page))
	})

	s.Run("destination is a case-insensitive substring", func() {
		f := all
		f.Destination = "kig"
		page, err := s.store.List(s.ctx, s.ownerScope(), f)
		s.Require().NoError(err)
		s.Equal([]id.ShipmentID{middle.ID}, ids(page))
	})

	s.Run("search spans tracking number, origin and destination", func() {
		f := all
		f.Search = "kigali"
		page, err := s.store.List(s.ctx, s.ownerScope(), f)
		s.Require().NoError(err)
		s.Len(page.Shipments, 3)

		f.Search = "aaaa"
		page, err = s.store.List(s.ctx, s.ownerScope(), f)
		s.Require().NoError(err)
		s.Equal([]id.ShipmentID{oldest.ID}, ids(page))
	})

	s.Run("filters compose with AND", func() {
		f := all
		f.Status = models.StatusInTransit
		f.Search = "rubavu"
		page, err := s.store.List(s.ctx, s.ownerScope(), f)
		s.Require().NoError(err)
		s.Equal([]id.ShipmentID{newest.ID}, ids(page))
	})

	s.Run("pagination keeps the total", func() {
		page, err := s.store.List(s.ctx, s.ownerScope(), models.Filter{Page: 2, PageSize: 2})
		s.Require().NoError(err)
		s.Equal(3, page.Total)
		s.Equal([]id.ShipmentID{oldest.ID}, ids(page))

		page, err = s.store.List(s.ctx, s.ownerScope(), models.Filter{Page: 5, PageSize: 2})
		s.Require().NoError(err)
		s.Empty(page.Shipments)
	})

	s.Run("other owners see nothing", func() {
		page, err := s.store.List(s.ctx, models.Scope{Kind: models.ScopeOwner, UserID: id.UserID(uuid.New())}, all)
		s.Require().NoError(err)
		s.Zero(page.Total)
	})
}

func (s *ShipmentStoreSuite) TestEqualTimestampsPageDeterministically() {
	var ids []string
	for _, tracking := range []string{"RW-TIE00001", "RW-TIE00002", "RW-TIE00003", "RW-TIE00004"} {
		ids = append(ids, s.seed(tracking, "Kigali", "Huye", models.StatusPending, time.Hour).ID.String())
	}
	sort.Strings(ids)

	var paged []string
	for page := 1; page <= 2; page++ {
		res, err := s.store.List(s.ctx, s.ownerScope(), models.Filter{Page: page, PageSize: 2})
		s.Require().NoError(err)
		s.Require().Len(res.Shipments, 2)
		for _, sh := range res.Shipments {
			paged = append(paged, sh.ID.String())
		}
	}
	s.Equal(ids, paged)
}

func (s *ShipmentStoreSuite) TestGetIsScoped() {
	sh := s.seed("RW-DDDD0004", "Kigali", "Huye", models.StatusPending, 0)

	got, err := s.store.Get(s.ctx, models.Scope{Kind: models.ScopeSector, Sector: "Gasabo"}, sh.ID)
	s.Require().NoError(err)
	s.Equal(sh.TrackingNumber, got.TrackingNumber)

	_, err = s.store.Get(s.ctx, models.Scope{Kind: models.ScopeSector, Sector: "Kicukiro"}, sh.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ShipmentStoreSuite) TestDuplicateTrackingNumber() {
	s.seed("RW-EEEE0005", "Kigali", "Huye", models.StatusPending, 0)
	dup := &models.Shipment{ID: id.ShipmentID(uuid.New()), TrackingNumber: "RW-EEEE0005"}
	s.ErrorIs(s.store.Create(s.ctx, dup), sentinel.ErrAlreadyUsed)
}

func (s *ShipmentStoreSuite) TestStatusAndLogs() {
	sh := s.seed("RW-FFFF0006", "Kigali", "Huye", models.StatusPending, 0)
	at := s.base.Add(time.Minute)

	s.Require().NoError(s.store.UpdateStatus(s.ctx, sh.ID, models.StatusInTransit, at))
	s.Require().NoError(s.store.AppendLog(s.ctx, models.Log{ShipmentID: sh.ID, Status: models.StatusInTransit, Location: "Nyabugogo", CreatedAt: at}))

	got, err := s.store.Get(s.ctx, models.Scope{Kind: models.ScopeAll}, sh.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusInTransit, got.Status)
	s.Equal(at, got.UpdatedAt)

	logs, err := s.store.Logs(s.ctx, sh.ID)
	s.Require().NoError(err)
	s.Require().Len(logs, 1)
	s.Equal("Nyabugogo", logs[0].Location)

	s.ErrorIs(s.store.UpdateStatus(s.ctx, id.ShipmentID(uuid.New()), models.StatusFailed, at), sentinel.ErrNotFound)
}

func ids(page *models.Page) []id.ShipmentID {
	out := make([]id.ShipmentID, 0, len(page.Shipments))
	for _, sh := range page.Shipments {
		out = append(out, sh.ID)
	}
	return out
}
