package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	idmodels "ishemalink/internal/identity/models"
	"ishemalink/internal/shipment/models"
	"ishemalink/internal/shipment/service/mocks"
	"ishemalink/internal/shipment/store"
	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
	"ishemalink/pkg/platform/audit"
	"ishemalink/pkg/platform/fieldcipher"
	"ishemalink/pkg/requestcontext"
)

var trackingFormat = regexp.MustCompile(`^RW-[A-Z0-9]{8}$`)

type ShipmentServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	users    *mocks.MockUserLookup
	notifier *mocks.MockNotifier
	auditor  *mocks.MockAuditPublisher
	store    *store.InMemory
	cipher   *fieldcipher.Cipher
	service  *Service
	ctx      context.Context
	now      time.Time

	customer requestcontext.Caller
	driver   requestcontext.Caller
	agent    requestcontext.Caller
}

func TestShipmentServiceSuite(t *testing.T) {
	suite.Run(t, new(ShipmentServiceSuite))
}

func (s *ShipmentServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.users = mocks.NewMockUserLookup(s.ctrl)
	s.notifier = mocks.NewMockNotifier(s.ctrl)
	s.auditor = mocks.NewMockAuditPublisher(s.ctrl)
	s.store = store.NewInMemory()

	c, err := fieldcipher.New(bytes.Repeat([]byte{9}, fieldcipher.KeySize))
	s.Require().NoError(err)
	s.cipher = c

	s.service = New(s.store, s.users, s.notifier, s.auditor, c,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithNotifyTimeout(50*time.Millisecond),
	)
	s.now = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	s.customer = requestcontext.Caller{UserID: id.UserID(uuid.New()), Role: id.RoleCustomer}
	s.driver = requestcontext.Caller{UserID: id.UserID(uuid.New()), Role: id.RoleDriver}
	s.agent = requestcontext.Caller{UserID: id.UserID(uuid.New()), Role: id.RoleAgent, AssignedSector: "Gasabo"}
}

func (s *ShipmentServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ShipmentServiceSuite) create(sector string) *models.Shipment {
	req := &models.CreateRequest{
		Origin:      "Kigali",
		Destination: "Huye",
		Sector:      sector,
		DriverID:    s.driver.UserID.String(),
		CargoValue:  "250000",
	}
	sh, err := s.service.Create(s.ctx, s.customer, req)
	s.Require().NoError(err)
	return sh
}

func (s *ShipmentServiceSuite) expectOwnerNotified() *string {
	var msg string
	s.users.EXPECT().Get(gomock.Any(), s.customer.UserID).
		Return(&idmodels.User{ID: s.customer.UserID, Phone: "+250788123456"}, nil)
	s.notifier.EXPECT().Send(gomock.Any(), "+250788123456", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, m string) error {
			msg = m
			return nil
		})
	return &msg
}

func (s *ShipmentServiceSuite) TestCreate() {
	sh := s.create("Gasabo")

	s.Regexp(trackingFormat, sh.TrackingNumber)
	s.Equal(s.customer.UserID, sh.OwnerID)
	s.Equal(models.StatusPending, sh.Status)
	s.True(fieldcipher.IsEncrypted(sh.CargoValue), "cargo value is sealed")
	s.Require().NotNil(sh.DriverID)
	s.Equal(s.driver.UserID, *sh.DriverID)
}

func (s *ShipmentServiceSuite) TestDetailOpensCargoValueForOwnerOnly() {
	sh := s.create("Gasabo")

	detail, err := s.service.Get(s.ctx, s.customer, sh.ID)
	s.Require().NoError(err)
	s.Equal("250000", detail.CargoValue)

	detail, err = s.service.Get(s.ctx, s.agent, sh.ID)
	s.Require().NoError(err)
	s.Empty(detail.CargoValue)
}

func (s *ShipmentServiceSuite) TestListIsRoleScoped() {
	inSector := s.create("Gasabo")
	s.create("Kicukiro")
	filter := models.Filter{Page: 1, PageSize: 20}

	page, err := s.service.List(s.ctx, s.agent, filter)
	s.Require().NoError(err)
	s.Require().Len(page.Shipments, 1)
	s.Equal(inSector.ID, page.Shipments[0].ID)

	page, err = s.service.List(s.ctx, s.driver, filter)
	s.Require().NoError(err)
	s.Len(page.Shipments, 2)

	page, err = s.service.List(s.ctx, s.customer, filter)
	s.Require().NoError(err)
	s.Len(page.Shipments, 2)

	page, err = s.service.List(s.ctx, requestcontext.Caller{UserID: id.UserID(uuid.New()), Role: id.RoleCustomer}, filter)
	s.Require().NoError(err)
	s.Empty(page.Shipments)

	page, err = s.service.Manifests(s.ctx, filter)
	s.Require().NoError(err)
	s.Equal(2, page.Total)
}

func (s *ShipmentServiceSuite) TestUpdateStatus() {
	sh := s.create("Gasabo")

	s.Run("driver in scope updates, logs and notifies", func() {
		msg := s.expectOwnerNotified()
		s.auditor.EXPECT().Record(gomock.Any(), &s.driver.UserID, audit.ActionShipmentStatusChanged, gomock.Any()).Return(nil)

		updated, err := s.service.UpdateStatus(s.ctx, s.driver, sh.ID, &models.UpdateStatusRequest{Status: "IN_TRANSIT", Location: "Nyabugogo"})
		s.Require().NoError(err)
		s.Equal(models.StatusInTransit, updated.Status)
		s.Contains(*msg, "IN_TRANSIT")
		s.Contains(*msg, "Nyabugogo")

		logs, err := s.store.Logs(s.ctx, sh.ID)
		s.Require().NoError(err)
		s.Require().Len(logs, 1)
		s.Equal("Nyabugogo", logs[0].Location)
	})

	s.Run("customer may not update", func() {
		_, err := s.service.UpdateStatus(s.ctx, s.customer, sh.ID, &models.UpdateStatusRequest{Status: "DELIVERED", Location: "Huye"})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("agent outside the sector sees not found", func() {
		other := requestcontext.Caller{UserID: id.UserID(uuid.New()), Role: id.RoleAgent, AssignedSector: "Kicukiro"}
		_, err := s.service.UpdateStatus(s.ctx, other, sh.ID, &models.UpdateStatusRequest{Status: "DELIVERED", Location: "Huye"})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		logs, _ := s.store.Logs(s.ctx, sh.ID)
		s.Len(logs, 1, "no history written")
	})

	s.Run("notification failure keeps the update", func() {
		s.users.EXPECT().Get(gomock.Any(), s.customer.UserID).
			Return(&idmodels.User{ID: s.customer.UserID, Phone: "+250788123456"}, nil)
		s.notifier.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("gateway down"))
		s.auditor.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		updated, err := s.service.UpdateStatus(s.ctx, s.agent, sh.ID, &models.UpdateStatusRequest{Status: "DELIVERED", Location: "Huye"})
		s.Require().NoError(err)
		s.Equal(models.StatusDelivered, updated.Status)

		logs, _ := s.store.Logs(s.ctx, sh.ID)
		s.Len(logs, 2)
	})

	s.Run("slow notification is cut off by the timeout", func() {
		s.users.EXPECT().Get(gomock.Any(), s.customer.UserID).
			Return(&idmodels.User{ID: s.customer.UserID, Phone: "+250788123456"}, nil)
		s.notifier.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _, _ string) error {
				<-ctx.Done()
				return ctx.Err()
			})
		s.auditor.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		start := time.Now()
		_, err := s.service.UpdateStatus(s.ctx, s.agent, sh.ID, &models.UpdateStatusRequest{Status: "FAILED", Location: "Huye"})
		s.Require().NoError(err)
		s.Less(time.Since(start), 2*time.Second)
	})
}

func (s *ShipmentServiceSuite) TestUnknownShipment() {
	_, err := s.service.Get(s.ctx, s.customer, id.ShipmentID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestNewTrackingNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		tn, err := newTrackingNumber()
		if err != nil {
			t.Fatal(err)
		}
		if !trackingFormat.MatchString(tn) {
			t.Fatalf("tracking number %q has the wrong shape", tn)
		}
		seen[tn] = true
	}
	if len(seen) < 495 {
		t.Fatalf("tracking numbers repeat too often: %d unique of 500", len(seen))
	}
}
