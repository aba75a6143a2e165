package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"ishemalink/internal/shipment/handler/mocks"
	"ishemalink/internal/shipment/models"
	"ishemalink/internal/shipment/service"
	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
	"ishemalink/pkg/requestcontext"
	"ishemalink/pkg/testutil"
)

type fixture struct {
	svc      *mocks.MockService
	router   chi.Router
	customer requestcontext.Caller
	driver   requestcontext.Caller
	gov      requestcontext.Caller
}

func setup(t *testing.T) fixture {
	ctrl := gomock.NewController(t)
	f := fixture{
		svc:      mocks.NewMockService(ctrl),
		router:   chi.NewRouter(),
		customer: testutil.NewCaller(id.RoleCustomer),
		driver:   testutil.NewCaller(id.RoleDriver),
		gov:      testutil.NewCaller(id.RoleGovernmentInspector),
	}
	auth := testutil.NewStaticAuthenticator(map[string]requestcontext.Caller{
		"customer": f.customer,
		"driver":   f.driver,
		"gov":      f.gov,
	})
	New(f.svc, auth, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(f.router)
	return f
}

func sampleShipment(owner id.UserID) *models.Shipment {
	return &models.Shipment{
		ID:             id.ShipmentID(uuid.New()),
		TrackingNumber: "RW-ABCD1234",
		OwnerID:        owner,
		Origin:         "Kigali",
		Destination:    "Musanze",
		CargoValue:     "enc:v1:sealed",
		Status:         models.StatusPending,
		CreatedAt:      time.Now(),
	}
}

func TestHandleCreate(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		f := setup(t)
		sh := sampleShipment(f.customer.UserID)
		f.svc.EXPECT().Create(gomock.Any(), f.customer, gomock.Any()).
			DoAndReturn(func(_ any, _ requestcontext.Caller, req *models.CreateRequest) (*models.Shipment, error) {
				assert.Equal(t, "Kigali", req.Origin)
				return sh, nil
			})

		req := testutil.Bearer(testutil.NewJSONRequest(t, http.MethodPost, "/api/domestic/shipments", map[string]any{
			"origin": "Kigali", "destination": "Musanze", "cargo_value": "150000",
		}), "customer")
		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		assert.NotContains(t, rr.Body.String(), "enc:v1:sealed")
		resp := testutil.UnmarshalResponse[map[string]any](t, rr)
		assert.Equal(t, "RW-ABCD1234", (*resp)["tracking_number"])
		assert.Equal(t, "PENDING", (*resp)["current_status"])
	})

	t.Run("missing fields", func(t *testing.T) {
		f := setup(t)
		req := testutil.Bearer(testutil.NewJSONRequest(t, http.MethodPost, "/api/domestic/shipments", map[string]any{}), "customer")
		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		errResp := testutil.UnmarshalErrorResponse(t, rr)
		assert.Contains(t, errResp.Fields, "origin")
		assert.Contains(t, errResp.Fields, "destination")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		f := setup(t)
		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/domestic/shipments", map[string]any{}))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}

func TestHandleList(t *testing.T) {
	f := setup(t)
	sh := sampleShipment(f.customer.UserID)
	f.svc.EXPECT().List(gomock.Any(), f.customer, models.Filter{Status: models.StatusPending, Page: 2, PageSize: 5}).
		Return(&models.Page{Total: 6, Shipments: []*models.Shipment{sh}}, nil)

	req := testutil.Bearer(testutil.NewRequest(t, http.MethodGet, "/api/domestic/shipments/list?status=pending&page=2&page_size=5"), "customer")
	rr := testutil.DoRequest(f.router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[pageResponse](t, rr)
	assert.Equal(t, 6, resp.Count)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 5, resp.PageSize)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, sh.ID.String(), resp.Results[0].ID)
	assert.Empty(t, resp.Results[0].CargoValue)
}

func TestHandleOpsListUsesCallerScope(t *testing.T) {
	f := setup(t)
	f.svc.EXPECT().List(gomock.Any(), f.driver, gomock.Any()).Return(&models.Page{}, nil)

	rr := testutil.DoRequest(f.router, testutil.Bearer(testutil.NewRequest(t, http.MethodGet, "/api/ops/shipments"), "driver"))

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[pageResponse](t, rr)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, models.DefaultPageSize, resp.PageSize)
	assert.NotNil(t, resp.Results)
}

func TestHandleManifests(t *testing.T) {
	t.Run("government inspector", func(t *testing.T) {
		f := setup(t)
		f.svc.EXPECT().Manifests(gomock.Any(), gomock.Any()).Return(&models.Page{Total: 0}, nil)
		rr := testutil.DoRequest(f.router, testutil.Bearer(testutil.NewRequest(t, http.MethodGet, "/api/gov/manifests"), "gov"))
		testutil.AssertStatus(t, rr, http.StatusOK)
	})

	t.Run("other roles are forbidden", func(t *testing.T) {
		f := setup(t)
		rr := testutil.DoRequest(f.router, testutil.Bearer(testutil.NewRequest(t, http.MethodGet, "/api/gov/manifests"), "customer"))
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})
}

func TestHandleGet(t *testing.T) {
	t.Run("detail with logs", func(t *testing.T) {
		f := setup(t)
		sh := sampleShipment(f.customer.UserID)
		f.svc.EXPECT().Get(gomock.Any(), f.customer, sh.ID).Return(&service.Detail{
			Shipment:   sh,
			CargoValue: "150000",
			Logs: []models.Log{
				{ShipmentID: sh.ID, Status: models.StatusInTransit, Location: "Nyabugogo", CreatedAt: time.Now()},
			},
		}, nil)

		rr := testutil.DoRequest(f.router, testutil.Bearer(testutil.NewRequest(t, http.MethodGet, "/api/domestic/shipments/"+sh.ID.String()), "customer"))

		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[shipmentResponse](t, rr)
		assert.Equal(t, "150000", resp.CargoValue)
		require.Len(t, resp.Logs, 1)
		assert.Equal(t, "Nyabugogo", resp.Logs[0].Location)
	})

	t.Run("malformed id", func(t *testing.T) {
		f := setup(t)
		rr := testutil.DoRequest(f.router, testutil.Bearer(testutil.NewRequest(t, http.MethodGet, "/api/domestic/shipments/not-a-uuid"), "customer"))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("out of scope", func(t *testing.T) {
		f := setup(t)
		shipmentID := id.ShipmentID(uuid.New())
		f.svc.EXPECT().Get(gomock.Any(), f.customer, shipmentID).Return(nil, dErrors.New(dErrors.CodeNotFound, "shipment not found"))
		rr := testutil.DoRequest(f.router, testutil.Bearer(testutil.NewRequest(t, http.MethodGet, "/api/domestic/shipments/"+shipmentID.String()), "customer"))
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}

func TestHandleUpdateStatus(t *testing.T) {
	tests := []struct {
		name   string
		caller string
		body   map[string]string
		err    error
		status int
	}{
		{name: "driver moves shipment", caller: "driver", body: map[string]string{"status": "in_transit", "location": "Muhanga"}, status: http.StatusOK},
		{name: "customer is forbidden", caller: "customer", body: map[string]string{"status": "DELIVERED"}, err: dErrors.New(dErrors.CodeForbidden, "not allowed"), status: http.StatusForbidden},
		{name: "unknown status", caller: "driver", body: map[string]string{"status": "LOST"}, status: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := setup(t)
			sh := sampleShipment(f.customer.UserID)
			if tc.status != http.StatusBadRequest {
				f.svc.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), sh.ID, gomock.Any()).
					DoAndReturn(func(_ any, _ requestcontext.Caller, _ id.ShipmentID, req *models.UpdateStatusRequest) (*models.Shipment, error) {
						if tc.err != nil {
							return nil, tc.err
						}
						sh.Status = models.Status(req.Status)
						return sh, nil
					})
			}

			req := testutil.Bearer(testutil.NewJSONRequest(t, http.MethodPost, "/api/domestic/shipments/"+sh.ID.String()+"/update", tc.body), tc.caller)
			rr := testutil.DoRequest(f.router, req)

			testutil.AssertStatus(t, rr, tc.status)
			if tc.status == http.StatusOK {
				testutil.AssertJSONContains(t, rr, "current_status", "IN_TRANSIT")
			}
		})
	}
}
