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

	"ishemalink/internal/cargo/handler/mocks"
	"ishemalink/internal/cargo/models"
	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
	"ishemalink/pkg/requestcontext"
	"ishemalink/pkg/testutil"
)

func setup(t *testing.T) (*mocks.MockService, chi.Router, requestcontext.Caller) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	agent := testutil.NewCaller(id.RoleAgent)
	auth := testutil.NewStaticAuthenticator(map[string]requestcontext.Caller{"agent": agent})
	r := chi.NewRouter()
	New(svc, auth, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return svc, r, agent
}

func TestHandleCreate(t *testing.T) {
	t.Run("declared", func(t *testing.T) {
		svc, r, agent := setup(t)
		svc.EXPECT().Create(gomock.Any(), agent, gomock.Any()).
			DoAndReturn(func(_ any, caller requestcontext.Caller, req *models.CreateRequest) (*models.Cargo, error) {
				return &models.Cargo{
					ID:          id.CargoID(uuid.New()),
					OwnerID:     caller.UserID,
					ManifestID:  req.ManifestID,
					TINNumber:   req.TINNumber,
					Destination: req.Destination,
					WeightKg:    req.Weight(),
					CreatedAt:   time.Now(),
				}, nil
			})

		req := testutil.Bearer(testutil.NewJSONRequest(t, http.MethodPost, "/api/international/cargo", map[string]any{
			"manifest_id":         "C-1",
			"tin_number":          "TIN100200",
			"destination_country": "KE",
			"weight_kg":           "1200.5",
			"is_customs_cleared":  true,
		}), "agent")
		rr := testutil.DoRequest(r, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[cargoResponse](t, rr)
		assert.False(t, resp.IsCustomsCleared)
		assert.Equal(t, "1200.50", resp.WeightKg)
		assert.Equal(t, agent.UserID.String(), resp.Owner)
		assert.Nil(t, resp.PassportNumber)
	})

	t.Run("kenya requires TIN", func(t *testing.T) {
		_, r, _ := setup(t)
		req := testutil.Bearer(testutil.NewJSONRequest(t, http.MethodPost, "/api/international/cargo", map[string]any{
			"manifest_id":         "C-1",
			"destination_country": "KE",
			"weight_kg":           10,
		}), "agent")
		rr := testutil.DoRequest(r, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		errResp := testutil.UnmarshalErrorResponse(t, rr)
		assert.Contains(t, errResp.Fields, "tin_number")
	})

	t.Run("duplicate manifest", func(t *testing.T) {
		svc, r, _ := setup(t)
		svc.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "cargo with this manifest ID already exists"))
		req := testutil.Bearer(testutil.NewJSONRequest(t, http.MethodPost, "/api/international/cargo", map[string]any{
			"manifest_id":         "C-1",
			"destination_country": "UG",
			"weight_kg":           10,
		}), "agent")
		testutil.AssertStatus(t, testutil.DoRequest(r, req), http.StatusConflict)
	})
}

func TestHandleList(t *testing.T) {
	svc, r, agent := setup(t)
	svc.EXPECT().List(gomock.Any(), agent).Return([]*models.Cargo{
		{ID: id.CargoID(uuid.New()), OwnerID: agent.UserID, ManifestID: "C-1", PassportNumber: "PC1", Destination: models.DestinationDRC, WeightKg: "5.00"},
	}, nil)

	rr := testutil.DoRequest(r, testutil.Bearer(testutil.NewRequest(t, http.MethodGet, "/api/international/cargo"), "agent"))

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[[]cargoResponse](t, rr)
	require.Len(t, *resp, 1)
	require.NotNil(t, (*resp)[0].PassportNumber)
	assert.Equal(t, "PC1", *(*resp)[0].PassportNumber)
}

func TestRequiresAuth(t *testing.T) {
	_, r, _ := setup(t)
	testutil.AssertStatus(t, testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/api/international/cargo")), http.StatusUnauthorized)
}
