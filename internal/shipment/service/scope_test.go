package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"ishemalink/internal/shipment/models"
	id "ishemalink/pkg/domain"
	"ishemalink/pkg/requestcontext"
)

func TestScopeFor(t *testing.T) {
	user := id.UserID(uuid.New())
	tests := []struct {
		name   string
		caller requestcontext.Caller
		want   models.Scope
	}{
		{
			name:   "inspector sees everything",
			caller: requestcontext.Caller{UserID: user, Role: id.RoleGovernmentInspector},
			want:   models.Scope{Kind: models.ScopeAll},
		},
		{
			name:   "agent sees their sector",
			caller: requestcontext.Caller{UserID: user, Role: id.RoleAgent, AssignedSector: "Gasabo"},
			want:   models.Scope{Kind: models.ScopeSector, Sector: "Gasabo"},
		},
		{
			name:   "driver sees assigned shipments",
			caller: requestcontext.Caller{UserID: user, Role: id.RoleDriver},
			want:   models.Scope{Kind: models.ScopeDriver, UserID: user},
		},
		{
			name:   "customer sees own shipments",
			caller: requestcontext.Caller{UserID: user, Role: id.RoleCustomer},
			want:   models.Scope{Kind: models.ScopeOwner, UserID: user},
		},
		{
			name:   "admin falls through to ownership",
			caller: requestcontext.Caller{UserID: user, Role: id.RoleAdmin},
			want:   models.Scope{Kind: models.ScopeOwner, UserID: user},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ScopeFor(tc.caller))
		})
	}
}

func TestAgentScopeNeverLeaksOtherSectors(t *testing.T) {
	agent := requestcontext.Caller{UserID: id.UserID(uuid.New()), Role: id.RoleAgent, AssignedSector: "Gasabo"}
	scope := ScopeFor(agent)

	// The agent owns every shipment; only the sector decides visibility.
	for _, sector := range []string{"Gasabo", "Kicukiro", "Nyarugenge", "gasabo", ""} {
		sh := &models.Shipment{ID: id.ShipmentID(uuid.New()), OwnerID: agent.UserID, Sector: sector}
		assert.Equal(t, sector == "Gasabo", scope.Matches(sh), "sector %q", sector)
	}
}
