package technician

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		profile  Profile
		wantErr  error
		wantArea string
		wantRole string
	}{
		{
			name:     "technician with alias area",
			profile:  Profile{ID: "t1", Role: "TECHNICIAN", ServiceArea: " b "},
			wantArea: "ZONE B",
			wantRole: RoleTechnician,
		},
		{
			name:     "role defaults to technician",
			profile:  Profile{ID: "t1"},
			wantRole: RoleTechnician,
		},
		{
			name:     "admin without area",
			profile:  Profile{ID: "a1", Role: "Admin"},
			wantRole: RoleAdmin,
		},
		{
			name:     "reserved area is accepted",
			profile:  Profile{ID: "t1", ServiceArea: "ZONE E"},
			wantArea: "ZONE E",
			wantRole: RoleTechnician,
		},
		{
			name:    "missing id",
			profile: Profile{ID: "  "},
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "id too long",
			profile: Profile{ID: strings.Repeat("x", maxIDLength+1)},
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "unknown role",
			profile: Profile{ID: "t1", Role: "supervisor"},
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "bad email",
			profile: Profile{ID: "t1", Email: "not-an-email"},
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "unknown area",
			profile: Profile{ID: "t1", ServiceArea: "ZONE F"},
			wantErr: ErrUnknownServiceArea,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.profile
			err := Validate(&p)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if p.ServiceArea != tt.wantArea {
				t.Errorf("ServiceArea = %q, want %q", p.ServiceArea, tt.wantArea)
			}
			if p.Role != tt.wantRole {
				t.Errorf("Role = %q, want %q", p.Role, tt.wantRole)
			}
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	if err := Validate(nil); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("Validate(nil) error = %v, want ErrInvalidProfile", err)
	}
}

func TestProfile_Roles(t *testing.T) {
	var nilProfile *Profile
	if nilProfile.IsTechnician() || nilProfile.IsAdmin() {
		t.Error("nil profile should have no role")
	}

	p := &Profile{Role: "TeChNiCiAn"}
	if !p.IsTechnician() || p.IsAdmin() {
		t.Errorf("role %q: IsTechnician=%v IsAdmin=%v", p.Role, p.IsTechnician(), p.IsAdmin())
	}
}
