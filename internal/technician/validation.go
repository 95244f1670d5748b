package technician

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/kevann/nosteq-core/internal/zone"
)

const (
	maxIDLength    = 128
	maxNameLength  = 100
	maxPhoneLength = 32
)

// Validate checks a profile and normalises it in place: the role is
// lower-cased and a non-empty service area is replaced by its canonical name.
func Validate(p *Profile) error {
	if p == nil {
		return ErrInvalidProfile
	}

	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidProfile)
	}
	if len(p.ID) > maxIDLength {
		return fmt.Errorf("%w: id exceeds %d characters", ErrInvalidProfile, maxIDLength)
	}

	role := strings.ToLower(strings.TrimSpace(p.Role))
	if role == "" {
		role = RoleTechnician
	}
	if role != RoleTechnician && role != RoleAdmin {
		return fmt.Errorf("%w: role must be %q or %q", ErrInvalidProfile, RoleTechnician, RoleAdmin)
	}
	p.Role = role

	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return fmt.Errorf("%w: email: %v", ErrInvalidProfile, err)
		}
	}
	if len(p.Name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidProfile, maxNameLength)
	}
	if len(p.PhoneNumber) > maxPhoneLength {
		return fmt.Errorf("%w: phone number exceeds %d characters", ErrInvalidProfile, maxPhoneLength)
	}

	area, err := NormaliseServiceArea(p.ServiceArea)
	if err != nil {
		return err
	}
	p.ServiceArea = area

	return nil
}

// NormaliseServiceArea returns the canonical name for area. Blank input is
// allowed and returns "".
func NormaliseServiceArea(area string) (string, error) {
	if strings.TrimSpace(area) == "" {
		return "", nil
	}
	canonical, ok := zone.Resolve(area)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownServiceArea, area)
	}
	return canonical, nil
}
