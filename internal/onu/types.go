package onu

import "strings"

const (
	// DefaultLastSeen is used when the upstream record has no last_seen value.
	DefaultLastSeen = "Unknown"

	// UnknownSN is the placeholder serial given to records the API returned
	// without one. Such records cannot be told apart and are not stored.
	UnknownSN = "Unknown"
)

// Onu is one customer premises device as reported by the provisioning API.
// Optional upstream fields are pointers so "absent" survives a round trip
// through storage. The upstream PPPoE password is never kept.
type Onu struct {
	SN               string `json:"sn"`
	UniqueExternalID string `json:"unique_external_id"`
	Name             string `json:"name"`

	OltID       *string `json:"olt_id,omitempty"`
	OltName     *string `json:"olt_name,omitempty"`
	Board       *string `json:"board,omitempty"`
	Port        *string `json:"port,omitempty"`
	OnuIndex    *string `json:"onu,omitempty"`
	OnuTypeID   *string `json:"onu_type_id,omitempty"`
	OnuTypeName *string `json:"onu_type_name,omitempty"`

	ZoneID               *string `json:"zone_id,omitempty"`
	ZoneNameValue        *string `json:"zone_name,omitempty"`
	Address              *string `json:"address,omitempty"`
	OdbName              *string `json:"odb_name,omitempty"`
	Mode                 *string `json:"mode,omitempty"`
	WanMode              *string `json:"wan_mode,omitempty"`
	IPAddress            *string `json:"ip_address,omitempty"`
	SubnetMask           *string `json:"subnet_mask,omitempty"`
	DefaultGateway       *string `json:"default_gateway,omitempty"`
	DNS1                 *string `json:"dns1,omitempty"`
	DNS2                 *string `json:"dns2,omitempty"`
	Username             *string `json:"username,omitempty"`
	CATV                 *string `json:"catv,omitempty"`
	AdministrativeStatus *string `json:"administrative_status,omitempty"`
	PhoneNumber          *string `json:"phone_number,omitempty"`
	Model                *string `json:"model,omitempty"`

	ServicePorts []ServicePort `json:"service_ports"`

	Status   string   `json:"status"`
	RxPower  *float64 `json:"rx_power,omitempty"`
	TxPower  *float64 `json:"tx_power,omitempty"`
	LastSeen string   `json:"last_seen"`
	Distance *int     `json:"distance,omitempty"`
}

// ServicePort is a VLAN service bound to the ONU.
type ServicePort struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ZoneName returns the upstream zone name, or "" when the record has none.
func (o *Onu) ZoneName() string {
	if o == nil || o.ZoneNameValue == nil {
		return ""
	}
	return *o.ZoneNameValue
}

// HasSerial reports whether the record carries a real serial number.
func (o *Onu) HasSerial() bool {
	return o != nil && o.SN != "" && o.SN != UnknownSN
}

// Clone returns a copy that shares no slices with o.
func (o *Onu) Clone() *Onu {
	if o == nil {
		return nil
	}
	cpy := *o
	if o.ServicePorts != nil {
		cpy.ServicePorts = append([]ServicePort(nil), o.ServicePorts...)
	}
	return &cpy
}

// Status is the normalised operational state of an ONU.
type Status string

// Operational states. The string values match the lower-cased upstream text.
const (
	StatusOnline    Status = "online"
	StatusLOS       Status = "los"
	StatusOffline   Status = "offline"
	StatusPowerFail Status = "power fail"
	StatusUnknown   Status = "unknown"
)

// ParseStatus maps an upstream status string to a Status.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusOnline:
		return StatusOnline
	case StatusLOS:
		return StatusLOS
	case StatusOffline:
		return StatusOffline
	case StatusPowerFail:
		return StatusPowerFail
	default:
		return StatusUnknown
	}
}

// LiveStatus is one entry of the upstream bulk status listing.
type LiveStatus struct {
	SN               string `json:"sn"`
	Status           string `json:"status"`
	LastStatusChange string `json:"last_status_change,omitempty"`
}

// StatusMap indexes live statuses by serial number.
type StatusMap map[string]LiveStatus

// NewStatusMap builds a StatusMap. Later entries win on duplicate SNs.
func NewStatusMap(statuses []LiveStatus) StatusMap {
	m := make(StatusMap, len(statuses))
	for _, s := range statuses {
		if s.SN == "" {
			continue
		}
		m[s.SN] = s
	}
	return m
}

// Location is the GPS position the provisioning API holds for one ONU,
// keyed by its unique external ID.
type Location struct {
	UniqueExternalID string  `json:"unique_external_id"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
}

// Str returns a pointer to s, or nil when s is empty.
func Str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
