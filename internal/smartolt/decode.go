package smartolt

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/kevann/nosteq-core/internal/onu"
)

// unknownValue fills required text fields the API left out.
const unknownValue = "Unknown"

// fields is one decoded JSON object with values kept raw until a typed
// accessor asks for them.
type fields map[string]json.RawMessage

// str returns the first non-empty value among keys, rendered as text.
// Numbers and booleans are returned as their JSON literal.
func (f fields) str(keys ...string) string {
	for _, k := range keys {
		if s := rawText(f[k]); s != "" {
			return s
		}
	}
	return ""
}

// opt is str returning nil instead of "".
func (f fields) opt(keys ...string) *string {
	return onu.Str(f.str(keys...))
}

// number reads a number or a numeric string. Non-finite values are dropped.
func (f fields) number(key string) *float64 {
	s := rawText(f[key])
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (f fields) whole(key string) int {
	v := f.number(key)
	if v == nil {
		return 0
	}
	return int(*v)
}

func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case '{', '[':
		return ""
	default:
		return string(raw)
	}
}

func decodeFields(raw json.RawMessage) (fields, error) {
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return f, nil
}

// decodeOnu maps one element of the details listing onto an onu.Onu.
func decodeOnu(raw json.RawMessage) (onu.Onu, error) {
	f, err := decodeFields(raw)
	if err != nil {
		return onu.Onu{}, err
	}

	adminStatus := f.str("administrative_status", "admin_status")
	status := f.str("status")
	if status == "" {
		status = adminStatus
	}

	o := onu.Onu{
		SN:               defaultString(f.str("sn", "onu_sn"), onu.UnknownSN),
		UniqueExternalID: f.str("unique_external_id", "external_id"),
		Name:             defaultString(f.str("name", "onu_name"), unknownValue),

		OltID:       f.opt("olt_id"),
		OltName:     f.opt("olt_name"),
		Board:       f.opt("board"),
		Port:        f.opt("port"),
		OnuIndex:    f.opt("onu"),
		OnuTypeID:   f.opt("onu_type_id"),
		OnuTypeName: f.opt("onu_type_name"),

		ZoneID:               f.opt("zone_id"),
		ZoneNameValue:        f.opt("zone_name", "zone"),
		Address:              f.opt("address"),
		OdbName:              f.opt("odb_name", "odb"),
		Mode:                 f.opt("mode"),
		WanMode:              f.opt("wan_mode"),
		IPAddress:            f.opt("ip_address"),
		SubnetMask:           f.opt("subnet_mask"),
		DefaultGateway:       f.opt("default_gateway"),
		DNS1:                 f.opt("dns1"),
		DNS2:                 f.opt("dns2"),
		Username:             f.opt("username"),
		CATV:                 f.opt("catv"),
		AdministrativeStatus: onu.Str(adminStatus),
		PhoneNumber:          f.opt("phone_number", "phone"),
		Model:                f.opt("model", "onu_type_name"),

		ServicePorts: decodeServicePorts(f["service_ports"]),

		Status:   defaultString(status, unknownValue),
		RxPower:  f.number("rx_power"),
		TxPower:  f.number("tx_power"),
		LastSeen: defaultString(f.str("last_seen"), onu.DefaultLastSeen),
	}

	if d := f.whole("distance"); d > 0 {
		o.Distance = &d
	}

	return o, nil
}

// decodeServicePorts reads the service_ports array. Anything else,
// including a malformed element, yields an empty list.
func decodeServicePorts(raw json.RawMessage) []onu.ServicePort {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []onu.ServicePort{}
	}

	ports := make([]onu.ServicePort, 0, len(items))
	for _, item := range items {
		f, err := decodeFields(item)
		if err != nil {
			continue
		}
		ports = append(ports, onu.ServicePort{ID: f.whole("id"), Name: f.str("name")})
	}
	return ports
}

func decodeStatus(raw json.RawMessage) (onu.LiveStatus, error) {
	f, err := decodeFields(raw)
	if err != nil {
		return onu.LiveStatus{}, err
	}
	return onu.LiveStatus{
		SN:               f.str("sn", "onu_sn"),
		Status:           defaultString(f.str("status"), unknownValue),
		LastStatusChange: f.str("last_status_change"),
	}, nil
}

// decodeLocation reads one element of the GPS listing. ok is false for
// entries without an external ID or without both coordinates.
func decodeLocation(raw json.RawMessage) (loc onu.Location, ok bool, err error) {
	f, err := decodeFields(raw)
	if err != nil {
		return onu.Location{}, false, err
	}

	id := f.str("unique_external_id", "external_id")
	lat, long := f.number("latitude"), f.number("longitude")
	if id == "" || lat == nil || long == nil {
		return onu.Location{}, false, nil
	}
	return onu.Location{UniqueExternalID: id, Latitude: *lat, Longitude: *long}, true, nil
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// flexBool accepts true/false, 1/0 and their quoted forms.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.ToLower(strings.Trim(string(bytes.TrimSpace(data)), `"`)) {
	case "true", "1":
		*b = true
	default:
		*b = false
	}
	return nil
}
