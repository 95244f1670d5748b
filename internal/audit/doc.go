// Package audit records administrative actions in the audit_logs table.
//
// Entries are written for actions that change who can see which ONUs or
// that hit the upstream API on demand: creating a technician, moving a
// technician to another service area, and manual syncs. Technicians'
// read traffic is not audited.
package audit
