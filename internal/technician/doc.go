// Package technician stores field technician profiles.
//
// A profile ties an identity (the JWT subject) to a role and a service area.
// The service area decides which ONUs the technician can see; see
// onu.FilterForTechnician. Areas are stored in canonical form ("ZONE A"),
// so an alias written by an older client ("a") is resolved on the way in.
//
// Profiles are kept in the technicians table created by the migrations
// package.
package technician
