// Package authz holds the ownership predicates used by handlers and
// services. Everything here is a pure comparison: no session, no database.
package authz

import (
	"github.com/google/uuid"

	"github.com/aryaseptiaw/giglink_be/internal/models"
)

// CanManageJob reports whether the user may mutate a job (close it, view its
// proposal list as owner). Admins may manage any job.
func CanManageJob(u *models.AuthenticatedUser, job *models.Job) bool {
	if u == nil || job == nil {
		return false
	}
	return u.Role == models.RoleAdmin || job.ClientID == u.ID
}

// CanViewProposals reports whether the user may list proposals on a job owned
// by jobClientID.
func CanViewProposals(u *models.AuthenticatedUser, jobClientID uuid.UUID) bool {
	if u == nil {
		return false
	}
	return u.Role == models.RoleAdmin || u.ID == jobClientID
}

// CanManageContract reports whether the user is a party to the contract.
func CanManageContract(u *models.AuthenticatedUser, contract *models.Contract) bool {
	if u == nil || contract == nil {
		return false
	}
	if u.Role == models.RoleAdmin {
		return true
	}
	return contract.ClientID == u.ID || contract.FreelancerID == u.ID
}
